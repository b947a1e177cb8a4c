package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"workhive/config"
	"workhive/models"
	"workhive/utils"
)

const bcryptCost = 10

type AuthController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewAuthController(db *gorm.DB, logger *log.Logger) *AuthController {
	return &AuthController{
		DB:     db,
		Logger: logger,
	}
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// Signup registers a new company tenant.
func (ac *AuthController) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	email := utils.NormalizeEmail(req.Email)

	// Check if company already exists
	var existing models.Company
	if err := ac.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Company with this email already exists",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	company := models.Company{
		Name:     req.Name,
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := ac.DB.Create(&company).Error; err != nil {
		// The unique index is the real backstop for the check above
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Company with this email already exists",
			})
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create company", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    company.ID,
		"name":  company.Name,
		"email": company.Email,
	})
}

// SigninCompany authenticates a company and sets the company session cookie.
func (ac *AuthController) SigninCompany(c *fiber.Ctx) error {
	req, ok := ac.parseSignin(c)
	if !ok {
		return nil
	}

	var company models.Company
	if err := ac.DB.Where("email = ?", utils.NormalizeEmail(req.Email)).First(&company).Error; err != nil {
		return invalidCredentials(c)
	}
	if bcrypt.CompareHashAndPassword([]byte(company.Password), []byte(req.Password)) != nil {
		return invalidCredentials(c)
	}

	return ac.issueSession(c, &utils.SessionClaims{
		ID:    company.ID,
		Email: company.Email,
		Name:  company.Name,
		Role:  string(utils.RoleCompany),
	})
}

// SigninAdmin authenticates an admin and sets the admin session cookie.
func (ac *AuthController) SigninAdmin(c *fiber.Ctx) error {
	req, ok := ac.parseSignin(c)
	if !ok {
		return nil
	}

	var admin models.Admin
	if err := ac.DB.Where("email = ?", utils.NormalizeEmail(req.Email)).First(&admin).Error; err != nil {
		return invalidCredentials(c)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)) != nil {
		return invalidCredentials(c)
	}

	return ac.issueSession(c, &utils.SessionClaims{
		ID:        admin.ID,
		Email:     admin.Email,
		Name:      admin.Name,
		Role:      string(utils.RoleAdmin),
		CompanyID: admin.CompanyID,
	})
}

// SigninEmployee authenticates an employee and sets the employee session cookie.
func (ac *AuthController) SigninEmployee(c *fiber.Ctx) error {
	req, ok := ac.parseSignin(c)
	if !ok {
		return nil
	}

	var employee models.Employee
	if err := ac.DB.Where("email = ?", utils.NormalizeEmail(req.Email)).First(&employee).Error; err != nil {
		return invalidCredentials(c)
	}
	if bcrypt.CompareHashAndPassword([]byte(employee.Password), []byte(req.Password)) != nil {
		return invalidCredentials(c)
	}

	claims := &utils.SessionClaims{
		ID:        employee.ID,
		Email:     employee.Email,
		Name:      employee.Name,
		Role:      string(utils.RoleEmployee),
		CompanyID: employee.CompanyID,
	}
	if employee.AdminID != nil {
		claims.AdminID = *employee.AdminID
	}
	return ac.issueSession(c, claims)
}

// Signout clears all three role cookies.
func (ac *AuthController) Signout(c *fiber.Ctx) error {
	for _, role := range utils.RolePrecedence {
		c.Cookie(&fiber.Cookie{
			Name:     utils.CookieNameFor(role),
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   config.AppConfig.Environment == "production",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// ForgotPassword resets the password of whichever account matches the email,
// trying company, then admin, then employee. There is no possession check:
// this mirrors the product's internal/demo deployment and is recorded as a
// known gap.
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	email := utils.NormalizeEmail(req.Email)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	var company models.Company
	if err := ac.DB.Where("email = ?", email).First(&company).Error; err == nil {
		if err := ac.DB.Model(&company).Update("password", string(hashedPassword)).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reset password", err)
		}
		return c.JSON(fiber.Map{"success": true})
	}

	var admin models.Admin
	if err := ac.DB.Where("email = ?", email).First(&admin).Error; err == nil {
		if err := ac.DB.Model(&admin).Update("password", string(hashedPassword)).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reset password", err)
		}
		return c.JSON(fiber.Map{"success": true})
	}

	var employee models.Employee
	if err := ac.DB.Where("email = ?", email).First(&employee).Error; err == nil {
		if err := ac.DB.Model(&employee).Update("password", string(hashedPassword)).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reset password", err)
		}
		return c.JSON(fiber.Map{"success": true})
	}

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "User not found",
	})
}

func (ac *AuthController) parseSignin(c *fiber.Ctx) (SigninRequest, bool) {
	var req SigninRequest
	if err := c.BodyParser(&req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
		return req, false
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
		})
		return req, false
	}
	return req, true
}

func (ac *AuthController) issueSession(c *fiber.Ctx, claims *utils.SessionClaims) error {
	token, err := utils.IssueSessionToken(claims)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create session", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     utils.CookieNameFor(utils.Role(claims.Role)),
		Value:    token,
		Expires:  time.Now().Add(utils.SessionMaxAge()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   config.AppConfig.Environment == "production",
		Path:     "/",
	})

	return c.JSON(fiber.Map{
		"id":    claims.ID,
		"name":  claims.Name,
		"email": claims.Email,
		"role":  claims.Role,
	})
}

// invalidCredentials is the uniform signin failure. Unknown email and wrong
// password must be indistinguishable to the caller.
func invalidCredentials(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Invalid email or password",
	})
}
