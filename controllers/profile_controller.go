package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"workhive/middleware"
	"workhive/models"
	"workhive/utils"
)

// ProfileController serves the role-agnostic profile and password endpoints,
// dispatching internally on the resolved role.
type ProfileController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewProfileController(db *gorm.DB, logger *log.Logger) *ProfileController {
	return &ProfileController{
		DB:     db,
		Logger: logger,
	}
}

// GetProfile returns the caller's profile shaped per role.
func (pc *ProfileController) GetProfile(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	profile := fiber.Map{
		"id":    principal.ID,
		"name":  principal.Name,
		"email": principal.Email,
		"role":  string(principal.Role),
	}
	switch principal.Role {
	case utils.RoleAdmin:
		profile["companyId"] = principal.CompanyID
	case utils.RoleEmployee:
		profile["companyId"] = principal.CompanyID
		if principal.AdminID != "" {
			profile["adminId"] = principal.AdminID
		}
	}

	return c.JSON(profile)
}

type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=200"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// UpdateProfile updates the caller's own name/email.
func (pc *ProfileController) UpdateProfile(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var req UpdateProfileRequest
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

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != "" {
		updates["name"] = *req.Name
	}
	if req.Email != nil && *req.Email != "" {
		updates["email"] = utils.NormalizeEmail(*req.Email)
	}

	if len(updates) > 0 {
		if err := pc.accountModel(principal).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "Email already in use",
				})
			}
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update profile", err)
		}
	}

	name := principal.Name
	email := principal.Email
	if v, ok := updates["name"].(string); ok {
		name = v
	}
	if v, ok := updates["email"].(string); ok {
		email = v
	}
	return c.JSON(fiber.Map{
		"name":  name,
		"email": email,
		"role":  string(principal.Role),
	})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// ChangePassword verifies the current password and re-hashes the new one.
// A wrong current password leaves the stored hash untouched.
func (pc *ProfileController) ChangePassword(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var req ChangePasswordRequest
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

	currentHash, err := pc.currentPasswordHash(principal)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	if bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(req.CurrentPassword)) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Current password is incorrect",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	if err := pc.accountModel(principal).Update("password", string(hashedPassword)).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to change password", err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// accountModel returns a query scoped to the caller's own account row.
func (pc *ProfileController) accountModel(principal *middleware.Principal) *gorm.DB {
	switch principal.Role {
	case utils.RoleCompany:
		return pc.DB.Model(&models.Company{}).Where("id = ?", principal.ID)
	case utils.RoleAdmin:
		return pc.DB.Model(&models.Admin{}).Where("id = ?", principal.ID)
	default:
		return pc.DB.Model(&models.Employee{}).Where("id = ?", principal.ID)
	}
}

func (pc *ProfileController) currentPasswordHash(principal *middleware.Principal) (string, error) {
	switch principal.Role {
	case utils.RoleCompany:
		var company models.Company
		if err := pc.DB.First(&company, "id = ?", principal.ID).Error; err != nil {
			return "", err
		}
		return company.Password, nil
	case utils.RoleAdmin:
		var admin models.Admin
		if err := pc.DB.First(&admin, "id = ?", principal.ID).Error; err != nil {
			return "", err
		}
		return admin.Password, nil
	default:
		var employee models.Employee
		if err := pc.DB.First(&employee, "id = ?", principal.ID).Error; err != nil {
			return "", err
		}
		return employee.Password, nil
	}
}
