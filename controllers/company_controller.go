package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"workhive/middleware"
	"workhive/models"
	"workhive/utils"
)

// CompanyController serves the company-role surface: admin CRUD, company-wide
// employee/task listings and the dashboard rollup.
type CompanyController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCompanyController(db *gorm.DB, logger *log.Logger) *CompanyController {
	return &CompanyController{
		DB:     db,
		Logger: logger,
	}
}

type adminSummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"createdAt"`
	TotalEmployees int64     `json:"totalEmployees"`
	TotalTasks     int64     `json:"totalTasks"`
}

// GetAdmins lists the company's admins with employee and task counts.
func (cc *CompanyController) GetAdmins(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var admins []models.Admin
	if err := cc.DB.Where("company_id = ?", principal.CompanyID).
		Order("created_at DESC").Find(&admins).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch admins", err)
	}

	out := make([]adminSummary, 0, len(admins))
	for _, admin := range admins {
		var employeeCount, taskCount int64
		cc.DB.Model(&models.Employee{}).Where("admin_id = ?", admin.ID).Count(&employeeCount)
		cc.DB.Model(&models.Task{}).Where("admin_id = ?", admin.ID).Count(&taskCount)
		out = append(out, adminSummary{
			ID:             admin.ID,
			Name:           admin.Name,
			Email:          admin.Email,
			CreatedAt:      admin.CreatedAt,
			TotalEmployees: employeeCount,
			TotalTasks:     taskCount,
		})
	}

	return c.JSON(out)
}

type CreateAdminRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// CreateAdmin creates an admin under the calling company.
func (cc *CompanyController) CreateAdmin(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var req CreateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, email, and password are required",
		})
	}

	email := utils.NormalizeEmail(req.Email)

	// Pre-check for a friendlier 400; the unique index still backstops races
	var existing models.Admin
	if err := cc.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Admin with this email already exists",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	admin := models.Admin{
		Name:      req.Name,
		Email:     email,
		Password:  string(hashedPassword),
		CompanyID: principal.CompanyID,
	}
	if err := cc.DB.Create(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Admin with this email already exists",
			})
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create admin", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    admin.ID,
		"name":  admin.Name,
		"email": admin.Email,
	})
}

// GetAdmin returns one admin of the calling company. Cross-tenant ids come
// back as 404, never 403, so existence is not leaked.
func (cc *CompanyController) GetAdmin(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	adminID := c.Params("adminId")

	var admin models.Admin
	if err := cc.DB.Where("id = ? AND company_id = ?", adminID, principal.CompanyID).
		First(&admin).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Admin not found",
		})
	}

	return c.JSON(admin)
}

type UpdateAdminRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=200"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// UpdateAdmin updates name/email of one of the company's admins.
func (cc *CompanyController) UpdateAdmin(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	adminID := c.Params("adminId")

	var admin models.Admin
	if err := cc.DB.Where("id = ? AND company_id = ?", adminID, principal.CompanyID).
		First(&admin).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Admin not found",
		})
	}

	var req UpdateAdminRequest
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
		if err := cc.DB.Model(&admin).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "Admin with this email already exists",
				})
			}
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update admin", err)
		}
	}

	return c.JSON(admin)
}

// DeleteAdmin removes one of the company's admins after re-verifying
// ownership.
func (cc *CompanyController) DeleteAdmin(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	adminID := c.Params("adminId")

	var admin models.Admin
	if err := cc.DB.Where("id = ? AND company_id = ?", adminID, principal.CompanyID).
		First(&admin).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Admin not found",
		})
	}

	if err := cc.DB.Delete(&admin).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete admin", err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetEmployees lists every employee of the company with task stats.
func (cc *CompanyController) GetEmployees(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var employees []models.Employee
	if err := cc.DB.Where("company_id = ?", principal.CompanyID).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "status", "employee_id")
		}).
		Order("created_at DESC").Find(&employees).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch employees", err)
	}

	return c.JSON(employeesWithStats(employees))
}

// GetTasks lists every task of the company, newest first.
func (cc *CompanyController) GetTasks(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var tasks []models.Task
	if err := cc.DB.Where("company_id = ?", principal.CompanyID).
		Preload("Employee", selectIDNameEmail).
		Preload("Admin", selectIDNameEmail).
		Preload("Team", selectIDName).
		Order("created_at DESC").Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}

	return c.JSON(tasks)
}

// Dashboard returns company-level totals.
func (cc *CompanyController) Dashboard(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var totalAdmins, totalEmployees, totalTasks, companyTasks int64
	if err := cc.DB.Model(&models.Admin{}).
		Where("company_id = ?", principal.CompanyID).Count(&totalAdmins).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch dashboard data", err)
	}
	cc.DB.Model(&models.Employee{}).Where("company_id = ?", principal.CompanyID).Count(&totalEmployees)
	cc.DB.Model(&models.Task{}).Count(&totalTasks)
	cc.DB.Model(&models.Task{}).Where("company_id = ?", principal.CompanyID).Count(&companyTasks)

	return c.JSON(fiber.Map{
		"totalAdmins":    totalAdmins,
		"totalEmployees": totalEmployees,
		"totalTasks":     totalTasks,
		"companyTasks":   companyTasks,
	})
}

// Preload helpers shared by the task-shaped responses.
func selectIDNameEmail(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

func selectIDName(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name")
}
