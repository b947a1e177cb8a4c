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

// EmployeeController serves the admin-scoped employee CRUD.
type EmployeeController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewEmployeeController(db *gorm.DB, logger *log.Logger) *EmployeeController {
	return &EmployeeController{
		DB:     db,
		Logger: logger,
	}
}

type employeeSummary struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	WorkID          *string   `json:"workId"`
	CreatedAt       time.Time `json:"createdAt"`
	TotalTasks      int       `json:"totalTasks"`
	CompletedTasks  int       `json:"completedTasks"`
	InProgressTasks int       `json:"inProgressTasks"`
	NotStartedTasks int       `json:"notStartedTasks"`
}

func employeesWithStats(employees []models.Employee) []employeeSummary {
	out := make([]employeeSummary, 0, len(employees))
	for _, emp := range employees {
		summary := employeeSummary{
			ID:        emp.ID,
			Name:      emp.Name,
			Email:     emp.Email,
			WorkID:    emp.WorkID,
			CreatedAt: emp.CreatedAt,
		}
		for _, t := range emp.Tasks {
			summary.TotalTasks++
			switch t.Status {
			case models.TaskStatusCompleted:
				summary.CompletedTasks++
			case models.TaskStatusInProgress:
				summary.InProgressTasks++
			case models.TaskStatusPending:
				summary.NotStartedTasks++
			}
		}
		out = append(out, summary)
	}
	return out
}

// GetEmployees lists the admin's own employees with per-status task counts.
func (ec *EmployeeController) GetEmployees(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var employees []models.Employee
	if err := ec.DB.Where("admin_id = ? AND company_id = ?", principal.ID, principal.CompanyID).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "status", "employee_id")
		}).
		Order("created_at DESC").Find(&employees).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch employees", err)
	}

	return c.JSON(employeesWithStats(employees))
}

type CreateEmployeeRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	WorkID   string `json:"workId" validate:"omitempty,max=50"`
}

// CreateEmployee creates an employee under the calling admin's company.
func (ec *EmployeeController) CreateEmployee(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var req CreateEmployeeRequest
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

	// Work ID uniqueness is scoped to the company, not global
	if req.WorkID != "" {
		var existing models.Employee
		if err := ec.DB.Where("company_id = ? AND work_id = ?", principal.CompanyID, req.WorkID).
			First(&existing).Error; err == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Work ID already in use within your company",
			})
		}
	}

	var existing models.Employee
	if err := ec.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Employee with this email already exists",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	employee := models.Employee{
		Name:      req.Name,
		Email:     email,
		Password:  string(hashedPassword),
		CompanyID: principal.CompanyID,
		AdminID:   utils.Pointer(principal.ID),
	}
	if req.WorkID != "" {
		employee.WorkID = utils.Pointer(req.WorkID)
	}

	if err := ec.DB.Create(&employee).Error; err != nil {
		// Unique indexes on email and (company_id, work_id) backstop the
		// pre-checks above under concurrent requests
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Employee with this email or work ID already exists",
			})
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create employee", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":     employee.ID,
		"name":   employee.Name,
		"email":  employee.Email,
		"workId": employee.WorkID,
	})
}

// GetEmployee returns one employee owned by the calling admin.
func (ec *EmployeeController) GetEmployee(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	employeeID := c.Params("employeeId")

	var employee models.Employee
	if err := ec.DB.Where("id = ? AND admin_id = ? AND company_id = ?",
		employeeID, principal.ID, principal.CompanyID).
		Preload("Tasks").First(&employee).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Employee not found",
		})
	}

	return c.JSON(employee)
}

type UpdateEmployeeRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=200"`
	Email  *string `json:"email" validate:"omitempty,email"`
	WorkID *string `json:"workId" validate:"omitempty,max=50"`
}

// UpdateEmployee updates name/email/workId of an employee the admin owns.
func (ec *EmployeeController) UpdateEmployee(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	employeeID := c.Params("employeeId")

	var employee models.Employee
	if err := ec.DB.Where("id = ? AND admin_id = ? AND company_id = ?",
		employeeID, principal.ID, principal.CompanyID).First(&employee).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Employee not found",
		})
	}

	var req UpdateEmployeeRequest
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
	if req.WorkID != nil {
		if *req.WorkID == "" {
			updates["work_id"] = nil
		} else {
			updates["work_id"] = *req.WorkID
		}
	}

	if len(updates) > 0 {
		if err := ec.DB.Model(&employee).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "Employee with this email or work ID already exists",
				})
			}
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update employee", err)
		}
	}

	return c.JSON(employee)
}

// DeleteEmployee removes an employee the admin owns, detaching task
// assignments and team memberships in the same transaction.
func (ec *EmployeeController) DeleteEmployee(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	employeeID := c.Params("employeeId")

	var employee models.Employee
	if err := ec.DB.Where("id = ? AND admin_id = ? AND company_id = ?",
		employeeID, principal.ID, principal.CompanyID).First(&employee).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Employee not found",
		})
	}

	err := ec.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("employee_id = ?", employee.ID).
			Update("employee_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("employee_id = ?", employee.ID).
			Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&employee).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete employee", err)
	}

	return c.JSON(fiber.Map{"success": true})
}
