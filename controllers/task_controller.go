package controller

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"workhive/middleware"
	"workhive/models"
	"workhive/utils"
)

// TaskController serves the role-dual task surface: admins create, update and
// delete; assigned employees read and update their own tasks.
type TaskController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTaskController(db *gorm.DB, logger *log.Logger) *TaskController {
	return &TaskController{
		DB:     db,
		Logger: logger,
	}
}

func (tc *TaskController) preloadRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("Employee", selectIDNameEmail).
		Preload("Admin", selectIDNameEmail).
		Preload("Team", selectIDName)
}

// GetTasks lists tasks for the caller. Admins see the tasks they created in
// their company and may filter by assignee; employees see their assigned
// tasks. Both may filter by status and priority.
func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	query := tc.preloadRefs(tc.DB)
	switch principal.Role {
	case utils.RoleAdmin:
		query = query.Where("company_id = ? AND admin_id = ?", principal.CompanyID, principal.ID)
		if assignedToID := c.Query("assignedToId"); assignedToID != "" {
			query = query.Where("employee_id = ?", assignedToID)
		}
	case utils.RoleEmployee:
		query = query.Where("employee_id = ?", principal.ID)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if priority := c.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}

	return c.JSON(tasks)
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Deadline    string `json:"deadline"`
	EmployeeID  string `json:"employeeId"`
	TeamID      string `json:"teamId"`
}

// CreateTask creates a task owned by the calling admin. An assignee or team
// outside the admin's company is a 400, not a silent drop.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var req CreateTaskRequest
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

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	if req.EmployeeID != "" {
		var employee models.Employee
		if err := tc.DB.Where("id = ? AND company_id = ? AND admin_id = ?",
			req.EmployeeID, principal.CompanyID, principal.ID).First(&employee).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid employee: Employee not found or doesn't belong to your company",
			})
		}
	}
	if req.TeamID != "" {
		var team models.Team
		if err := tc.DB.Where("id = ? AND company_id = ? AND admin_id = ?",
			req.TeamID, principal.CompanyID, principal.ID).First(&team).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid team: Team not found or doesn't belong to your company",
			})
		}
	}

	task := models.Task{
		Title:     title,
		Status:    models.TaskStatusPending,
		Priority:  models.TaskPriorityMedium,
		CompanyID: principal.CompanyID,
		AdminID:   principal.ID,
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		task.Description = utils.Pointer(desc)
	}
	if req.Status != "" {
		task.Status = req.Status
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	if req.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid deadline: expected RFC3339 timestamp",
			})
		}
		task.Deadline = &deadline
	}
	if req.EmployeeID != "" {
		task.EmployeeID = utils.Pointer(req.EmployeeID)
	}
	if req.TeamID != "" {
		task.TeamID = utils.Pointer(req.TeamID)
	}

	if err := tc.DB.Create(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create task", err)
	}

	if err := tc.preloadRefs(tc.DB).First(&task, "id = ?", task.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Deadline    *string `json:"deadline"`
	EmployeeID  *string `json:"employeeId"`
	TeamID      *string `json:"teamId"`
}

// UpdateTask partially updates a task. Admins of the owning company may
// change anything; the assigned employee may update their own task. Status
// transitions are unordered.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	taskID := c.Params("taskId")

	var task models.Task
	if err := tc.DB.First(&task, "id = ?", taskID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Task not found",
		})
	}

	// Ownership: admins must share the company, employees must be assigned.
	// Both failures read as 404 so foreign task ids stay unguessable.
	switch principal.Role {
	case utils.RoleAdmin:
		if task.CompanyID != principal.CompanyID {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Task not found",
			})
		}
	case utils.RoleEmployee:
		if task.EmployeeID == nil || *task.EmployeeID != principal.ID {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Task not found",
			})
		}
	}

	var req UpdateTaskRequest
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
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil && *req.Status != "" {
		updates["status"] = *req.Status
	}
	if req.Priority != nil && *req.Priority != "" {
		updates["priority"] = *req.Priority
	}
	if req.Deadline != nil && *req.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid deadline: expected RFC3339 timestamp",
			})
		}
		updates["deadline"] = deadline
	}

	// Reassignment stays admin-only
	if principal.Role == utils.RoleAdmin {
		if req.EmployeeID != nil {
			if *req.EmployeeID == "" {
				updates["employee_id"] = nil
			} else {
				var employee models.Employee
				if err := tc.DB.Where("id = ? AND company_id = ?",
					*req.EmployeeID, principal.CompanyID).First(&employee).Error; err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Invalid employee: Employee not found or doesn't belong to your company",
					})
				}
				updates["employee_id"] = *req.EmployeeID
			}
		}
		if req.TeamID != nil {
			if *req.TeamID == "" {
				updates["team_id"] = nil
			} else {
				var team models.Team
				if err := tc.DB.Where("id = ? AND company_id = ?",
					*req.TeamID, principal.CompanyID).First(&team).Error; err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Invalid team: Team not found or doesn't belong to your company",
					})
				}
				updates["team_id"] = *req.TeamID
			}
		}
	}

	if len(updates) > 0 {
		if err := tc.DB.Model(&task).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update task", err)
		}
	}

	if err := tc.preloadRefs(tc.DB).First(&task, "id = ?", task.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}
	return c.JSON(task)
}

// DeleteTask removes a task of the admin's company.
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	taskID := c.Params("taskId")

	var task models.Task
	if err := tc.DB.First(&task, "id = ?", taskID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Task not found",
		})
	}
	if task.CompanyID != principal.CompanyID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Task not found",
		})
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Chat{}).Error; err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete task", err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// Analytics returns task-status rollups for the caller: an admin sees their
// own tasks and employees, an employee their assigned tasks.
func (tc *TaskController) Analytics(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var tasks []models.Task
	switch principal.Role {
	case utils.RoleAdmin:
		if err := tc.DB.Where("company_id = ? AND admin_id = ?",
			principal.CompanyID, principal.ID).Find(&tasks).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch analytics", err)
		}
		var totalEmployees int64
		tc.DB.Model(&models.Employee{}).Where("admin_id = ?", principal.ID).Count(&totalEmployees)

		stats := taskStats(tasks)
		stats["totalEmployees"] = totalEmployees
		return c.JSON(stats)

	case utils.RoleEmployee:
		if err := tc.DB.Where("employee_id = ?", principal.ID).Find(&tasks).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch analytics", err)
		}
		return c.JSON(taskStats(tasks))
	}

	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "Forbidden",
	})
}

func taskStats(tasks []models.Task) fiber.Map {
	var completed, inProgress, notStarted, assigned int
	for _, t := range tasks {
		switch t.Status {
		case models.TaskStatusCompleted:
			completed++
		case models.TaskStatusInProgress:
			inProgress++
		case models.TaskStatusPending:
			notStarted++
		}
		if t.EmployeeID != nil {
			assigned++
		}
	}
	return fiber.Map{
		"totalTasks":      len(tasks),
		"completedTasks":  completed,
		"inProgressTasks": inProgress,
		"notStartedTasks": notStarted,
		"assignedTasks":   assigned,
		"unassignedTasks": len(tasks) - assigned,
	}
}
