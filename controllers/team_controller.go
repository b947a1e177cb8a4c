package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"workhive/middleware"
	"workhive/models"
	"workhive/utils"
)

// TeamController serves the admin-scoped team CRUD and the employee's
// team listing. Membership updates replace the whole set inside one
// transaction so a concurrent reader never observes a half-replaced team.
type TeamController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTeamController(db *gorm.DB, logger *log.Logger) *TeamController {
	return &TeamController{
		DB:     db,
		Logger: logger,
	}
}

type TeamRequest struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Description  string   `json:"description" validate:"omitempty,max=1000"`
	EmployeeIDs  []string `json:"employeeIds"`
	IncludeAdmin *bool    `json:"includeAdmin"`
}

func preloadMembers(db *gorm.DB) *gorm.DB {
	return db.Preload("Members.Admin", selectIDNameEmail).
		Preload("Members.Employee", selectIDNameEmail)
}

// GetTeams lists the teams of the admin's company, newest first.
func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var teams []models.Team
	if err := preloadMembers(tc.DB).
		Where("company_id = ?", principal.CompanyID).
		Order("created_at DESC").Find(&teams).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch teams", err)
	}

	return c.JSON(teams)
}

// CreateTeam creates a team with an initial membership set. Employee ids that
// do not belong to the calling admin are silently dropped, matching the
// listing the admin can actually see.
func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var req TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Team name is required",
		})
	}

	validEmployeeIDs, err := tc.ownEmployeeIDs(principal.ID, req.EmployeeIDs)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create team", err)
	}

	team := models.Team{
		Name:      req.Name,
		CompanyID: principal.CompanyID,
		AdminID:   principal.ID,
	}
	if req.Description != "" {
		team.Description = utils.Pointer(req.Description)
	}

	includeAdmin := req.IncludeAdmin == nil || *req.IncludeAdmin

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		return createMembers(tx, team.ID, principal.ID, includeAdmin, validEmployeeIDs)
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create team", err)
	}

	if err := preloadMembers(tc.DB).First(&team, "id = ?", team.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch team", err)
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}

// GetTeam returns one team owned by the calling admin.
func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	teamID := c.Params("teamId")

	var team models.Team
	if err := preloadMembers(tc.DB).
		Where("id = ? AND company_id = ? AND admin_id = ?", teamID, principal.CompanyID, principal.ID).
		First(&team).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Team not found",
		})
	}

	return c.JSON(team)
}

// UpdateTeam renames a team and atomically replaces its membership set.
func (tc *TeamController) UpdateTeam(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	teamID := c.Params("teamId")

	var team models.Team
	if err := tc.DB.Where("id = ? AND company_id = ? AND admin_id = ?",
		teamID, principal.CompanyID, principal.ID).First(&team).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Team not found",
		})
	}

	var req TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Team name is required",
		})
	}

	validEmployeeIDs, err := tc.ownEmployeeIDs(principal.ID, req.EmployeeIDs)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update team", err)
	}

	includeAdmin := req.IncludeAdmin == nil || *req.IncludeAdmin

	// Delete-then-recreate must be atomic: without the transaction a
	// concurrent GET could observe an empty membership set
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"name": req.Name}
		if req.Description != "" {
			updates["description"] = req.Description
		} else {
			updates["description"] = nil
		}
		if err := tx.Model(&team).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return createMembers(tx, team.ID, principal.ID, includeAdmin, validEmployeeIDs)
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update team", err)
	}

	if err := preloadMembers(tc.DB).First(&team, "id = ?", team.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch team", err)
	}
	return c.JSON(team)
}

// DeleteTeam removes a team, its memberships and task links in one
// transaction.
func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	teamID := c.Params("teamId")

	var team models.Team
	if err := tc.DB.Where("id = ? AND company_id = ? AND admin_id = ?",
		teamID, principal.CompanyID, principal.ID).First(&team).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Team not found",
		})
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("team_id = ?", team.ID).
			Update("team_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&team).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete team", err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetEmployeeTeams lists the teams the calling employee belongs to.
func (tc *TeamController) GetEmployeeTeams(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var memberships []models.TeamMember
	if err := tc.DB.Where("employee_id = ?", principal.ID).Find(&memberships).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch teams", err)
	}

	teamIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		teamIDs = append(teamIDs, m.TeamID)
	}
	if len(teamIDs) == 0 {
		return c.JSON([]models.Team{})
	}

	var teams []models.Team
	if err := preloadMembers(tc.DB).Where("id IN ?", teamIDs).Find(&teams).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch teams", err)
	}

	return c.JSON(teams)
}

// ownEmployeeIDs filters the requested ids down to employees the admin owns,
// deduplicated.
func (tc *TeamController) ownEmployeeIDs(adminID string, requested []string) ([]string, error) {
	unique := make([]string, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, id := range requested {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, nil
	}

	var employees []models.Employee
	if err := tc.DB.Select("id").
		Where("id IN ? AND admin_id = ?", unique, adminID).
		Find(&employees).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(employees))
	for _, e := range employees {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

func createMembers(tx *gorm.DB, teamID, adminID string, includeAdmin bool, employeeIDs []string) error {
	if includeAdmin {
		member := models.TeamMember{TeamID: teamID, AdminID: utils.Pointer(adminID)}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
	}
	for _, employeeID := range employeeIDs {
		member := models.TeamMember{TeamID: teamID, EmployeeID: utils.Pointer(employeeID)}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
	}
	return nil
}
