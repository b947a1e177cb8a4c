package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"workhive/middleware"
	"workhive/models"
	"workhive/utils"
)

// ChatController serves the polling chat: message history, sending, the
// contact directory and the unread counter. Clients re-fetch on an interval;
// there is no push channel.
type ChatController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewChatController(db *gorm.DB, logger *log.Logger) *ChatController {
	return &ChatController{
		DB:     db,
		Logger: logger,
	}
}

const chatHistoryLimit = 100

// GetChats returns the last messages visible to the caller, oldest first.
// Personal history is restricted to conversations the caller is part of.
func (cc *ChatController) GetChats(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	chatType := c.Query("chatType", "all")
	query := cc.DB.Where("company_id = ?", principal.CompanyID)

	switch chatType {
	case models.ChatTypePersonal:
		query = query.Where("chat_type = ?", models.ChatTypePersonal)
		if receiverID := c.Query("receiverId"); receiverID != "" {
			query = query.Where(
				"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				principal.ID, receiverID, receiverID, principal.ID,
			)
		} else {
			query = query.Where("sender_id = ? OR receiver_id = ?", principal.ID, principal.ID)
		}
	case models.ChatTypeTeam:
		query = query.Where("chat_type = ?", models.ChatTypeTeam)
		if teamID := c.Query("teamId"); teamID != "" {
			query = query.Where("team_id = ?", teamID)
		}
	case models.ChatTypeTask:
		query = query.Where("chat_type = ?", models.ChatTypeTask)
		if taskID := c.Query("taskId"); taskID != "" {
			query = query.Where("task_id = ?", taskID)
		}
	case models.ChatTypeGroup:
		query = query.Where("chat_type = ?", models.ChatTypeGroup)
	}

	var chats []models.Chat
	if err := query.Order("created_at ASC").Limit(chatHistoryLimit).Find(&chats).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch chats", err)
	}

	return c.JSON(chats)
}

type SendChatRequest struct {
	Message    string `json:"message"`
	ChatType   string `json:"chatType"`
	ReceiverID string `json:"receiverId"`
	TeamID     string `json:"teamId"`
	TaskID     string `json:"taskId"`
}

// SendChat stores one message after verifying the target belongs to the
// sender's company.
func (cc *ChatController) SendChat(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var req SendChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Message) == "" || req.ChatType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message and chat type are required",
		})
	}
	if !models.ValidChatType(req.ChatType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid chat type",
		})
	}

	chat := models.Chat{
		Message:    req.Message,
		ChatType:   req.ChatType,
		CompanyID:  principal.CompanyID,
		SenderID:   principal.ID,
		SenderType: strings.ToLower(string(principal.Role)),
	}

	switch req.ChatType {
	case models.ChatTypePersonal:
		if req.ReceiverID != "" {
			receiverType, ok := cc.resolveReceiver(req.ReceiverID, principal.CompanyID)
			if !ok {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "Unauthorized",
				})
			}
			chat.ReceiverID = utils.Pointer(req.ReceiverID)
			chat.ReceiverType = utils.Pointer(receiverType)
		}
	case models.ChatTypeTeam:
		if req.TeamID != "" {
			var team models.Team
			if err := cc.DB.First(&team, "id = ?", req.TeamID).Error; err != nil ||
				team.CompanyID != principal.CompanyID {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "Unauthorized",
				})
			}
			chat.TeamID = utils.Pointer(req.TeamID)
		}
	case models.ChatTypeTask:
		if req.TaskID != "" {
			var task models.Task
			if err := cc.DB.First(&task, "id = ?", req.TaskID).Error; err != nil ||
				task.CompanyID != principal.CompanyID {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "Unauthorized",
				})
			}
			chat.TaskID = utils.Pointer(req.TaskID)
		}
	}

	if err := cc.DB.Create(&chat).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to send message", err)
	}

	return c.Status(fiber.StatusCreated).JSON(chat)
}

// resolveReceiver finds whether an id is an admin or employee of the company.
func (cc *ChatController) resolveReceiver(receiverID, companyID string) (string, bool) {
	var admin models.Admin
	if err := cc.DB.First(&admin, "id = ?", receiverID).Error; err == nil {
		return "admin", admin.CompanyID == companyID
	}
	var employee models.Employee
	if err := cc.DB.First(&employee, "id = ?", receiverID).Error; err == nil {
		return "employee", employee.CompanyID == companyID
	}
	return "", false
}

type contactEntry struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	WorkID *string `json:"workId,omitempty"`
	Role   string  `json:"role,omitempty"`
}

// GetContacts returns the directory the caller may message, shaped per role.
func (cc *ChatController) GetContacts(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	switch principal.Role {
	case utils.RoleAdmin, utils.RoleCompany:
		var employees []models.Employee
		if err := cc.DB.Select("id", "name", "email", "work_id").
			Where("company_id = ?", principal.CompanyID).
			Order("name ASC").Find(&employees).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch chat contacts", err)
		}

		adminQuery := cc.DB.Select("id", "name", "email").
			Where("company_id = ?", principal.CompanyID)
		if principal.Role == utils.RoleAdmin {
			adminQuery = adminQuery.Where("id <> ?", principal.ID)
		}
		var admins []models.Admin
		if err := adminQuery.Order("name ASC").Find(&admins).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch chat contacts", err)
		}

		return c.JSON(fiber.Map{
			"employees": contactsFromEmployees(employees),
			"admins":    contactsFromAdmins(admins),
		})

	case utils.RoleEmployee:
		var coworkers []models.Employee
		if err := cc.DB.Select("id", "name", "email", "work_id").
			Where("company_id = ? AND id <> ?", principal.CompanyID, principal.ID).
			Order("name ASC").Find(&coworkers).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch chat contacts", err)
		}

		response := fiber.Map{
			"employees": contactsFromEmployees(coworkers),
			"admin":     nil,
		}
		if principal.AdminID != "" {
			var admin models.Admin
			if err := cc.DB.Select("id", "name", "email").
				First(&admin, "id = ?", principal.AdminID).Error; err == nil {
				response["admin"] = contactEntry{
					ID:    admin.ID,
					Name:  admin.Name,
					Email: admin.Email,
					Role:  string(utils.RoleAdmin),
				}
			}
		}
		return c.JSON(response)
	}

	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "Forbidden",
	})
}

func contactsFromEmployees(employees []models.Employee) []contactEntry {
	out := make([]contactEntry, 0, len(employees))
	for _, e := range employees {
		out = append(out, contactEntry{ID: e.ID, Name: e.Name, Email: e.Email, WorkID: e.WorkID})
	}
	return out
}

func contactsFromAdmins(admins []models.Admin) []contactEntry {
	out := make([]contactEntry, 0, len(admins))
	for _, a := range admins {
		out = append(out, contactEntry{ID: a.ID, Name: a.Name, Email: a.Email})
	}
	return out
}

// UnreadCount returns the number of unread messages addressed to the caller
// or posted in team/task/group chats of the company, excluding own messages.
func (cc *ChatController) UnreadCount(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var count int64
	err := cc.DB.Model(&models.Chat{}).
		Where("company_id = ? AND is_read = ? AND sender_id <> ?",
			principal.CompanyID, false, principal.ID).
		Where("receiver_id = ? OR chat_type IN ?",
			principal.ID, []string{models.ChatTypeTeam, models.ChatTypeTask, models.ChatTypeGroup}).
		Count(&count).Error
	if err != nil {
		// The unread badge is cosmetic; degrade to zero instead of failing
		return c.JSON(fiber.Map{"count": 0})
	}

	return c.JSON(fiber.Map{"count": count})
}

type MarkReadRequest struct {
	ChatType   string `json:"chatType"`
	ReceiverID string `json:"receiverId"`
	TeamID     string `json:"teamId"`
	TaskID     string `json:"taskId"`
}

// MarkRead flags a conversation's messages as read for the caller.
func (cc *ChatController) MarkRead(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)

	var req MarkReadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !models.ValidChatType(req.ChatType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid chat type",
		})
	}

	query := cc.DB.Model(&models.Chat{}).
		Where("company_id = ? AND chat_type = ? AND sender_id <> ?",
			principal.CompanyID, req.ChatType, principal.ID)

	switch req.ChatType {
	case models.ChatTypePersonal:
		query = query.Where("receiver_id = ?", principal.ID)
		if req.ReceiverID != "" {
			query = query.Where("sender_id = ?", req.ReceiverID)
		}
	case models.ChatTypeTeam:
		if req.TeamID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "teamId is required",
			})
		}
		query = query.Where("team_id = ?", req.TeamID)
	case models.ChatTypeTask:
		if req.TaskID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "taskId is required",
			})
		}
		query = query.Where("task_id = ?", req.TaskID)
	}

	if err := query.Update("is_read", true).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to mark messages read", err)
	}

	return c.JSON(fiber.Map{"success": true})
}
