package middleware

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"workhive/models"
	"workhive/utils"
)

// Principal is the normalized identity resolved from a role cookie. CompanyID
// is always set; AdminID only for employees that were created by an admin.
type Principal struct {
	ID        string
	Role      utils.Role
	Name      string
	Email     string
	CompanyID string
	AdminID   string
}

const principalKey = "principal"

// GetPrincipal returns the principal stored by RequireSession.
func GetPrincipal(c *fiber.Ctx) *Principal {
	p, _ := c.Locals(principalKey).(*Principal)
	return p
}

// RequireSession resolves the calling principal from whichever role cookie is
// present and rejects requests whose role is not in the allowed set. Roles are
// tried in the fixed precedence company, admin, employee, so a browser holding
// two valid cookies always resolves the same way on every endpoint. The
// account row is re-fetched on every request; a deleted account means no
// session.
//
// No allowed roles means any of the three.
func RequireSession(db *gorm.DB, roles ...utils.Role) fiber.Handler {
	allowed := make(map[utils.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *fiber.Ctx) error {
		var wrongRole bool

		for _, role := range utils.RolePrecedence {
			principal := resolvePrincipal(c, db, role)
			if principal == nil {
				continue
			}
			if len(allowed) > 0 && !allowed[principal.Role] {
				wrongRole = true
				continue
			}
			c.Locals(principalKey, principal)
			return c.Next()
		}

		if wrongRole {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden",
			})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized: Please login",
		})
	}
}

// resolvePrincipal decodes one role's cookie and verifies the account still
// exists. Returns nil when the cookie is absent, invalid, or orphaned.
func resolvePrincipal(c *fiber.Ctx, db *gorm.DB, role utils.Role) *Principal {
	cookie := c.Cookies(utils.CookieNameFor(role))
	if cookie == "" {
		return nil
	}

	claims, err := utils.ParseSessionToken(cookie, role)
	if err != nil {
		return nil
	}

	switch role {
	case utils.RoleCompany:
		var company models.Company
		if err := db.First(&company, "id = ?", claims.ID).Error; err != nil {
			return nil
		}
		return &Principal{
			ID:        company.ID,
			Role:      utils.RoleCompany,
			Name:      company.Name,
			Email:     company.Email,
			CompanyID: company.ID,
		}

	case utils.RoleAdmin:
		var admin models.Admin
		if err := db.First(&admin, "id = ?", claims.ID).Error; err != nil {
			return nil
		}
		return &Principal{
			ID:        admin.ID,
			Role:      utils.RoleAdmin,
			Name:      admin.Name,
			Email:     admin.Email,
			CompanyID: admin.CompanyID,
		}

	case utils.RoleEmployee:
		var employee models.Employee
		if err := db.First(&employee, "id = ?", claims.ID).Error; err != nil {
			return nil
		}
		p := &Principal{
			ID:        employee.ID,
			Role:      utils.RoleEmployee,
			Name:      employee.Name,
			Email:     employee.Email,
			CompanyID: employee.CompanyID,
		}
		if employee.AdminID != nil {
			p.AdminID = *employee.AdminID
		}
		return p
	}
	return nil
}
