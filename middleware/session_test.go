package middleware_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"workhive/config"
	"workhive/middleware"
	"workhive/models"
	"workhive/utils"
)

func setup(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.AppConfig = config.Config{
		Environment:        "development",
		AdminAuthSecret:    "admin-secret-for-tests",
		CompanyAuthSecret:  "company-secret-for-tests",
		EmployeeAuthSecret: "employee-secret-for-tests",
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.MigrateDB(db))
	return fiber.New(), db
}

func whoami(c *fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	return c.JSON(fiber.Map{"id": p.ID, "role": string(p.Role)})
}

func seedAccounts(t *testing.T, db *gorm.DB) (models.Company, models.Admin, models.Employee) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	company := models.Company{Name: "Acme Inc", Email: "acme@example.com", Password: string(hash)}
	require.NoError(t, db.Create(&company).Error)
	admin := models.Admin{Name: "Alice", Email: "alice@example.com", Password: string(hash), CompanyID: company.ID}
	require.NoError(t, db.Create(&admin).Error)
	employee := models.Employee{Name: "Bob", Email: "bob@example.com", Password: string(hash), CompanyID: company.ID, AdminID: &admin.ID}
	require.NoError(t, db.Create(&employee).Error)
	return company, admin, employee
}

func sessionCookie(t *testing.T, role utils.Role, id string) *http.Cookie {
	t.Helper()
	token, err := utils.IssueSessionToken(&utils.SessionClaims{
		ID:   id,
		Role: string(role),
	})
	require.NoError(t, err)
	return &http.Cookie{Name: utils.CookieNameFor(role), Value: token}
}

func request(t *testing.T, app *fiber.App, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestRequireSessionWithoutCookieIs401(t *testing.T) {
	app, db := setup(t)
	app.Get("/protected", middleware.RequireSession(db), whoami)

	resp := request(t, app, "/protected")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireSessionWrongRoleIs403(t *testing.T) {
	app, db := setup(t)
	_, _, employee := seedAccounts(t, db)
	app.Get("/admin-only", middleware.RequireSession(db, utils.RoleAdmin), whoami)

	resp := request(t, app, "/admin-only", sessionCookie(t, utils.RoleEmployee, employee.ID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequireSessionDeletedAccountIs401(t *testing.T) {
	app, db := setup(t)
	_, admin, _ := seedAccounts(t, db)
	app.Get("/protected", middleware.RequireSession(db), whoami)

	cookie := sessionCookie(t, utils.RoleAdmin, admin.ID)
	require.NoError(t, db.Delete(&admin).Error)

	resp := request(t, app, "/protected", cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireSessionTamperedTokenIs401(t *testing.T) {
	app, db := setup(t)
	_, admin, _ := seedAccounts(t, db)
	app.Get("/protected", middleware.RequireSession(db), whoami)

	cookie := sessionCookie(t, utils.RoleAdmin, admin.ID)
	cookie.Value += "x"

	resp := request(t, app, "/protected", cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRolePrecedenceCompanyWins(t *testing.T) {
	app, db := setup(t)
	company, admin, _ := seedAccounts(t, db)
	app.Get("/any", middleware.RequireSession(db), whoami)

	resp := request(t, app, "/any",
		sessionCookie(t, utils.RoleAdmin, admin.ID),
		sessionCookie(t, utils.RoleCompany, company.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, company.ID, body["id"])
	assert.Equal(t, string(utils.RoleCompany), body["role"])
}

func TestRolePrecedenceSkipsDisallowedRole(t *testing.T) {
	app, db := setup(t)
	company, admin, _ := seedAccounts(t, db)
	app.Get("/admin-only", middleware.RequireSession(db, utils.RoleAdmin), whoami)

	// The company cookie outranks the admin cookie but is not allowed here,
	// so resolution falls through to the admin session.
	resp := request(t, app, "/admin-only",
		sessionCookie(t, utils.RoleCompany, company.ID),
		sessionCookie(t, utils.RoleAdmin, admin.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, admin.ID, body["id"])
}

func TestGetPrincipalWithoutSessionIsNil(t *testing.T) {
	app, _ := setup(t)

	ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
	defer app.ReleaseCtx(ctx)

	assert.Nil(t, middleware.GetPrincipal(ctx))
}
