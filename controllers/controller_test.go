package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"workhive/config"
	"workhive/models"
	"workhive/routes"
	"workhive/utils"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.AppConfig = config.Config{
		Environment:        "development",
		AdminAuthSecret:    "admin-secret-for-tests",
		CompanyAuthSecret:  "company-secret-for-tests",
		EmployeeAuthSecret: "employee-secret-for-tests",
		RateLimitSignin:    100,
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A shared-cache memory database must stay on one connection
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.MigrateDB(db))

	app := fiber.New()
	routes.SetupRoutes(app, db)
	return app, db
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func seedCompany(t *testing.T, db *gorm.DB, name, email string) models.Company {
	t.Helper()
	company := models.Company{
		Name:     name,
		Email:    email,
		Password: hashPassword(t, "password123"),
	}
	require.NoError(t, db.Create(&company).Error)
	return company
}

func seedAdmin(t *testing.T, db *gorm.DB, company models.Company, name, email string) models.Admin {
	t.Helper()
	admin := models.Admin{
		Name:      name,
		Email:     email,
		Password:  hashPassword(t, "password123"),
		CompanyID: company.ID,
	}
	require.NoError(t, db.Create(&admin).Error)
	return admin
}

func seedEmployee(t *testing.T, db *gorm.DB, admin models.Admin, name, email string) models.Employee {
	t.Helper()
	employee := models.Employee{
		Name:      name,
		Email:     email,
		Password:  hashPassword(t, "password123"),
		CompanyID: admin.CompanyID,
		AdminID:   &admin.ID,
	}
	require.NoError(t, db.Create(&employee).Error)
	return employee
}

func companyCookie(t *testing.T, company models.Company) *http.Cookie {
	t.Helper()
	token, err := utils.IssueSessionToken(&utils.SessionClaims{
		ID:    company.ID,
		Email: company.Email,
		Name:  company.Name,
		Role:  string(utils.RoleCompany),
	})
	require.NoError(t, err)
	return &http.Cookie{Name: utils.CookieNameFor(utils.RoleCompany), Value: token}
}

func adminCookie(t *testing.T, admin models.Admin) *http.Cookie {
	t.Helper()
	token, err := utils.IssueSessionToken(&utils.SessionClaims{
		ID:        admin.ID,
		Email:     admin.Email,
		Name:      admin.Name,
		Role:      string(utils.RoleAdmin),
		CompanyID: admin.CompanyID,
	})
	require.NoError(t, err)
	return &http.Cookie{Name: utils.CookieNameFor(utils.RoleAdmin), Value: token}
}

func employeeCookie(t *testing.T, employee models.Employee) *http.Cookie {
	t.Helper()
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
	token, err := utils.IssueSessionToken(claims)
	require.NoError(t, err)
	return &http.Cookie{Name: utils.CookieNameFor(utils.RoleEmployee), Value: token}
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func bodyMap(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	decodeBody(t, resp, &out)
	return out
}

func bodySlice(t *testing.T, resp *http.Response) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	decodeBody(t, resp, &out)
	return out
}
