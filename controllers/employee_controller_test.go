package controller_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workhive/models"
)

func TestCreateEmployee(t *testing.T) {
	app, db := setupApp(t)
	company := seedCompany(t, db, "Acme Inc", "acme@example.com")
	admin := seedAdmin(t, db, company, "Alice", "alice@example.com")

	resp := doRequest(t, app, "POST", "/api/admin/employees", map[string]string{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "password123",
		"workId":   "W-100",
	}, adminCookie(t, admin))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var employee models.Employee
	require.NoError(t, db.First(&employee, "email = ?", "bob@example.com").Error)
	assert.Equal(t, company.ID, employee.CompanyID)
	require.NotNil(t, employee.AdminID)
	assert.Equal(t, admin.ID, *employee.AdminID)
	require.NotNil(t, employee.WorkID)
	assert.Equal(t, "W-100", *employee.WorkID)
}

func TestCreateEmployeeDuplicateEmailGlobally(t *testing.T) {
	app, db := setupApp(t)

	companyA := seedCompany(t, db, "Acme Inc", "acme@example.com")
	adminA := seedAdmin(t, db, companyA, "Alice", "alice@example.com")
	seedEmployee(t, db, adminA, "Bob", "bob@example.com")

	// Email uniqueness is global: another company cannot reuse it either
	companyB := seedCompany(t, db, "Globex", "globex@example.com")
	adminB := seedAdmin(t, db, companyB, "Gary", "gary@example.com")

	resp := doRequest(t, app, "POST", "/api/admin/employees", map[string]string{
		"name":     "Bob Again",
		"email":    "bob@example.com",
		"password": "password123",
	}, adminCookie(t, adminB))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Employee with this email already exists", bodyMap(t, resp)["error"])
}

func TestCreateEmployeeDuplicateWorkIDWithinCompany(t *testing.T) {
	app, db := setupApp(t)
	company := seedCompany(t, db, "Acme Inc", "acme@example.com")
	admin := seedAdmin(t, db, company, "Alice", "alice@example.com")

	first := doRequest(t, app, "POST", "/api/admin/employees", map[string]string{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "password123",
		"workId":   "W-100",
	}, adminCookie(t, admin))
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second := doRequest(t, app, "POST", "/api/admin/employees", map[string]string{
		"name":     "Carol",
		"email":    "carol@example.com",
		"password": "password123",
		"workId":   "W-100",
	}, adminCookie(t, admin))
	require.Equal(t, http.StatusBadRequest, second.StatusCode)
	assert.Equal(t, "Work ID already in use within your company", bodyMap(t, second)["error"])
}

func TestEmployeeListingIsTenantScoped(t *testing.T) {
	app, db := setupApp(t)

	companyX := seedCompany(t, db, "Acme Inc", "acme@example.com")
	adminA := seedAdmin(t, db, companyX, "Alice", "alice@example.com")
	seedEmployee(t, db, adminA, "Alice Employee", "alice-emp@co.com")

	companyY := seedCompany(t, db, "Globex", "globex@example.com")
	adminB := seedAdmin(t, db, companyY, "Gary", "gary@example.com")

	resp := doRequest(t, app, "GET", "/api/admin/employees", nil, adminCookie(t, adminB))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	employees := bodySlice(t, resp)
	assert.Empty(t, employees)
	for _, emp := range employees {
		assert.NotEqual(t, "alice-emp@co.com", emp["email"])
	}
}

func TestEmployeeListingIncludesTaskStats(t *testing.T) {
	app, db := setupApp(t)
	company := seedCompany(t, db, "Acme Inc", "acme@example.com")
	admin := seedAdmin(t, db, company, "Alice", "alice@example.com")
	employee := seedEmployee(t, db, admin, "Bob", "bob@example.com")

	for _, status := range []string{
		models.TaskStatusPending,
		models.TaskStatusInProgress,
		models.TaskStatusCompleted,
		models.TaskStatusCompleted,
	} {
		task := models.Task{
			Title:      "Task " + status,
			Status:     status,
			Priority:   models.TaskPriorityMedium,
			CompanyID:  company.ID,
			AdminID:    admin.ID,
			EmployeeID: &employee.ID,
		}
		require.NoError(t, db.Create(&task).Error)
	}

	resp := doRequest(t, app, "GET", "/api/admin/employees", nil, adminCookie(t, admin))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	employees := bodySlice(t, resp)
	require.Len(t, employees, 1)
	assert.EqualValues(t, 4, employees[0]["totalTasks"])
	assert.EqualValues(t, 2, employees[0]["completedTasks"])
	assert.EqualValues(t, 1, employees[0]["inProgressTasks"])
	assert.EqualValues(t, 1, employees[0]["notStartedTasks"])
}

func TestGetEmployeeCrossTenantIs404(t *testing.T) {
	app, db := setupApp(t)

	companyX := seedCompany(t, db, "Acme Inc", "acme@example.com")
	adminA := seedAdmin(t, db, companyX, "Alice", "alice@example.com")
	foreign := seedEmployee(t, db, adminA, "Bob", "bob@example.com")

	companyY := seedCompany(t, db, "Globex", "globex@example.com")
	adminB := seedAdmin(t, db, companyY, "Gary", "gary@example.com")

	resp := doRequest(t, app, "GET", "/api/admin/employees/"+foreign.ID, nil, adminCookie(t, adminB))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := bodyMap(t, resp)
	assert.NotContains(t, body, "email")
}

func TestDeleteEmployeeDetachesTasksAndTeams(t *testing.T) {
	app, db := setupApp(t)
	company := seedCompany(t, db, "Acme Inc", "acme@example.com")
	admin := seedAdmin(t, db, company, "Alice", "alice@example.com")
	employee := seedEmployee(t, db, admin, "Bob", "bob@example.com")

	task := models.Task{
		Title:      "Ship v1",
		CompanyID:  company.ID,
		AdminID:    admin.ID,
		EmployeeID: &employee.ID,
	}
	require.NoError(t, db.Create(&task).Error)

	team := models.Team{Name: "Core", CompanyID: company.ID, AdminID: admin.ID}
	require.NoError(t, db.Create(&team).Error)
	member := models.TeamMember{TeamID: team.ID, EmployeeID: &employee.ID}
	require.NoError(t, db.Create(&member).Error)

	resp := doRequest(t, app, "DELETE", "/api/admin/employees/"+employee.ID, nil, adminCookie(t, admin))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var remaining models.Task
	require.NoError(t, db.First(&remaining, "id = ?", task.ID).Error)
	assert.Nil(t, remaining.EmployeeID)

	var memberCount int64
	db.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&memberCount)
	assert.EqualValues(t, 0, memberCount)
}

func TestAdminRoutesRejectOtherRoles(t *testing.T) {
	app, db := setupApp(t)
	company := seedCompany(t, db, "Acme Inc", "acme@example.com")
	admin := seedAdmin(t, db, company, "Alice", "alice@example.com")
	employee := seedEmployee(t, db, admin, "Bob", "bob@example.com")

	resp := doRequest(t, app, "GET", "/api/admin/employees", nil, employeeCookie(t, employee))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/admin/employees", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCompanyAdminCRUD(t *testing.T) {
	app, db := setupApp(t)
	company := seedCompany(t, db, "Acme Inc", "acme@example.com")

	created := doRequest(t, app, "POST", "/api/cmp/admins", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	}, companyCookie(t, company))
	require.Equal(t, http.StatusCreated, created.StatusCode)
	adminID := bodyMap(t, created)["id"].(string)

	list := doRequest(t, app, "GET", "/api/cmp/admins", nil, companyCookie(t, company))
	require.Equal(t, http.StatusOK, list.StatusCode)
	require.Len(t, bodySlice(t, list), 1)

	updated := doRequest(t, app, "PUT", "/api/cmp/admins/"+adminID, map[string]string{
		"name": "Alice Renamed",
	}, companyCookie(t, company))
	require.Equal(t, http.StatusOK, updated.StatusCode)

	var admin models.Admin
	require.NoError(t, db.First(&admin, "id = ?", adminID).Error)
	assert.Equal(t, "Alice Renamed", admin.Name)

	deleted := doRequest(t, app, "DELETE", "/api/cmp/admins/"+adminID, nil, companyCookie(t, company))
	require.Equal(t, http.StatusOK, deleted.StatusCode)

	var count int64
	db.Model(&models.Admin{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCompanyCannotTouchForeignAdmin(t *testing.T) {
	app, db := setupApp(t)

	companyX := seedCompany(t, db, "Acme Inc", "acme@example.com")
	foreignAdmin := seedAdmin(t, db, companyX, "Alice", "alice@example.com")

	companyY := seedCompany(t, db, "Globex", "globex@example.com")

	resp := doRequest(t, app, "DELETE", "/api/cmp/admins/"+foreignAdmin.ID, nil, companyCookie(t, companyY))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var stillThere models.Admin
	assert.NoError(t, db.First(&stillThere, "id = ?", foreignAdmin.ID).Error)
}

func TestCompanyDashboardTotals(t *testing.T) {
	app, db := setupApp(t)
	company := seedCompany(t, db, "Acme Inc", "acme@example.com")
	admin := seedAdmin(t, db, company, "Alice", "alice@example.com")
	seedEmployee(t, db, admin, "Bob", "bob@example.com")

	task := models.Task{Title: "Ship v1", CompanyID: company.ID, AdminID: admin.ID}
	require.NoError(t, db.Create(&task).Error)

	resp := doRequest(t, app, "GET", "/api/cmp/dashboard", nil, companyCookie(t, company))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := bodyMap(t, resp)
	assert.EqualValues(t, 1, body["totalAdmins"])
	assert.EqualValues(t, 1, body["totalEmployees"])
	assert.EqualValues(t, 1, body["companyTasks"])
}
