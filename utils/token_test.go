package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workhive/config"
)

func setTestSecrets(t *testing.T) {
	t.Helper()
	config.AppConfig = config.Config{
		Environment:        "development",
		AdminAuthSecret:    "admin-secret-for-tests",
		CompanyAuthSecret:  "company-secret-for-tests",
		EmployeeAuthSecret: "employee-secret-for-tests",
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	setTestSecrets(t)

	token, err := IssueSessionToken(&SessionClaims{
		ID:        "admin-1",
		Email:     "alice@example.com",
		Name:      "Alice",
		Role:      string(RoleAdmin),
		CompanyID: "company-1",
	})
	require.NoError(t, err)

	claims, err := ParseSessionToken(token, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.ID)
	assert.Equal(t, "company-1", claims.CompanyID)

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, sessionMaxAge-time.Minute)
	assert.LessOrEqual(t, remaining, sessionMaxAge)
}

func TestTokenForOneRoleIsRejectedByAnother(t *testing.T) {
	setTestSecrets(t)

	token, err := IssueSessionToken(&SessionClaims{ID: "admin-1", Role: string(RoleAdmin)})
	require.NoError(t, err)

	for _, role := range []Role{RoleCompany, RoleEmployee} {
		_, err := ParseSessionToken(token, role)
		assert.Error(t, err, "role %s must not accept an admin token", role)
	}
}

func TestRoleClaimMustMatchEvenWithSharedSecret(t *testing.T) {
	setTestSecrets(t)
	config.AppConfig.EmployeeAuthSecret = config.AppConfig.AdminAuthSecret

	token, err := IssueSessionToken(&SessionClaims{ID: "admin-1", Role: string(RoleAdmin)})
	require.NoError(t, err)

	_, err = ParseSessionToken(token, RoleEmployee)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestTamperedTokenIsRejected(t *testing.T) {
	setTestSecrets(t)

	token, err := IssueSessionToken(&SessionClaims{ID: "admin-1", Role: string(RoleAdmin)})
	require.NoError(t, err)

	_, err = ParseSessionToken(token+"x", RoleAdmin)
	assert.Error(t, err)
}

func TestCookieNames(t *testing.T) {
	setTestSecrets(t)
	assert.Equal(t, "next-auth.session-token.cmp", CookieNameFor(RoleCompany))
	assert.Equal(t, "next-auth.session-token.admin", CookieNameFor(RoleAdmin))
	assert.Equal(t, "next-auth.session-token.employee", CookieNameFor(RoleEmployee))

	config.AppConfig.Environment = "production"
	assert.Equal(t, "__Secure-next-auth.session-token.admin", CookieNameFor(RoleAdmin))
	assert.Equal(t, "__Secure-next-auth.session-token.cmp", CookieNameFor(RoleCompany))
	assert.Equal(t, "__Secure-next-auth.session-token.employee", CookieNameFor(RoleEmployee))
}

func TestSecretForIsPerRole(t *testing.T) {
	setTestSecrets(t)
	assert.Equal(t, []byte("admin-secret-for-tests"), SecretFor(RoleAdmin))
	assert.Equal(t, []byte("company-secret-for-tests"), SecretFor(RoleCompany))
	assert.Equal(t, []byte("employee-secret-for-tests"), SecretFor(RoleEmployee))
	assert.Nil(t, SecretFor(Role("OTHER")))
}
