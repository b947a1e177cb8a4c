package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"workhive/config"
)

// Role identifies one of the three independent session domains. Each role has
// its own signing secret and its own cookie, so a token minted for one role
// can never be accepted by another.
type Role string

const (
	RoleCompany  Role = "COMPANY"
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

// RolePrecedence is the fixed trial order used whenever a request could carry
// more than one role cookie. Company wins over admin, admin over employee.
var RolePrecedence = []Role{RoleCompany, RoleAdmin, RoleEmployee}

const sessionMaxAge = 30 * 24 * time.Hour

var ErrInvalidSession = errors.New("invalid session token")

// SessionClaims is the payload embedded in every session token.
type SessionClaims struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId,omitempty"`
	AdminID   string `json:"adminId,omitempty"`
	jwt.RegisteredClaims
}

// SecretFor returns the signing secret of a role's session domain.
func SecretFor(role Role) []byte {
	switch role {
	case RoleAdmin:
		return []byte(config.AppConfig.AdminAuthSecret)
	case RoleCompany:
		return []byte(config.AppConfig.CompanyAuthSecret)
	case RoleEmployee:
		return []byte(config.AppConfig.EmployeeAuthSecret)
	}
	return nil
}

// CookieNameFor returns the session cookie name for a role. Production gets
// the __Secure- prefix required for cookies marked Secure.
func CookieNameFor(role Role) string {
	var suffix string
	switch role {
	case RoleAdmin:
		suffix = "admin"
	case RoleCompany:
		suffix = "cmp"
	case RoleEmployee:
		suffix = "employee"
	}
	name := "next-auth.session-token." + suffix
	if config.AppConfig.Environment == "production" {
		return "__Secure-" + name
	}
	return name
}

// IssueSessionToken signs a 30-day session token with the role's secret.
func IssueSessionToken(claims *SessionClaims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionMaxAge)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(SecretFor(Role(claims.Role)))
}

// ParseSessionToken validates tokenString against exactly one role's secret
// and additionally requires the embedded role claim to match. A token signed
// for another role fails here even if the secrets were ever misconfigured to
// overlap.
func ParseSessionToken(tokenString string, role Role) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return SecretFor(role), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Role != string(role) {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// SessionMaxAge is exposed for cookie expiry.
func SessionMaxAge() time.Duration { return sessionMaxAge }
