package webapp

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"publisher-platform/models"
)

// Session keys. The token is authoritative; the username and role list
// are convenience caches derived from it.
const (
	sessionKeyToken    = "jwt_token"
	sessionKeyUsername = "username"
	sessionKeyRoles    = "user_roles"
)

// SetLogin caches the token, the username and the token's role claims in
// the session. The decode is unverified on purpose: the token was just
// received from the auth API over a trusted channel and the cached roles
// only gate UI elements, never authorize anything.
func SetLogin(c *gin.Context, token, username string) error {
	session := sessions.Default(c)
	session.Set(sessionKeyToken, token)
	session.Set(sessionKeyUsername, username)
	session.Set(sessionKeyRoles, strings.Join(DecodeRoles(token), ","))
	return session.Save()
}

// ClearSession drops all cached login state.
func ClearSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}

// Token returns the cached bearer token, empty when not logged in.
func Token(c *gin.Context) string {
	if v, ok := sessions.Default(c).Get(sessionKeyToken).(string); ok {
		return v
	}
	return ""
}

// Username returns the cached login name.
func Username(c *gin.Context) string {
	if v, ok := sessions.Default(c).Get(sessionKeyUsername).(string); ok {
		return v
	}
	return ""
}

// Roles returns the cached role list. When the cache is empty but a
// token is present, the roles are re-derived from the token and the
// cache repopulated (self-healing).
func Roles(c *gin.Context) []string {
	session := sessions.Default(c)

	cached, _ := session.Get(sessionKeyRoles).(string)
	if cached != "" {
		return strings.Split(cached, ",")
	}

	token := Token(c)
	if token == "" {
		return nil
	}

	roles := DecodeRoles(token)
	if len(roles) > 0 {
		session.Set(sessionKeyRoles, strings.Join(roles, ","))
		_ = session.Save()
	}
	return roles
}

// CanEditOrDelete mirrors the content API's ownership/role rule for UI
// gating only. The API re-checks on every mutation; this just decides
// whether to show the buttons.
func CanEditOrDelete(username string, roles []string, article models.Article) bool {
	if username != "" && username == article.CreatedBy {
		return true
	}
	for _, role := range roles {
		if role == models.RoleAdmin {
			return true
		}
	}
	return false
}

// DecodeRoles reads the "role" claim out of a token without verifying
// the signature. Handles both the single-string and array shapes.
func DecodeRoles(tokenString string) []string {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil
	}

	switch v := claims["role"].(type) {
	case string:
		return []string{v}
	case []interface{}:
		var roles []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				roles = append(roles, s)
			}
		}
		return roles
	}
	return nil
}
