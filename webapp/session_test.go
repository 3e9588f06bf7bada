package webapp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publisher-platform/config"
	"publisher-platform/models"
	"publisher-platform/services"
)

func issueTestToken(t *testing.T, roles []string) string {
	t.Helper()
	tokens := services.NewTokenService(config.JWTConfig{
		Secret:           "session-test-secret",
		Issuer:           "publisher-auth",
		Audience:         "publisher-clients",
		ExpiresInMinutes: 5,
	})
	user := &models.User{Username: "alice", Email: "alice@example.com"}
	user.ID = 1
	token, err := tokens.Issue(user, roles)
	require.NoError(t, err)
	return token
}

func TestDecodeRoles_SingleRoleIsAString(t *testing.T) {
	token := issueTestToken(t, []string{models.RoleUser})

	assert.Equal(t, []string{models.RoleUser}, DecodeRoles(token))
}

func TestDecodeRoles_MultipleRolesAreAnArray(t *testing.T) {
	token := issueTestToken(t, []string{models.RoleUser, models.RoleAdmin})

	roles := DecodeRoles(token)
	assert.ElementsMatch(t, []string{models.RoleUser, models.RoleAdmin}, roles)
}

func TestDecodeRoles_GarbageToken(t *testing.T) {
	assert.Nil(t, DecodeRoles("not-a-jwt"))
	assert.Nil(t, DecodeRoles(""))
}

func TestCanEditOrDelete(t *testing.T) {
	article := models.Article{CreatedBy: "alice"}

	cases := []struct {
		name     string
		username string
		roles    []string
		want     bool
	}{
		{"owner", "alice", []string{"User"}, true},
		{"admin non-owner", "root", []string{"Admin"}, true},
		{"plain non-owner", "bob", []string{"User"}, false},
		{"anonymous", "", nil, false},
		{"anonymous with cached role", "", []string{"User"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanEditOrDelete(tc.username, tc.roles, article))
		})
	}
}

func TestCanEditOrDelete_EmptyOwner(t *testing.T) {
	// Legacy rows without an owner are only manageable by admins.
	article := models.Article{CreatedBy: ""}
	assert.False(t, CanEditOrDelete("bob", []string{"User"}, article))
	assert.True(t, CanEditOrDelete("root", []string{"Admin"}, article))
}

func sessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("test-session-secret"))
	router.Use(sessions.Sessions("publisher_session", store))
	return router
}

func TestRoles_SelfHealsFromToken(t *testing.T) {
	token := issueTestToken(t, []string{models.RoleUser, models.RoleAdmin})

	router := sessionRouter()
	// Seed a session holding only the token, as if the role cache was
	// lost or written by an older version.
	router.GET("/seed", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(sessionKeyToken, token)
		session.Set(sessionKeyUsername, "alice")
		require.NoError(t, session.Save())
		c.Status(http.StatusOK)
	})
	router.GET("/roles", func(c *gin.Context) {
		c.String(http.StatusOK, strings.Join(Roles(c), ","))
	})

	seed := httptest.NewRecorder()
	router.ServeHTTP(seed, httptest.NewRequest(http.MethodGet, "/seed", nil))
	require.Equal(t, http.StatusOK, seed.Code)

	read := httptest.NewRequest(http.MethodGet, "/roles", nil)
	for _, c := range seed.Result().Cookies() {
		read.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, read)

	got := strings.Split(w.Body.String(), ",")
	assert.ElementsMatch(t, []string{models.RoleUser, models.RoleAdmin}, got)
}

func TestRoles_EmptyWithoutToken(t *testing.T) {
	router := sessionRouter()
	router.GET("/roles", func(c *gin.Context) {
		c.String(http.StatusOK, strings.Join(Roles(c), ","))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/roles", nil))
	assert.Equal(t, "", w.Body.String())
}

func TestSetLogin_CachesRolesFromToken(t *testing.T) {
	token := issueTestToken(t, []string{models.RoleUser})

	router := sessionRouter()
	router.GET("/login", func(c *gin.Context) {
		require.NoError(t, SetLogin(c, token, "alice"))
		c.Status(http.StatusOK)
	})
	router.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, Username(c)+"|"+strings.Join(Roles(c), ","))
	})

	login := httptest.NewRecorder()
	router.ServeHTTP(login, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, login.Code)

	who := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range login.Result().Cookies() {
		who.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, who)
	assert.Equal(t, "alice|User", w.Body.String())
}

func TestClearSession_DropsLoginState(t *testing.T) {
	token := issueTestToken(t, []string{models.RoleUser})

	router := sessionRouter()
	router.GET("/login", func(c *gin.Context) {
		require.NoError(t, SetLogin(c, token, "alice"))
		c.Status(http.StatusOK)
	})
	router.GET("/logout", func(c *gin.Context) {
		require.NoError(t, ClearSession(c))
		c.String(http.StatusOK, Token(c))
	})

	login := httptest.NewRecorder()
	router.ServeHTTP(login, httptest.NewRequest(http.MethodGet, "/login", nil))

	logout := httptest.NewRequest(http.MethodGet, "/logout", nil)
	for _, c := range login.Result().Cookies() {
		logout.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, logout)
	assert.Equal(t, "", w.Body.String())
}
