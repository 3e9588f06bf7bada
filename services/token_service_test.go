package services

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publisher-platform/config"
	"publisher-platform/models"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:           "test-secret",
		Issuer:           "publisher-auth",
		Audience:         "publisher-clients",
		ExpiresInMinutes: 60,
	}
}

func testUser() *models.User {
	return &models.User{ID: 42, Username: "alice", Email: "alice@example.com"}
}

func TestTokenService_RoleClaimRoundTrip(t *testing.T) {
	svc := NewTokenService(testJWTConfig())

	token, err := svc.Issue(testUser(), []string{models.RoleAdmin})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	caller, err := svc.Validate(token)
	require.NoError(t, err)

	// The role set must come back exactly as issued: not renamed, not
	// dropped, not remapped to another claim key.
	assert.Equal(t, []string{"Admin"}, caller.Roles)
	assert.Equal(t, "alice", caller.Username)
	assert.Equal(t, "42", caller.Subject)
	assert.Equal(t, "alice@example.com", caller.Email)
}

func TestTokenService_MultipleRoles(t *testing.T) {
	svc := NewTokenService(testJWTConfig())

	token, err := svc.Issue(testUser(), []string{"User", "Admin"})
	require.NoError(t, err)

	caller, err := svc.Validate(token)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"User", "Admin"}, caller.Roles)
	assert.True(t, caller.IsOwnerOrAdmin("someone-else"))
}

func TestTokenService_FreshSignaturePerCall(t *testing.T) {
	svc := NewTokenService(testJWTConfig())

	first, err := svc.Issue(testUser(), []string{"User"})
	require.NoError(t, err)
	second, err := svc.Issue(testUser(), []string{"User"})
	require.NoError(t, err)

	_, err = svc.Validate(first)
	assert.NoError(t, err)
	_, err = svc.Validate(second)
	assert.NoError(t, err)
}

func TestTokenService_ExpiredTokenRejected(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ExpiresInMinutes = -5
	expired := NewTokenService(cfg)

	// Same secret, same issuer, same audience: only the expiry is in
	// the past.
	token, err := expired.Issue(testUser(), []string{"User"})
	require.NoError(t, err)

	validator := NewTokenService(testJWTConfig())
	_, err = validator.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_WrongSecretRejected(t *testing.T) {
	issuer := NewTokenService(testJWTConfig())
	token, err := issuer.Issue(testUser(), []string{"User"})
	require.NoError(t, err)

	cfg := testJWTConfig()
	cfg.Secret = "a-different-secret"
	_, err = NewTokenService(cfg).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_WrongIssuerRejected(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Issuer = "someone-else"
	issuer := NewTokenService(cfg)
	token, err := issuer.Issue(testUser(), []string{"User"})
	require.NoError(t, err)

	_, err = NewTokenService(testJWTConfig()).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_WrongAudienceRejected(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Audience = "other-clients"
	issuer := NewTokenService(cfg)
	token, err := issuer.Issue(testUser(), []string{"User"})
	require.NoError(t, err)

	_, err = NewTokenService(testJWTConfig()).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_GarbageRejected(t *testing.T) {
	svc := NewTokenService(testJWTConfig())
	_, err := svc.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCallerFromClaims_IdentityFallbackChain(t *testing.T) {
	cases := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{
			name:   "unique_name preferred",
			claims: jwt.MapClaims{"unique_name": "alice", "name": "ignored"},
			want:   "alice",
		},
		{
			name:   "name as fallback",
			claims: jwt.MapClaims{"name": "bob"},
			want:   "bob",
		},
		{
			name: "namespaced name claim",
			claims: jwt.MapClaims{
				"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name": "carol",
			},
			want: "carol",
		},
		{
			name:   "no identity claim",
			claims: jwt.MapClaims{"sub": "7"},
			want:   "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CallerFromClaims(tc.claims).Username)
		})
	}
}

func TestCallerFromClaims_RoleSuffixCollection(t *testing.T) {
	claims := jwt.MapClaims{
		"role": "User",
		"http://schemas.microsoft.com/ws/2008/06/identity/claims/role": []interface{}{"Admin"},
		"unrelated": "ignored",
		// Suffix match is case-sensitive.
		"ROLE": "ignored-too",
	}

	caller := CallerFromClaims(claims)
	assert.ElementsMatch(t, []string{"User", "Admin"}, caller.Roles)
}
