package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"publisher-platform/config"
	"publisher-platform/models"
)

// ErrInvalidToken is the single failure mode of Validate. Signature,
// issuer, audience and expiry mismatches are deliberately not
// distinguished to the caller.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and validates the bearer tokens shared by the auth
// API (issuing side) and the content API (validating side).
type TokenService interface {
	Issue(user *models.User, roles []string) (string, error)
	Validate(tokenString string) (models.Caller, error)
}

type tokenService struct {
	secret   []byte
	issuer   string
	audience string
	lifetime time.Duration
}

func NewTokenService(cfg config.JWTConfig) TokenService {
	return &tokenService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		lifetime: cfg.Lifetime(),
	}
}

// Issue builds an HS256 token carrying the subject id, display name,
// email and the user's roles under the literal claim key "role". A lone
// role is written as a plain string, several as an array; validating
// sides must accept both shapes.
func (s *tokenService) Issue(user *models.User, roles []string) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":         strconv.FormatUint(uint64(user.ID), 10),
		"unique_name": user.Username,
		"email":       user.Email,
		"iss":         s.issuer,
		"aud":         s.audience,
		"exp":         now.Add(s.lifetime).Unix(),
		"iat":         now.Unix(),
		"nbf":         now.Unix(),
	}

	switch len(roles) {
	case 0:
	case 1:
		claims["role"] = roles[0]
	default:
		claims["role"] = roles
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate checks signature, expiry, issuer and audience. A token that
// fails any check is rejected outright; there is no partial trust.
func (s *tokenService) Validate(tokenString string) (models.Caller, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return models.Caller{}, ErrInvalidToken
	}

	if !claims.VerifyIssuer(s.issuer, true) {
		return models.Caller{}, ErrInvalidToken
	}
	if !claims.VerifyAudience(s.audience, true) {
		return models.Caller{}, ErrInvalidToken
	}

	return CallerFromClaims(claims), nil
}

// CallerFromClaims resolves the caller identity and role set from raw
// claims. Different token layers normalise claim keys differently, so
// the display name is resolved through a fixed fallback chain and roles
// are collected from every claim whose key ends with "role".
func CallerFromClaims(claims jwt.MapClaims) models.Caller {
	caller := models.Caller{
		Username: identityFromClaims(claims),
		Roles:    rolesFromClaims(claims),
	}
	if sub, ok := claims["sub"].(string); ok {
		caller.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		caller.Email = email
	}
	return caller
}

func identityFromClaims(claims jwt.MapClaims) string {
	if name, ok := claims["unique_name"].(string); ok && name != "" {
		return name
	}
	if name, ok := claims["name"].(string); ok && name != "" {
		return name
	}
	for key, value := range claims {
		if strings.HasSuffix(key, "/name") {
			if name, ok := value.(string); ok && name != "" {
				return name
			}
		}
	}
	return ""
}

// rolesFromClaims accepts both the single-string and array shapes a
// "role" claim may take on the wire.
func rolesFromClaims(claims jwt.MapClaims) []string {
	var roles []string
	for key, value := range claims {
		if !strings.HasSuffix(key, "role") {
			continue
		}
		switch v := value.(type) {
		case string:
			roles = append(roles, v)
		case []string:
			roles = append(roles, v...)
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					roles = append(roles, s)
				}
			}
		}
	}
	return roles
}
