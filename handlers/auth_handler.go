package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"publisher-platform/helper"
	"publisher-platform/middleware"
	"publisher-platform/models"
	"publisher-platform/services"
)

type AuthHandler struct {
	authService services.AuthService
	tokens      services.TokenService
	Helper      *helper.HTTPHelper
}

func NewAuthHandler(authService services.AuthService, tokens services.TokenService, h *helper.HTTPHelper) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens, Helper: h}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "invalid request body")
		return
	}
	if !h.Helper.ValidateStruct(c, req) {
		return
	}

	result, err := h.authService.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateUser):
			h.Helper.SendBadRequest(c, "user already exists")
		case errors.Is(err, models.ErrRoleNotFound):
			h.Helper.SendBadRequest(c, "the 'User' role does not exist in the system")
		default:
			h.Helper.SendBadRequest(c, err.Error())
		}
		return
	}

	h.Helper.SendSuccess(c, models.RegisterResponse{
		Message: "user registered successfully",
		User:    profileOf(result.User, result.Roles),
		Warning: result.Warning,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "invalid request body")
		return
	}
	if !h.Helper.ValidateStruct(c, req) {
		return
	}

	user, err := h.authService.VerifyCredentials(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			h.Helper.SendUnauthorized(c, models.ErrInvalidCredentials.Error())
			return
		}
		h.Helper.SendInternalError(c, err)
		return
	}

	roles := h.authService.ListRoles(user)
	token, err := h.tokens.Issue(user, roles)
	if err != nil {
		h.Helper.SendInternalError(c, err)
		return
	}

	h.Helper.SendSuccess(c, models.LoginResponse{
		Token: token,
		User:  profileOf(user, roles),
	})
}

// Me returns the profile of the token's subject.
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		h.Helper.SendUnauthorized(c, "authentication required")
		return
	}

	id, err := strconv.ParseUint(caller.Subject, 10, 32)
	if err != nil {
		h.Helper.SendUnauthorized(c, "invalid token subject")
		return
	}

	user, err := h.authService.GetUserByID(uint(id))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, gin.H{"user": profileOf(user, h.authService.ListRoles(user))})
}

func (h *AuthHandler) CreateRole(c *gin.Context) {
	var req models.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "invalid request body")
		return
	}
	if !h.Helper.ValidateStruct(c, req) {
		return
	}

	if err := h.authService.CreateRole(req.Name); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, gin.H{"message": "role '" + req.Name + "' created"})
}

func (h *AuthHandler) AssignRole(c *gin.Context) {
	var req models.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "invalid request body")
		return
	}
	if !h.Helper.ValidateStruct(c, req) {
		return
	}

	if err := h.authService.AssignRole(req.Username, req.RoleName); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, gin.H{"message": "role '" + req.RoleName + "' assigned to '" + req.Username + "'"})
}

func profileOf(user *models.User, roles []string) models.UserProfile {
	if roles == nil {
		roles = []string{}
	}
	return models.UserProfile{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    roles,
	}
}
