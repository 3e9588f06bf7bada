package models

import "time"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserProfile is the identity shape returned to clients. Password hashes
// never leave the service.
type UserProfile struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

type RegisterResponse struct {
	Message string      `json:"message"`
	User    UserProfile `json:"user"`
	Warning string      `json:"warning,omitempty"`
}

type CreateRoleRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

type AssignRoleRequest struct {
	Username string `json:"username" validate:"required"`
	RoleName string `json:"role_name" validate:"required"`
}

// ArticleRequest is used for both create and update. CreatedBy is
// deliberately absent: the owner is always server-assigned.
type ArticleRequest struct {
	Title   string    `json:"title" validate:"required,min=1,max=255"`
	Summary string    `json:"summary" validate:"max=2000"`
	Author  string    `json:"author" validate:"max=100"`
	Date    time.Time `json:"date"`
}

type OpinionRequest struct {
	Comments string `json:"comments" validate:"required,min=1,max=2000"`
	Author   string `json:"author" validate:"max=100"`
	// CreatedAt is accepted on the wire but always overwritten with
	// server time at insertion.
	CreatedAt time.Time `json:"created_at"`
}
