package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateUser covers both username and email conflicts at
	// registration.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrRoleNotFound means a referenced role row is missing. During
	// registration this indicates the system was started without its
	// default roles.
	ErrRoleNotFound = errors.New("role does not exist")

	ErrDuplicateRole = errors.New("role already exists")

	// ErrInvalidCredentials is returned for unknown usernames and for
	// wrong passwords alike. Callers must not learn which one failed.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrNotFound = errors.New("resource not found")
)

// ForbiddenError is returned when an authenticated caller is not allowed
// to mutate an article. The diagnostic detail in the message is part of
// the API contract: delete responses name the caller, the owner and the
// caller's roles.
type ForbiddenError struct {
	User  string
	Owner string
	Roles []string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf(
		"only the article author or an administrator may perform this action. Current user: '%s', author: '%s', roles: [%s]",
		e.User, e.Owner, strings.Join(e.Roles, ", "))
}

// RoleAssignmentError marks a registration that created the user row but
// failed to attach the default role. It is a degraded success, not a
// failure: the registration response carries it as a warning.
type RoleAssignmentError struct {
	Username string
	Role     string
	Err      error
}

func (e *RoleAssignmentError) Error() string {
	return fmt.Sprintf("user '%s' was created but assigning role '%s' failed: %v", e.Username, e.Role, e.Err)
}

func (e *RoleAssignmentError) Unwrap() error { return e.Err }
