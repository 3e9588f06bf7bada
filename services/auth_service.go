package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"publisher-platform/logger"
	"publisher-platform/models"
	"publisher-platform/repositories"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// RegisterResult reports a completed registration. Warning is non-empty
// when the user row was created but the default role could not be
// attached: a degraded success the caller may act on.
type RegisterResult struct {
	User    *models.User
	Roles   []string
	Warning string
}

type AuthService interface {
	Register(req models.RegisterRequest) (*RegisterResult, error)
	VerifyCredentials(username, password string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	AssignRole(username, roleName string) error
	CreateRole(name string) error
	ListRoles(user *models.User) []string
	EnsureDefaults(adminPassword string) error
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(req models.RegisterRequest) (*RegisterResult, error) {
	if req.Username == "" || req.Password == "" {
		return nil, errors.New("username and password are required")
	}
	if !usernamePattern.MatchString(req.Username) {
		return nil, errors.New("username may only contain letters, numbers and underscores")
	}

	if _, err := s.userRepo.GetByUsername(req.Username); err == nil {
		return nil, models.ErrDuplicateUser
	}

	// A missing email is synthesized so the unique-email constraint
	// still holds. The random suffix keeps repeat registrations from
	// colliding with unrelated users.
	email := req.Email
	if email == "" {
		email = fmt.Sprintf("%s-%s@system.local", req.Username, strings.ReplaceAll(uuid.NewString(), "-", ""))
	}
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, models.ErrDuplicateUser
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	role, err := s.userRepo.GetRoleByName(models.RoleUser)
	if err != nil {
		return nil, models.ErrRoleNotFound
	}

	// Reload so the role is attached to the persisted row rather than
	// the in-memory copy. The row already exists at this point, so a
	// failed reload degrades to the in-memory copy instead of failing
	// the whole registration.
	if persisted, reloadErr := s.userRepo.GetByUsername(req.Username); reloadErr == nil {
		user = persisted
	}

	result := &RegisterResult{User: user}
	if err := s.attachRole(user, role); err != nil {
		assignErr := &models.RoleAssignmentError{Username: user.Username, Role: role.Name, Err: err}
		logger.Get().Warn().
			Str("username", user.Username).
			Str("role", role.Name).
			Err(err).
			Msg("registration degraded: default role assignment failed")
		result.Warning = assignErr.Error()
	}

	if refreshed, err := s.userRepo.GetByUsername(req.Username); err == nil {
		result.User = refreshed
	}
	result.Roles = result.User.RoleNames()

	return result, nil
}

// attachRole tries the association path first and falls back to a direct
// join-table insert, mirroring the two-step assignment the identity
// store needs under eventual consistency.
func (s *authService) attachRole(user *models.User, role *models.Role) error {
	err := s.userRepo.AddRole(user, role)
	if err == nil {
		return nil
	}
	if rawErr := s.userRepo.AddRoleRaw(user.ID, role.ID); rawErr != nil {
		return fmt.Errorf("association append: %v; raw insert: %w", err, rawErr)
	}
	return nil
}

func (s *authService) VerifyCredentials(username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return user, nil
}

func (s *authService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// AssignRole attaches an existing role to an existing user. Assigning a
// role the user already holds is a no-op success.
func (s *authService) AssignRole(username, roleName string) error {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrNotFound
		}
		return err
	}

	role, err := s.userRepo.GetRoleByName(roleName)
	if err != nil {
		return err
	}

	for _, held := range user.Roles {
		if held.Name == role.Name {
			return nil
		}
	}

	return s.attachRole(user, role)
}

func (s *authService) CreateRole(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("role name is required")
	}
	if _, err := s.userRepo.GetRoleByName(name); err == nil {
		return models.ErrDuplicateRole
	}
	return s.userRepo.CreateRole(&models.Role{Name: name})
}

func (s *authService) ListRoles(user *models.User) []string {
	roles, err := s.userRepo.GetRoles(user.ID)
	if err != nil {
		return user.RoleNames()
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names
}

// EnsureDefaults provisions the Admin and User roles and the initial
// admin account. Run at auth API startup; idempotent.
func (s *authService) EnsureDefaults(adminPassword string) error {
	for _, name := range []string{models.RoleAdmin, models.RoleUser} {
		if _, err := s.userRepo.GetRoleByName(name); err != nil {
			if !errors.Is(err, models.ErrRoleNotFound) {
				return err
			}
			if err := s.userRepo.CreateRole(&models.Role{Name: name}); err != nil {
				return err
			}
		}
	}

	admin, err := s.userRepo.GetByUsername("admin")
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin = &models.User{Username: "admin", Email: "admin@demo.local", Password: string(hashed)}
		if err := s.userRepo.Create(admin); err != nil {
			return err
		}
	}

	if !adminHasRole(admin, models.RoleAdmin) {
		role, err := s.userRepo.GetRoleByName(models.RoleAdmin)
		if err != nil {
			return err
		}
		return s.attachRole(admin, role)
	}
	return nil
}

func adminHasRole(user *models.User, name string) bool {
	for _, r := range user.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
