package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"publisher-platform/models"
)

// stubUserRepo is an in-memory UserRepository for service tests.
type stubUserRepo struct {
	users      map[string]*models.User
	roles      map[string]*models.Role
	nextUserID uint
	nextRoleID uint

	failAddRole    bool
	failAddRoleRaw bool

	// failReload makes GetByUsername fail for rows that exist, so the
	// duplicate check still passes but the post-create reload does not.
	failReload bool
}

func newStubUserRepo() *stubUserRepo {
	r := &stubUserRepo{
		users:      make(map[string]*models.User),
		roles:      make(map[string]*models.Role),
		nextUserID: 1,
		nextRoleID: 1,
	}
	r.mustAddRole(models.RoleAdmin)
	r.mustAddRole(models.RoleUser)
	return r
}

func (r *stubUserRepo) mustAddRole(name string) {
	r.roles[name] = &models.Role{ID: r.nextRoleID, Name: name}
	r.nextRoleID++
}

func (r *stubUserRepo) Create(user *models.User) error {
	user.ID = r.nextUserID
	r.nextUserID++
	clone := *user
	r.users[user.Username] = &clone
	return nil
}

func (r *stubUserRepo) GetByID(id uint) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) GetByUsername(username string) (*models.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if r.failReload {
		return nil, errors.New("connection reset")
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) GetRoleByName(name string) (*models.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, models.ErrRoleNotFound
	}
	return role, nil
}

func (r *stubUserRepo) CreateRole(role *models.Role) error {
	role.ID = r.nextRoleID
	r.nextRoleID++
	r.roles[role.Name] = role
	return nil
}

func (r *stubUserRepo) AddRole(user *models.User, role *models.Role) error {
	if r.failAddRole {
		return errors.New("association failed")
	}
	return r.appendRole(user.Username, role)
}

func (r *stubUserRepo) AddRoleRaw(userID, roleID uint) error {
	if r.failAddRoleRaw {
		return errors.New("raw insert failed")
	}
	for _, u := range r.users {
		if u.ID == userID {
			for _, role := range r.roles {
				if role.ID == roleID {
					return r.appendRole(u.Username, role)
				}
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubUserRepo) appendRole(username string, role *models.Role) error {
	u := r.users[username]
	for _, held := range u.Roles {
		if held.Name == role.Name {
			return nil
		}
	}
	u.Roles = append(u.Roles, *role)
	return nil
}

func (r *stubUserRepo) GetRoles(userID uint) ([]models.Role, error) {
	for _, u := range r.users {
		if u.ID == userID {
			return u.Roles, nil
		}
	}
	return nil, nil
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo)

	result, err := svc.Register(models.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Secret123",
	})
	require.NoError(t, err)
	require.NotNil(t, result.User)

	assert.Empty(t, result.Warning)
	assert.Contains(t, result.Roles, models.RoleUser)
	assert.NotEqual(t, "Secret123", result.User.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.Password), []byte("Secret123")))
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo)

	_, err := svc.Register(models.RegisterRequest{Username: "alice", Password: "Secret123"})
	require.NoError(t, err)

	_, err = svc.Register(models.RegisterRequest{Username: "alice", Password: "Other456"})
	assert.ErrorIs(t, err, models.ErrDuplicateUser)
	assert.Len(t, repo.users, 1)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo)

	_, err := svc.Register(models.RegisterRequest{Username: "alice", Email: "shared@example.com", Password: "Secret123"})
	require.NoError(t, err)

	_, err = svc.Register(models.RegisterRequest{Username: "bob", Email: "shared@example.com", Password: "Other456"})
	assert.ErrorIs(t, err, models.ErrDuplicateUser)
}

func TestAuthService_Register_SynthesizedEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo)

	first, err := svc.Register(models.RegisterRequest{Username: "alice", Password: "Secret123"})
	require.NoError(t, err)
	second, err := svc.Register(models.RegisterRequest{Username: "alice2", Password: "Secret123"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first.User.Email, "alice-"))
	assert.True(t, strings.HasSuffix(first.User.Email, "@system.local"))
	// The random suffix keeps synthesized addresses from colliding.
	assert.NotEqual(t, first.User.Email, second.User.Email)
}

func TestAuthService_Register_InvalidUsername(t *testing.T) {
	svc := NewAuthService(newStubUserRepo())

	_, err := svc.Register(models.RegisterRequest{Username: "bad name!", Password: "Secret123"})
	assert.Error(t, err)
}

func TestAuthService_Register_MissingUserRole(t *testing.T) {
	repo := newStubUserRepo()
	delete(repo.roles, models.RoleUser)
	svc := NewAuthService(repo)

	_, err := svc.Register(models.RegisterRequest{Username: "alice", Password: "Secret123"})
	assert.ErrorIs(t, err, models.ErrRoleNotFound)
}

func TestAuthService_Register_DegradedSuccess(t *testing.T) {
	repo := newStubUserRepo()
	repo.failAddRole = true
	repo.failAddRoleRaw = true
	svc := NewAuthService(repo)

	result, err := svc.Register(models.RegisterRequest{Username: "alice", Password: "Secret123"})

	// The user row exists, so registration is a success with a warning,
	// not a failure.
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warning)
	assert.Contains(t, result.Warning, "alice")
	assert.Empty(t, result.Roles)
	_, exists := repo.users["alice"]
	assert.True(t, exists)
}

func TestAuthService_Register_ReloadFailureStillSucceeds(t *testing.T) {
	repo := newStubUserRepo()
	repo.failReload = true
	svc := NewAuthService(repo)

	result, err := svc.Register(models.RegisterRequest{Username: "alice", Password: "Secret123"})

	// The row was persisted before the reload; losing the reload must
	// not turn the registration into a failure.
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.Equal(t, "alice", result.User.Username)
	assert.NotZero(t, result.User.ID)

	stored, exists := repo.users["alice"]
	require.True(t, exists)
	assert.Len(t, stored.Roles, 1)
}

func TestAuthService_Register_RoleFallbackPath(t *testing.T) {
	repo := newStubUserRepo()
	repo.failAddRole = true // primary path down, raw insert still works
	svc := NewAuthService(repo)

	result, err := svc.Register(models.RegisterRequest{Username: "alice", Password: "Secret123"})
	require.NoError(t, err)
	assert.Empty(t, result.Warning)
	assert.Contains(t, result.Roles, models.RoleUser)
}

func TestAuthService_VerifyCredentials(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo)
	_, err := svc.Register(models.RegisterRequest{Username: "alice", Password: "Secret123"})
	require.NoError(t, err)

	user, err := svc.VerifyCredentials("alice", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	// Unknown user and wrong password produce the same generic error.
	_, unknownErr := svc.VerifyCredentials("nobody", "Secret123")
	_, wrongErr := svc.VerifyCredentials("alice", "wrong")
	assert.ErrorIs(t, unknownErr, models.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, models.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestAuthService_AssignRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo)
	_, err := svc.Register(models.RegisterRequest{Username: "alice", Password: "Secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.AssignRole("alice", models.RoleAdmin))
	// Idempotent: assigning an already-held role is a no-op success.
	require.NoError(t, svc.AssignRole("alice", models.RoleAdmin))

	user, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	count := 0
	for _, r := range user.Roles {
		if r.Name == models.RoleAdmin {
			count++
		}
	}
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, svc.AssignRole("alice", "Ghost"), models.ErrRoleNotFound)
	assert.ErrorIs(t, svc.AssignRole("nobody", models.RoleAdmin), models.ErrNotFound)
}

func TestAuthService_EnsureDefaults(t *testing.T) {
	repo := &stubUserRepo{
		users:      make(map[string]*models.User),
		roles:      make(map[string]*models.Role),
		nextUserID: 1,
		nextRoleID: 1,
	}
	svc := NewAuthService(repo)

	require.NoError(t, svc.EnsureDefaults("Admin123$"))
	require.NoError(t, svc.EnsureDefaults("Admin123$")) // idempotent

	_, err := repo.GetRoleByName(models.RoleAdmin)
	assert.NoError(t, err)
	_, err = repo.GetRoleByName(models.RoleUser)
	assert.NoError(t, err)

	admin, err := repo.GetByUsername("admin")
	require.NoError(t, err)
	assert.True(t, adminHasRole(admin, models.RoleAdmin))
}
