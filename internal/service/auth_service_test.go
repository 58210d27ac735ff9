package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adminforge/backoffice-api/internal/models"
	appErrors "github.com/adminforge/backoffice-api/pkg/errors"
)

type mockAuthUserRepo struct {
	usersByEmail map[string]*models.User
	usersByID    map[string]*models.User
	lastLoginIDs []string
	passwordSet  map[string]string
}

func (m *mockAuthUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := m.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m.usersByID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) UpdateLastLogin(_ context.Context, id string, _ time.Time) error {
	m.lastLoginIDs = append(m.lastLoginIDs, id)
	return nil
}

func (m *mockAuthUserRepo) UpdatePassword(_ context.Context, id, hash string, _ time.Time) error {
	if m.passwordSet == nil {
		m.passwordSet = make(map[string]string)
	}
	m.passwordSet[id] = hash
	return nil
}

type mockRoleLoader struct {
	roles map[string][]models.Role
	err   error
}

func (m *mockRoleLoader) RolesForUser(_ context.Context, userID string) ([]models.Role, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.roles[userID], nil
}

type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (plainHasher) Verify(plaintext, hash string) bool    { return hash == "hashed:"+plaintext }

func newAuthFixture() (*AuthService, *mockAuthUserRepo) {
	user := &models.User{ID: "u-1", Name: "Admin", Email: "admin@example.com", PasswordHash: "hashed:Test1234!", Active: true}
	users := &mockAuthUserRepo{
		usersByEmail: map[string]*models.User{user.Email: user},
		usersByID:    map[string]*models.User{user.ID: user},
	}
	roles := &mockRoleLoader{roles: map[string][]models.Role{
		"u-1": {{ID: "r-1", Name: models.RoleSuperAdmin}},
	}}
	svc := NewAuthService(users, roles, plainHasher{}, nil, zap.NewNop(), AuthConfig{
		Secret:      "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "test",
	})
	return svc, users
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc, users := newAuthFixture()

	result, user, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "Test1234!"})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, int64(3600), result.ExpiresIn)
	assert.Equal(t, "u-1", result.User.ID)
	assert.Equal(t, []string{models.RoleSuperAdmin}, result.User.Roles)
	assert.Equal(t, []string{"u-1"}, users.lastLoginIDs)

	claims, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "nope"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, 401, appErr.Status)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "Test1234!"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	svc, users := newAuthFixture()
	users.usersByEmail["admin@example.com"].Active = false

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "Test1234!"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
	assert.Equal(t, 403, appErr.Status)
}

func TestAuthServiceLoginMissingFields(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	svc, _ := newAuthFixture()

	result, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "Test1234!"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(result.Token + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsExpired(t *testing.T) {
	user := &models.User{ID: "u-1", Email: "admin@example.com", PasswordHash: "hashed:pw", Active: true}
	users := &mockAuthUserRepo{
		usersByEmail: map[string]*models.User{user.Email: user},
		usersByID:    map[string]*models.User{user.ID: user},
	}
	svc := NewAuthService(users, &mockRoleLoader{}, plainHasher{}, nil, zap.NewNop(), AuthConfig{
		Secret:      "test-secret",
		TokenExpiry: -time.Minute,
		Issuer:      "test",
	})

	result, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(result.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, users := newAuthFixture()

	err := svc.ChangePassword(context.Background(), "u-1", models.ChangePasswordRequest{
		OldPassword: "Test1234!",
		NewPassword: "NewSecret9",
	})
	require.NoError(t, err)
	assert.Equal(t, "hashed:NewSecret9", users.passwordSet["u-1"])
}

func TestAuthServiceChangePasswordWrongOld(t *testing.T) {
	svc, users := newAuthFixture()

	err := svc.ChangePassword(context.Background(), "u-1", models.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "NewSecret9",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, users.passwordSet)
}

func TestAuthServiceCurrentUser(t *testing.T) {
	svc, _ := newAuthFixture()

	info, err := svc.CurrentUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", info.Email)
	assert.Equal(t, []string{models.RoleSuperAdmin}, info.Roles)
}
