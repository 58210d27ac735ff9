package seed

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adminforge/backoffice-api/internal/models"
	"github.com/adminforge/backoffice-api/pkg/config"
)

type memUserStore struct {
	byEmail map[string]*models.User
	created []*models.User
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memUserStore) Create(_ context.Context, user *models.User) error {
	if m.byEmail == nil {
		m.byEmail = make(map[string]*models.User)
	}
	m.byEmail[user.Email] = user
	m.created = append(m.created, user)
	return nil
}

type memRoleStore struct {
	byName  map[string]*models.Role
	created []*models.Role
	assigns [][2]string
}

func (m *memRoleStore) FindByName(_ context.Context, name string) (*models.Role, error) {
	if r, ok := m.byName[name]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memRoleStore) Create(_ context.Context, role *models.Role) error {
	role.ID = "r-new"
	if m.byName == nil {
		m.byName = make(map[string]*models.Role)
	}
	m.byName[role.Name] = role
	m.created = append(m.created, role)
	return nil
}

func (m *memRoleStore) Assign(_ context.Context, userID, roleID string) error {
	m.assigns = append(m.assigns, [2]string{userID, roleID})
	return nil
}

type seedHasher struct{}

func (seedHasher) Hash(plaintext string) (string, error) { return "h:" + plaintext, nil }
func (seedHasher) Verify(plaintext, hash string) bool    { return hash == "h:"+plaintext }

func seedConfig() config.SeedConfig {
	return config.SeedConfig{
		Enabled:  true,
		Name:     "Super Admin",
		Email:    "superadmin@example.com",
		Password: "Test1234!",
	}
}

func TestSeedCreatesRoleAndAccount(t *testing.T) {
	users := &memUserStore{}
	roles := &memRoleStore{}

	err := Run(context.Background(), seedConfig(), users, roles, seedHasher{}, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, roles.created, 1)
	assert.Equal(t, models.RoleSuperAdmin, roles.created[0].Name)

	require.Len(t, users.created, 1)
	seeded := users.created[0]
	assert.Equal(t, "superadmin@example.com", seeded.Email)
	assert.Equal(t, "h:Test1234!", seeded.PasswordHash)
	assert.True(t, seeded.Active)

	require.Len(t, roles.assigns, 1)
	assert.Equal(t, seeded.ID, roles.assigns[0][0])
	assert.Equal(t, "r-new", roles.assigns[0][1])
}

func TestSeedIsIdempotent(t *testing.T) {
	users := &memUserStore{}
	roles := &memRoleStore{}

	require.NoError(t, Run(context.Background(), seedConfig(), users, roles, seedHasher{}, zap.NewNop()))
	require.NoError(t, Run(context.Background(), seedConfig(), users, roles, seedHasher{}, zap.NewNop()))

	assert.Len(t, roles.created, 1)
	assert.Len(t, users.created, 1)
	// Assign is repeated but the conflict clause in the real store absorbs it.
	assert.Len(t, roles.assigns, 2)
}

func TestSeedDisabled(t *testing.T) {
	users := &memUserStore{}
	roles := &memRoleStore{}
	cfg := seedConfig()
	cfg.Enabled = false

	require.NoError(t, Run(context.Background(), cfg, users, roles, seedHasher{}, zap.NewNop()))
	assert.Empty(t, users.created)
	assert.Empty(t, roles.created)
}
