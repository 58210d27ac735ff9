package seed

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adminforge/backoffice-api/internal/models"
	"github.com/adminforge/backoffice-api/internal/service"
	"github.com/adminforge/backoffice-api/pkg/config"
)

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type roleStore interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
	Create(ctx context.Context, role *models.Role) error
	Assign(ctx context.Context, userID, roleID string) error
}

// Run ensures the superadmin role and the bootstrap account exist. It is
// idempotent: an existing role or account is reused, never recreated. Without
// at least one superadmin the management surface is unreachable.
func Run(ctx context.Context, cfg config.SeedConfig, users userStore, roles roleStore, hasher service.PasswordHasher, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	role, err := roles.FindByName(ctx, models.RoleSuperAdmin)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		role = &models.Role{Name: models.RoleSuperAdmin, Permissions: []string{"*"}}
		if err := roles.Create(ctx, role); err != nil {
			return err
		}
		logger.Info("seeded role", zap.String("name", role.Name))
	}

	user, err := users.FindByEmail(ctx, cfg.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		hash, err := hasher.Hash(cfg.Password)
		if err != nil {
			return err
		}
		user = &models.User{
			ID:           uuid.NewString(),
			Name:         cfg.Name,
			Email:        cfg.Email,
			PasswordHash: hash,
			Active:       true,
			CreatedAt:    time.Now().UTC(),
			UpdatedAt:    time.Now().UTC(),
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		logger.Info("seeded superadmin account", zap.String("email", user.Email))
	}

	return roles.Assign(ctx, user.ID, role.ID)
}
