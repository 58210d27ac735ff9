package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/adminforge/backoffice-api/internal/models"
	appErrors "github.com/adminforge/backoffice-api/pkg/errors"
)

const summaryCacheKey = "analytics:summary"

type analyticsUserRepository interface {
	Count(ctx context.Context) (int, error)
}

type analyticsRoleRepository interface {
	Count(ctx context.Context) (int, error)
}

type analyticsAuditRepository interface {
	CountActionSince(ctx context.Context, action string, since time.Time) (int, error)
}

// AnalyticsService assembles the dashboard summary with cache integration.
type AnalyticsService struct {
	users  analyticsUserRepository
	roles  analyticsRoleRepository
	audits analyticsAuditRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(users analyticsUserRepository, roles analyticsRoleRepository, audits analyticsAuditRepository, cache *CacheService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{users: users, roles: roles, audits: audits, cache: cache, logger: logger}
}

// Summary returns the dashboard counters. The boolean indicates whether the
// payload came from cache.
func (s *AnalyticsService) Summary(ctx context.Context) (*models.AnalyticsSummary, bool, error) {
	var cached models.AnalyticsSummary
	if s.cache.Get(ctx, summaryCacheKey, &cached) {
		return &cached, true, nil
	}

	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}

	totalRoles, err := s.roles.Count(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count roles")
	}

	recentLogins, err := s.audits.CountActionSince(ctx, models.AuditActionLogin, time.Now().UTC().AddDate(0, 0, -7))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count recent logins")
	}

	summary := &models.AnalyticsSummary{
		TotalUsers:   totalUsers,
		TotalRoles:   totalRoles,
		RecentLogins: recentLogins,
		GeneratedAt:  time.Now().UTC(),
	}

	s.cache.Set(ctx, summaryCacheKey, summary, 0)

	return summary, false, nil
}
