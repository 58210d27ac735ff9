package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adminforge/backoffice-api/internal/models"
	"github.com/adminforge/backoffice-api/internal/service"
)

type fakeAuditRepo struct {
	lastFilter models.AuditFilter
	logs       []models.AuditLogWithActor
	total      int
}

func (f *fakeAuditRepo) Create(context.Context, *models.AuditLog) error { return nil }

func (f *fakeAuditRepo) List(_ context.Context, filter models.AuditFilter) ([]models.AuditLogWithActor, int, error) {
	f.lastFilter = filter
	return f.logs, f.total, nil
}

func newAuditHandlerFixture(repo *fakeAuditRepo) *AuditHandler {
	svc := service.NewAuditService(repo, nil, zap.NewNop(), service.AuditQueueConfig{})
	return NewAuditHandler(svc, zap.NewNop())
}

func TestAuditHandlerListPassesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAuditRepo{}
	handler := newAuditHandlerFixture(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/audit-logs?actor_id=u-1&action=LOGIN&page=2&limit=20", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", repo.lastFilter.ActorID)
	assert.Equal(t, models.AuditActionLogin, repo.lastFilter.Action)
	assert.Equal(t, 2, repo.lastFilter.Page)
	assert.Equal(t, 20, repo.lastFilter.Limit)
}

func TestAuditHandlerListDateOnlyBoundsAreInclusive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAuditRepo{}
	handler := newAuditHandlerFixture(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/audit-logs?start_date=2026-01-01&end_date=2026-01-31", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, repo.lastFilter.StartDate)
	require.NotNil(t, repo.lastFilter.EndDate)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *repo.lastFilter.StartDate)

	// The bare end date covers the whole day.
	assert.True(t, repo.lastFilter.EndDate.After(time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)))
	assert.True(t, repo.lastFilter.EndDate.Before(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestAuditHandlerListAcceptsRFC3339(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAuditRepo{}
	handler := newAuditHandlerFixture(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/audit-logs?start_date=2026-01-01T08:30:00Z", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, repo.lastFilter.StartDate)
	assert.Equal(t, time.Date(2026, 1, 1, 8, 30, 0, 0, time.UTC), *repo.lastFilter.StartDate)
}

func TestAuditHandlerListRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuditHandlerFixture(&fakeAuditRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/audit-logs?start_date=yesterday", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuditHandlerExportCSVHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAuditRepo{
		logs: []models.AuditLogWithActor{
			{AuditLog: models.AuditLog{ID: "a-1", ActorID: "u-1", Action: models.AuditActionLogin, CreatedAt: time.Now()}},
		},
		total: 1,
	}
	handler := newAuditHandlerFixture(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/audit-logs/export?format=csv", nil)

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
}

func TestAuditHandlerExportUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuditHandlerFixture(&fakeAuditRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/audit-logs/export?format=xlsx", nil)

	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
