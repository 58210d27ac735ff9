package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adminforge/backoffice-api/internal/models"
	appErrors "github.com/adminforge/backoffice-api/pkg/errors"
)

type mockAuditRepo struct {
	mu        sync.Mutex
	created   []models.AuditLog
	createErr error
	listData  []models.AuditLogWithActor
	listTotal int
	listErr   error
}

func (m *mockAuditRepo) Create(_ context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, *log)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, filter models.AuditFilter) ([]models.AuditLogWithActor, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	if filter.Page > 1 {
		return nil, m.listTotal, nil
	}
	return m.listData, m.listTotal, nil
}

func (m *mockAuditRepo) createdEntries() []models.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AuditLog, len(m.created))
	copy(out, m.created)
	return out
}

func newAuditFixture(repo *mockAuditRepo) *AuditService {
	svc := NewAuditService(repo, nil, zap.NewNop(), AuditQueueConfig{Workers: 1, BufferSize: 8})
	svc.Start(context.Background())
	return svc
}

func TestAuditServiceRecordWritesInBackground(t *testing.T) {
	repo := &mockAuditRepo{}
	svc := newAuditFixture(repo)

	svc.Record(models.AuditLog{ActorID: "u-1", Action: models.AuditActionLogin, TargetType: "auth"})
	svc.Stop()

	entries := repo.createdEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionLogin, entries[0].Action)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestAuditServiceRecordDropsWithoutActor(t *testing.T) {
	repo := &mockAuditRepo{}
	svc := newAuditFixture(repo)

	svc.Record(models.AuditLog{Action: models.AuditActionLogin})
	svc.Stop()

	assert.Empty(t, repo.createdEntries())
}

func TestAuditServiceRecordSwallowsWriteFailure(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("db down")}
	svc := newAuditFixture(repo)

	svc.Record(models.AuditLog{ActorID: "u-1", Action: models.AuditActionUserCreate, TargetType: "user"})
	svc.Stop()

	// Nothing persisted and nothing to re-run: the failed write is gone.
	assert.Empty(t, repo.createdEntries())
}

func TestAuditServiceList(t *testing.T) {
	repo := &mockAuditRepo{
		listData: []models.AuditLogWithActor{
			{AuditLog: models.AuditLog{ID: "a-1", ActorID: "u-1", Action: models.AuditActionLogin}},
		},
		listTotal: 1,
	}
	svc := newAuditFixture(repo)
	defer svc.Stop()

	logs, pagination, err := svc.List(context.Background(), models.AuditFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestAuditServiceExportCSV(t *testing.T) {
	ts := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	targetID := "u-2"
	repo := &mockAuditRepo{
		listData: []models.AuditLogWithActor{
			{
				AuditLog:   models.AuditLog{ID: "a-1", ActorID: "u-1", Action: models.AuditActionUserDelete, TargetType: "user", TargetID: &targetID, CreatedAt: ts},
				ActorName:  "Admin",
				ActorEmail: "admin@example.com",
			},
		},
		listTotal: 1,
	}
	svc := newAuditFixture(repo)
	defer svc.Stop()

	payload, contentType, err := svc.Export(context.Background(), models.AuditFilter{}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Timestamp", "Action", "Actor", "Email", "Target Type", "Target ID"}, records[0])
	assert.Equal(t, models.AuditActionUserDelete, records[1][1])
	assert.Equal(t, "u-2", records[1][5])
}

func TestAuditServiceExportPDF(t *testing.T) {
	repo := &mockAuditRepo{
		listData: []models.AuditLogWithActor{
			{AuditLog: models.AuditLog{ID: "a-1", ActorID: "u-1", Action: models.AuditActionLogin, CreatedAt: time.Now()}},
		},
		listTotal: 1,
	}
	svc := newAuditFixture(repo)
	defer svc.Stop()

	payload, contentType, err := svc.Export(context.Background(), models.AuditFilter{}, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestAuditServiceExportUnknownFormat(t *testing.T) {
	svc := newAuditFixture(&mockAuditRepo{})
	defer svc.Stop()

	_, _, err := svc.Export(context.Background(), models.AuditFilter{}, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
