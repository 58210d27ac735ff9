package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/adminforge/backoffice-api/internal/models"
	appErrors "github.com/adminforge/backoffice-api/pkg/errors"
	"github.com/adminforge/backoffice-api/pkg/export"
	"github.com/adminforge/backoffice-api/pkg/jobs"
)

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLogWithActor, int, error)
}

// AuditService owns the audit trail: queries run synchronously, appends are
// handed to a background queue so a slow or failing write never delays the
// response that triggered it.
type AuditService struct {
	repo    auditRepository
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// AuditQueueConfig sizes the background writer.
type AuditQueueConfig struct {
	Workers    int
	BufferSize int
}

// NewAuditService constructs the service and its write queue. Start must be
// called before Record delivers anything.
func NewAuditService(repo auditRepository, metrics *MetricsService, logger *zap.Logger, cfg AuditQueueConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{repo: repo, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("audit", s.handleJob, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return s
}

// Start launches the queue workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains pending audit writes and stops the workers. Called during
// graceful shutdown; anything still unwritten afterwards is dropped.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record enqueues one audit append. Fire and forget: enqueue or write
// failures are logged and swallowed, never retried and never surfaced.
func (s *AuditService) Record(entry models.AuditLog) {
	if entry.ActorID == "" {
		s.logger.Warn("audit record dropped: no actor", zap.String("action", entry.Action))
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.queue.Enqueue(jobs.Job{Type: entry.Action, Payload: entry}); err != nil {
		s.logger.Warn("audit record dropped", zap.String("action", entry.Action), zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordAuditWrite(false)
		}
	}
}

// handleJob performs the actual append. Errors are logged here and not
// returned, so the queue never re-runs a failed write.
func (s *AuditService) handleJob(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(models.AuditLog)
	if !ok {
		s.logger.Error("audit job with unexpected payload", zap.String("type", job.Type))
		return nil
	}
	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Error("failed to append audit record",
			zap.String("action", entry.Action),
			zap.String("actor_id", entry.ActorID),
			zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordAuditWrite(false)
		}
		return nil
	}
	if s.metrics != nil {
		s.metrics.RecordAuditWrite(true)
	}
	return nil
}

// List returns audit records newest first with pagination metadata.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLogWithActor, *models.Pagination, error) {
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	return logs, paginate(filter.Page, filter.Limit, total), nil
}

// Export renders the filtered audit trail as CSV or PDF bytes. The filter's
// page/limit are ignored; exports cover up to the first 100 matching rows of
// every page walked until exhaustion.
func (s *AuditService) Export(ctx context.Context, filter models.AuditFilter, format string) ([]byte, string, error) {
	dataset := export.Dataset{
		Headers: []string{"Timestamp", "Action", "Actor", "Email", "Target Type", "Target ID"},
	}

	filter.Limit = 100
	for page := 1; ; page++ {
		filter.Page = page
		logs, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit logs for export")
		}
		for _, log := range logs {
			targetID := ""
			if log.TargetID != nil {
				targetID = *log.TargetID
			}
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Timestamp":   log.CreatedAt.UTC().Format(time.RFC3339),
				"Action":      log.Action,
				"Actor":       log.ActorName,
				"Email":       log.ActorEmail,
				"Target Type": log.TargetType,
				"Target ID":   targetID,
			})
		}
		if len(dataset.Rows) >= total || len(logs) == 0 {
			break
		}
	}

	switch format {
	case "csv", "":
		payload, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := export.NewPDFExporter().Render(dataset, "Audit Trail")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
