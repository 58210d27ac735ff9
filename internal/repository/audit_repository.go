package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/adminforge/backoffice-api/internal/models"
)

// AuditRepository provides append and query access to the audit trail.
// Records are insert-only; there is no update or delete path.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends an audit record. Timestamp defaults to write time.
func (r *AuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, actor_id, action, target_type, target_id, details, created_at) VALUES (:id, :actor_id, :action, :target_type, :target_id, :details, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// List returns audit records newest first with the actor's display fields
// joined, plus the total count for the filter.
func (r *AuditRepository) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLogWithActor, int, error) {
	baseQuery := `FROM audit_logs a INNER JOIN users u ON u.id = a.actor_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.ActorID != "" {
		conditions = append(conditions, fmt.Sprintf("a.actor_id = $%d", len(args)+1))
		args = append(args, filter.ActorID)
	}
	if filter.Action != "" {
		conditions = append(conditions, fmt.Sprintf("a.action = $%d", len(args)+1))
		args = append(args, filter.Action)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.created_at >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.created_at <= $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	listQuery := fmt.Sprintf("SELECT a.id, a.actor_id, a.action, a.target_type, a.target_id, a.details, a.created_at, u.name AS actor_name, u.email AS actor_email %s ORDER BY a.created_at DESC LIMIT %d OFFSET %d", baseQuery, limit, offset)

	var logs []models.AuditLogWithActor
	if err := r.db.SelectContext(ctx, &logs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	return logs, total, nil
}

// CountActionSince counts records for an action tag newer than the cutoff.
func (r *AuditRepository) CountActionSince(ctx context.Context, action string, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM audit_logs WHERE action = $1 AND created_at >= $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, action, since); err != nil {
		return 0, fmt.Errorf("count audit actions: %w", err)
	}
	return total, nil
}
