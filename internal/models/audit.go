package models

import (
	"encoding/json"
	"time"
)

// Audit action tags recorded for privileged operations.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
	AuditActionUserCreate     = "CREATE_USER"
	AuditActionUserUpdate     = "UPDATE_USER"
	AuditActionUserDelete     = "DELETE_USER"
	AuditActionRoleCreate     = "CREATE_ROLE"
	AuditActionRoleUpdate     = "UPDATE_ROLE"
	AuditActionRoleAssign     = "ASSIGN_ROLE"
)

// AuditLog is an immutable record of a privileged state-changing action.
// Rows are appended once and never updated or deleted.
type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	ActorID    string          `db:"actor_id" json:"actor_id"`
	Action     string          `db:"action" json:"action"`
	TargetType string          `db:"target_type" json:"target_type"`
	TargetID   *string         `db:"target_id" json:"target_id,omitempty"`
	Details    json.RawMessage `db:"details" json:"details,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"timestamp"`
}

// AuditLogWithActor joins the actor's display fields for list responses.
type AuditLogWithActor struct {
	AuditLog
	ActorName  string `db:"actor_name" json:"actor_name"`
	ActorEmail string `db:"actor_email" json:"actor_email"`
}

// AuditFilter captures list criteria for the audit trail. Date bounds are
// inclusive.
type AuditFilter struct {
	ActorID   string
	Action    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}
