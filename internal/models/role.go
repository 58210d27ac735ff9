package models

import (
	"time"

	"github.com/lib/pq"
)

// RoleSuperAdmin is the role name gating all back-office management routes.
const RoleSuperAdmin = "superadmin"

// Role is a named bundle of permission strings. Authorization is enforced by
// role-name membership; the permission list is stored and surfaced for the UI
// but not evaluated per operation.
type Role struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Permissions pq.StringArray `db:"permissions" json:"permissions"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// UserRole is a row in the user_roles join table.
type UserRole struct {
	UserID     string    `db:"user_id" json:"user_id"`
	RoleID     string    `db:"role_id" json:"role_id"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}
