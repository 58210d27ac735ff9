package models

import "time"

// AnalyticsSummary is the back-office dashboard summary payload.
type AnalyticsSummary struct {
	TotalUsers   int       `json:"total_users"`
	TotalRoles   int       `json:"total_roles"`
	RecentLogins int       `json:"recent_logins"`
	GeneratedAt  time.Time `json:"generated_at"`
}
