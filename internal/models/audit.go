package models

import "time"

// Audit actions recorded for authentication events.
const (
	AuditActionLogin   = "LOGIN"
	AuditActionRefresh = "REFRESH"
	AuditActionLogout  = "LOGOUT"
)

// AuditLog stores a best-effort trail of security-relevant events.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
