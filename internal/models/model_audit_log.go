package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/Caddilac1/DataHub/pkg/types"
)

// AuditLog is an append-only record of state transitions and administrative
// actions. Rows are never mutated; the only deletion path is the retention
// sweep.
type AuditLog struct {
	ID string `gorm:"column:id;primary_key;type:varchar(20)" json:"id"`
	// UserID is nil for system actions (e.g. reconciliation updates).
	UserID    *string           `gorm:"column:user_id;type:varchar(20);index:idx_user_action,priority:1" json:"user_id"`
	Action    types.AuditAction `gorm:"column:action;type:varchar(30);not null;index:idx_user_action,priority:2" json:"action"`
	Details   datatypes.JSONMap `gorm:"column:details;type:jsonb;default:'{}'" json:"details"`
	IPAddress string            `gorm:"column:ip_address;type:varchar(45)" json:"ip_address"`
	UserAgent string            `gorm:"column:user_agent;type:text" json:"user_agent"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}
