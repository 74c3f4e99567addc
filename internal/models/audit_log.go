package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLog struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null" json:"user_id"`
	ActionType     string         `gorm:"not null;index" json:"action_type"`
	EntityType     string         `gorm:"not null" json:"entity_type"`
	EntityID       *uuid.UUID     `gorm:"type:uuid" json:"entity_id"`
	Details        datatypes.JSON `json:"action_details"`
	IPAddress      string         `json:"ip_address"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
}

// AuditLogEntry is an audit row joined with the acting user.
type AuditLogEntry struct {
	AuditLog
	Username  string `json:"username"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
