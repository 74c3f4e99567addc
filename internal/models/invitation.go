package models

import (
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// InvitationTTL is how long an invitation token stays valid.
const InvitationTTL = 7 * 24 * time.Hour

type BoardInvitation struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	BoardID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"board_id"`
	InviterID    uuid.UUID        `gorm:"type:uuid;not null" json:"inviter_id"`
	InviteeEmail string           `gorm:"not null;index" json:"invitee_email"`
	Role         BoardRole        `gorm:"not null" json:"role"`
	Token        string           `gorm:"not null;uniqueIndex" json:"token"`
	Status       InvitationStatus `gorm:"not null;default:'pending'" json:"status"`
	ExpiresAt    time.Time        `json:"expires_at"`
	CreatedAt    time.Time        `json:"created_at"`
}

type OrganizationInvitation struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID        `gorm:"type:uuid;not null;index" json:"organization_id"`
	InviterID      uuid.UUID        `gorm:"type:uuid;not null" json:"inviter_id"`
	InviteeEmail   string           `gorm:"not null;index" json:"invitee_email"`
	Role           OrgRole          `gorm:"not null" json:"role"`
	Token          string           `gorm:"not null;uniqueIndex" json:"token"`
	Status         InvitationStatus `gorm:"not null;default:'pending'" json:"status"`
	ExpiresAt      time.Time        `json:"expires_at"`
	CreatedAt      time.Time        `json:"created_at"`
}
