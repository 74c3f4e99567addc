package models

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex" json:"name"`
	DisplayName string    `gorm:"not null" json:"display_name"`
	Description string    `json:"description"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type OrganizationMember struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_org_member" json:"organization_id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_org_member" json:"user_id"`
	Role           OrgRole   `gorm:"not null;default:'member'" json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// OrganizationSummary is an organization as listed for one of its members.
type OrganizationSummary struct {
	Organization
	Role        OrgRole `json:"role"`
	MemberCount int64   `json:"member_count"`
	BoardCount  int64   `json:"board_count"`
}

// OrganizationMemberInfo is a member row joined with its user.
type OrganizationMemberInfo struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Bio      string    `json:"bio"`
	Role     OrgRole   `json:"role"`
	JoinedAt time.Time `json:"created_at"`
}
