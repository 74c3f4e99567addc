package models

import (
	"time"

	"github.com/google/uuid"
)

// Board represents the database model
type Board struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string     `gorm:"not null" json:"title"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	OrganizationID *uuid.UUID `gorm:"type:uuid;index" json:"organization_id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BoardMember is a direct membership row. At most one per (board, user).
type BoardMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_board_member" json:"board_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_board_member" json:"user_id"`
	Role      BoardRole `gorm:"not null;default:'read'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// BoardSummary is a board as listed for a user, with the caller's effective role.
type BoardSummary struct {
	Board
	Role        BoardRole `json:"role"`
	ColumnCount int64     `json:"column_count"`
}

// BoardDetails is a board with its ordered columns and cards.
type BoardDetails struct {
	Board
	Columns []ColumnWithCards `json:"columns"`
}

type ColumnWithCards struct {
	Column
	Cards []Card `json:"cards"`
}

// Member is one entry of a board's merged member list.
type Member struct {
	UserID          uuid.UUID `json:"user_id"`
	Name            string    `json:"name"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Role            BoardRole `json:"role"`
	JoinedAt        time.Time `json:"created_at"`
	ViaOrganization bool      `json:"via_organization"`
}
