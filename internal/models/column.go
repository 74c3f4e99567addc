package models

import (
	"time"

	"github.com/google/uuid"
)

// Column is a list of cards. Positions are dense 0..N-1 within a board.
type Column struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;index" json:"board_id"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
