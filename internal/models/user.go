package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"not null;uniqueIndex" json:"email"`
	Name         string    `json:"name"`
	Bio          string    `json:"bio"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
