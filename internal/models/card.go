package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Card is a task inside a column. Positions are dense 0..N-1 within a column.
type Card struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `json:"description"`
	ColumnID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"column_id"`
	Position     int        `gorm:"not null" json:"position"`
	DueDate      *time.Time `json:"due_date"`
	StartDate    *time.Time `json:"start_date"`
	Priority     Priority   `gorm:"not null;default:'medium'" json:"priority"`
	Completed    bool       `gorm:"not null;default:false" json:"completed"`
	CoverColor   *string    `json:"cover_color"`
	TimeEstimate *int       `json:"time_estimate"`
	TimeSpent    int        `gorm:"not null;default:0" json:"time_spent"`
	CreatedBy    *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CardDetails is a card with its child collections loaded.
type CardDetails struct {
	Card
	BoardID     uuid.UUID    `json:"board_id"`
	Labels      []Label      `json:"labels"`
	Members     []User       `json:"members"`
	Checklists  []Checklist  `json:"checklists"`
	Attachments []Attachment `json:"attachments"`
}

type Label struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CardID uuid.UUID `gorm:"type:uuid;not null;index" json:"card_id"`
	Name   string    `json:"name"`
	Color  string    `gorm:"not null" json:"color"`
}

type CardMember struct {
	CardID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"card_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Checklist struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CardID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"card_id"`
	Title     string          `gorm:"not null" json:"title"`
	Position  int             `gorm:"not null" json:"position"`
	Items     []ChecklistItem `gorm:"foreignKey:ChecklistID" json:"items"`
	CreatedAt time.Time       `json:"created_at"`
}

type ChecklistItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ChecklistID uuid.UUID  `gorm:"type:uuid;not null;index" json:"checklist_id"`
	Text        string     `gorm:"not null" json:"text"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	AssignedTo  *uuid.UUID `gorm:"type:uuid" json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
	Position    int        `gorm:"not null" json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CardID    uuid.UUID `gorm:"type:uuid;not null;index" json:"card_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Body      string    `gorm:"not null" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CardActivity is the per-card history shown in the card modal.
type CardActivity struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CardID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"card_id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null" json:"user_id"`
	Action    string         `gorm:"not null" json:"action"`
	Details   datatypes.JSON `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}

type Attachment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CardID      uuid.UUID `gorm:"type:uuid;not null;index" json:"card_id"`
	UploadedBy  uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by"`
	Filename    string    `gorm:"not null" json:"filename"`
	ObjectKey   string    `gorm:"not null" json:"object_key"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}
