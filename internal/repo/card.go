package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"epitrello-backend/internal/models"
	"epitrello-backend/internal/position"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CardRepo struct {
	db *gorm.DB
}

type CardRepoInterface interface {
	CreateCard(ctx context.Context, card *models.Card) error
	GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error)
	GetCardDetails(ctx context.Context, id uuid.UUID) (*models.CardDetails, error)
	// BoardIDForCard resolves the board a card lives on.
	BoardIDForCard(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	UpdateCard(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Card, error)
	DeleteCard(ctx context.Context, id uuid.UUID) ([]string, error)
	MoveCard(ctx context.Context, move position.Move) error

	AddLabel(ctx context.Context, label *models.Label) error
	RemoveLabel(ctx context.Context, cardID, labelID uuid.UUID) error
	AddMember(ctx context.Context, cardID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, cardID, userID uuid.UUID) error
	AddChecklist(ctx context.Context, cardID uuid.UUID, title string) (*models.Checklist, error)
	DeleteChecklist(ctx context.Context, cardID, checklistID uuid.UUID) error
	AddChecklistItem(ctx context.Context, cardID uuid.UUID, item *models.ChecklistItem) error
	UpdateChecklistItem(ctx context.Context, cardID, itemID uuid.UUID, updates map[string]interface{}) (*models.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, cardID, itemID uuid.UUID) error
}

func NewCardRepository(db *gorm.DB) CardRepoInterface {
	return &CardRepo{db: db}
}

// CreateCard appends the card at the end of its column
func (r *CardRepo) CreateCard(ctx context.Context, card *models.Card) error {
	card.ID = uuid.New()
	card.CreatedAt = time.Now()
	card.UpdatedAt = time.Now()
	if card.Priority == "" {
		card.Priority = models.PriorityMedium
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := position.Cards.LockParents(tx, card.ColumnID); err != nil {
			return err
		}
		pos, err := position.Cards.Next(tx, card.ColumnID)
		if err != nil {
			return err
		}
		card.Position = pos
		return tx.Create(card).Error
	})
}

func (r *CardRepo) GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	var card models.Card
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: card %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *CardRepo) BoardIDForCard(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var boardIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("cards c").
		Joins("JOIN columns col ON col.id = c.column_id").
		Where("c.id = ?", id).
		Limit(1).
		Pluck("col.board_id", &boardIDs).Error
	if err != nil {
		return uuid.Nil, err
	}
	if len(boardIDs) == 0 {
		return uuid.Nil, fmt.Errorf("%w: card %s", models.ErrNotFound, id)
	}
	return boardIDs[0], nil
}

func (r *CardRepo) GetCardDetails(ctx context.Context, id uuid.UUID) (*models.CardDetails, error) {
	card, err := r.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	boardID, err := r.BoardIDForCard(ctx, id)
	if err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)

	details := &models.CardDetails{Card: *card, BoardID: boardID}
	if err := db.Where("card_id = ?", id).Find(&details.Labels).Error; err != nil {
		return nil, err
	}
	err = db.Joins("JOIN card_members cm ON cm.user_id = users.id").
		Where("cm.card_id = ?", id).
		Order("cm.created_at").
		Find(&details.Members).Error
	if err != nil {
		return nil, err
	}
	err = db.Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("position") }).
		Where("card_id = ?", id).
		Order("position").
		Find(&details.Checklists).Error
	if err != nil {
		return nil, err
	}
	if err := db.Where("card_id = ?", id).Order("created_at DESC").Find(&details.Attachments).Error; err != nil {
		return nil, err
	}
	return details, nil
}

// UpdateCard applies only the given columns
func (r *CardRepo) UpdateCard(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Card, error) {
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Card{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("%w: card %s", models.ErrNotFound, id)
		}
	}
	return r.GetCard(ctx, id)
}

func (r *CardRepo) DeleteCard(ctx context.Context, id uuid.UUID) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var card models.Card
		if err := tx.Where("id = ?", id).First(&card).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: card %s", models.ErrNotFound, id)
			}
			return err
		}
		if err := position.Cards.LockParents(tx, card.ColumnID); err != nil {
			return err
		}
		var err error
		if keys, err = deleteCardChildren(tx, []uuid.UUID{id}); err != nil {
			return err
		}
		return position.Cards.Remove(tx, id)
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *CardRepo) MoveCard(ctx context.Context, move position.Move) error {
	return position.Cards.Move(r.db.WithContext(ctx), move)
}
