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

func (r *CardRepo) AddLabel(ctx context.Context, label *models.Label) error {
	label.ID = uuid.New()
	return r.db.WithContext(ctx).Create(label).Error
}

func (r *CardRepo) RemoveLabel(ctx context.Context, cardID, labelID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND card_id = ?", labelID, cardID).Delete(&models.Label{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: label %s", models.ErrNotFound, labelID)
	}
	return nil
}

func (r *CardRepo) AddMember(ctx context.Context, cardID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.CardMember{}).Where("card_id = ? AND user_id = ?", cardID, userID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: user is already assigned to this card", models.ErrConflict)
		}
		return tx.Create(&models.CardMember{CardID: cardID, UserID: userID, CreatedAt: time.Now()}).Error
	})
}

func (r *CardRepo) RemoveMember(ctx context.Context, cardID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("card_id = ? AND user_id = ?", cardID, userID).Delete(&models.CardMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: card member %s", models.ErrNotFound, userID)
	}
	return nil
}

// AddChecklist appends a checklist to the card
func (r *CardRepo) AddChecklist(ctx context.Context, cardID uuid.UUID, title string) (*models.Checklist, error) {
	checklist := &models.Checklist{
		ID:        uuid.New(),
		CardID:    cardID,
		Title:     title,
		Items:     []models.ChecklistItem{},
		CreatedAt: time.Now(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := position.Checklists.LockParents(tx, cardID); err != nil {
			return err
		}
		pos, err := position.Checklists.Next(tx, cardID)
		if err != nil {
			return err
		}
		checklist.Position = pos
		return tx.Omit("Items").Create(checklist).Error
	})
	if err != nil {
		return nil, err
	}
	return checklist, nil
}

func (r *CardRepo) DeleteChecklist(ctx context.Context, cardID, checklistID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checklistOnCard(tx, cardID, checklistID); err != nil {
			return err
		}
		if err := tx.Where("checklist_id = ?", checklistID).Delete(&models.ChecklistItem{}).Error; err != nil {
			return err
		}
		return position.Checklists.Remove(tx, checklistID)
	})
}

// AddChecklistItem appends item to its checklist, which must belong to cardID
func (r *CardRepo) AddChecklistItem(ctx context.Context, cardID uuid.UUID, item *models.ChecklistItem) error {
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checklistOnCard(tx, cardID, item.ChecklistID); err != nil {
			return err
		}
		if err := position.ChecklistItems.LockParents(tx, item.ChecklistID); err != nil {
			return err
		}
		pos, err := position.ChecklistItems.Next(tx, item.ChecklistID)
		if err != nil {
			return err
		}
		item.Position = pos
		return tx.Create(item).Error
	})
}

func (r *CardRepo) UpdateChecklistItem(ctx context.Context, cardID, itemID uuid.UUID, updates map[string]interface{}) (*models.ChecklistItem, error) {
	db := r.db.WithContext(ctx)
	checklists := db.Model(&models.Checklist{}).Select("id").Where("card_id = ?", cardID)

	var item models.ChecklistItem
	err := db.Where("id = ? AND checklist_id IN (?)", itemID, checklists).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: checklist item %s", models.ErrNotFound, itemID)
	}
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := db.Model(&item).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if err := db.Where("id = ?", itemID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CardRepo) DeleteChecklistItem(ctx context.Context, cardID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var checklistIDs []uuid.UUID
		err := tx.Table("checklist_items i").
			Joins("JOIN checklists cl ON cl.id = i.checklist_id").
			Where("i.id = ? AND cl.card_id = ?", itemID, cardID).
			Pluck("i.checklist_id", &checklistIDs).Error
		if err != nil {
			return err
		}
		if len(checklistIDs) == 0 {
			return fmt.Errorf("%w: checklist item %s", models.ErrNotFound, itemID)
		}
		return position.ChecklistItems.Remove(tx, itemID)
	})
}

func checklistOnCard(tx *gorm.DB, cardID, checklistID uuid.UUID) error {
	var n int64
	if err := tx.Model(&models.Checklist{}).Where("id = ? AND card_id = ?", checklistID, cardID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: checklist %s", models.ErrNotFound, checklistID)
	}
	return nil
}
