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

type ColumnRepo struct {
	db *gorm.DB
}

type ColumnRepoInterface interface {
	CreateColumn(ctx context.Context, boardID uuid.UUID, title string) (*models.Column, error)
	GetColumn(ctx context.Context, id uuid.UUID) (*models.Column, error)
	RenameColumn(ctx context.Context, id uuid.UUID, title string) (*models.Column, error)
	// DeleteColumn removes the column with its cards and compacts the remaining columns.
	DeleteColumn(ctx context.Context, id uuid.UUID) ([]string, error)
	MoveColumn(ctx context.Context, boardID, columnID uuid.UUID, sourceIndex, destIndex int) error
	// RepairPositions renumbers the columns of every board and the cards of every column.
	RepairPositions(ctx context.Context) error
}

func NewColumnRepository(db *gorm.DB) ColumnRepoInterface {
	return &ColumnRepo{db: db}
}

// CreateColumn appends a column at the end of the board
func (r *ColumnRepo) CreateColumn(ctx context.Context, boardID uuid.UUID, title string) (*models.Column, error) {
	column := &models.Column{
		ID:        uuid.New(),
		Title:     title,
		BoardID:   boardID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := position.Columns.LockParents(tx, boardID); err != nil {
			return err
		}
		pos, err := position.Columns.Next(tx, boardID)
		if err != nil {
			return err
		}
		column.Position = pos
		return tx.Create(column).Error
	})
	if err != nil {
		return nil, err
	}
	return column, nil
}

func (r *ColumnRepo) GetColumn(ctx context.Context, id uuid.UUID) (*models.Column, error) {
	var column models.Column
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&column).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: column %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &column, nil
}

func (r *ColumnRepo) RenameColumn(ctx context.Context, id uuid.UUID, title string) (*models.Column, error) {
	res := r.db.WithContext(ctx).Model(&models.Column{}).Where("id = ?", id).Update("title", title)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: column %s", models.ErrNotFound, id)
	}
	return r.GetColumn(ctx, id)
}

func (r *ColumnRepo) DeleteColumn(ctx context.Context, id uuid.UUID) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var column models.Column
		if err := tx.Where("id = ?", id).First(&column).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: column %s", models.ErrNotFound, id)
			}
			return err
		}
		if err := position.Columns.LockParents(tx, column.BoardID); err != nil {
			return err
		}
		if err := position.Cards.LockParents(tx, id); err != nil {
			return err
		}

		var cardIDs []uuid.UUID
		if err := tx.Model(&models.Card{}).Where("column_id = ?", id).Pluck("id", &cardIDs).Error; err != nil {
			return err
		}
		var err error
		if keys, err = deleteCardChildren(tx, cardIDs); err != nil {
			return err
		}
		if err := tx.Where("column_id = ?", id).Delete(&models.Card{}).Error; err != nil {
			return err
		}
		return position.Columns.Remove(tx, id)
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// MoveColumn reorders a column within its board
func (r *ColumnRepo) MoveColumn(ctx context.Context, boardID, columnID uuid.UUID, sourceIndex, destIndex int) error {
	return position.Columns.Move(r.db.WithContext(ctx), position.Move{
		ItemID:         columnID,
		SourceParentID: boardID,
		DestParentID:   boardID,
		SourcePos:      sourceIndex,
		DestPos:        destIndex,
	})
}

func (r *ColumnRepo) RepairPositions(ctx context.Context) error {
	db := r.db.WithContext(ctx)

	var boardIDs []uuid.UUID
	if err := db.Model(&models.Board{}).Pluck("id", &boardIDs).Error; err != nil {
		return err
	}
	for _, boardID := range boardIDs {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := position.Columns.LockParents(tx, boardID); err != nil {
				return err
			}
			if err := position.Columns.Normalize(tx, boardID); err != nil {
				return err
			}
			var columnIDs []uuid.UUID
			if err := tx.Model(&models.Column{}).Where("board_id = ?", boardID).Pluck("id", &columnIDs).Error; err != nil {
				return err
			}
			for _, columnID := range columnIDs {
				if err := position.Cards.Normalize(tx, columnID); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("repair board %s: %w", boardID, err)
		}
	}
	return nil
}
