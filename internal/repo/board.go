package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"epitrello-backend/internal/access"
	"epitrello-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BoardRepo represents the repository for the board model
type BoardRepo struct {
	db *gorm.DB
}

type BoardRepoInterface interface {
	CreateBoard(ctx context.Context, board *models.Board) (uuid.UUID, error)
	GetBoard(ctx context.Context, id uuid.UUID) (*models.Board, error)
	GetBoardDetails(ctx context.Context, id uuid.UUID) (*models.BoardDetails, error)
	GetBoardsForUser(ctx context.Context, userID uuid.UUID) ([]models.BoardSummary, error)
	RenameBoard(ctx context.Context, id uuid.UUID, title string) (*models.Board, error)
	// DeleteBoard removes the board and everything under it, returning the attachment
	// object keys that were dropped so their blobs can be removed too.
	DeleteBoard(ctx context.Context, id uuid.UUID) ([]string, error)
	TouchBoard(ctx context.Context, id uuid.UUID) error
}

func NewBoardRepository(db *gorm.DB) BoardRepoInterface {
	return &BoardRepo{db: db}
}

// CreateBoard creates a new board and makes its creator the owner
func (r *BoardRepo) CreateBoard(ctx context.Context, board *models.Board) (uuid.UUID, error) {
	board.ID = uuid.New()
	board.CreatedAt = time.Now()
	board.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return err
		}
		return tx.Create(&models.BoardMember{
			ID:        uuid.New(),
			BoardID:   board.ID,
			UserID:    board.UserID,
			Role:      models.BoardRoleOwner,
			CreatedAt: time.Now(),
		}).Error
	})
	return board.ID, err
}

func (r *BoardRepo) GetBoard(ctx context.Context, id uuid.UUID) (*models.Board, error) {
	var board models.Board
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: board %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// GetBoardDetails returns the board with its columns and cards in position order
func (r *BoardRepo) GetBoardDetails(ctx context.Context, id uuid.UUID) (*models.BoardDetails, error) {
	board, err := r.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)

	var columns []models.Column
	if err := db.Where("board_id = ?", id).Order("position").Find(&columns).Error; err != nil {
		return nil, err
	}

	var cards []models.Card
	err = db.Joins("JOIN columns col ON col.id = cards.column_id").
		Where("col.board_id = ?", id).
		Order("cards.position").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}

	byColumn := make(map[uuid.UUID][]models.Card, len(columns))
	for _, card := range cards {
		byColumn[card.ColumnID] = append(byColumn[card.ColumnID], card)
	}

	details := &models.BoardDetails{Board: *board, Columns: make([]models.ColumnWithCards, 0, len(columns))}
	for _, col := range columns {
		colCards := byColumn[col.ID]
		if colCards == nil {
			colCards = []models.Card{}
		}
		details.Columns = append(details.Columns, models.ColumnWithCards{Column: col, Cards: colCards})
	}
	return details, nil
}

// GetBoardsForUser returns every board the user reaches directly or through an
// organization, most recently updated first
func (r *BoardRepo) GetBoardsForUser(ctx context.Context, userID uuid.UUID) ([]models.BoardSummary, error) {
	db := r.db.WithContext(ctx)

	var rows []struct {
		BoardID    uuid.UUID
		DirectRole *string
		OrgRole    *string
	}
	err := db.Table("boards b").
		Select("b.id AS board_id, bm.role AS direct_role, om.role AS org_role").
		Joins("LEFT JOIN board_members bm ON bm.board_id = b.id AND bm.user_id = ?", userID).
		Joins("LEFT JOIN organization_members om ON om.organization_id = b.organization_id AND om.user_id = ?", userID).
		Where("bm.user_id IS NOT NULL OR om.user_id IS NOT NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []models.BoardSummary{}, nil
	}

	roles := make(map[uuid.UUID]models.BoardRole, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		var direct *models.BoardRole
		var org *models.OrgRole
		if row.DirectRole != nil {
			d := models.BoardRole(*row.DirectRole)
			direct = &d
		}
		if row.OrgRole != nil {
			o := models.OrgRole(*row.OrgRole)
			org = &o
		}
		role := access.Effective(direct, org)
		if role == nil {
			continue
		}
		roles[row.BoardID] = *role
		ids = append(ids, row.BoardID)
	}

	var boards []models.Board
	if err := db.Where("id IN ?", ids).Order("updated_at DESC").Find(&boards).Error; err != nil {
		return nil, err
	}

	var counts []struct {
		BoardID uuid.UUID
		N       int64
	}
	err = db.Model(&models.Column{}).
		Select("board_id, COUNT(*) AS n").
		Where("board_id IN ?", ids).
		Group("board_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	columnCount := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		columnCount[c.BoardID] = c.N
	}

	summaries := make([]models.BoardSummary, 0, len(boards))
	for _, b := range boards {
		summaries = append(summaries, models.BoardSummary{
			Board:       b,
			Role:        roles[b.ID],
			ColumnCount: columnCount[b.ID],
		})
	}
	return summaries, nil
}

func (r *BoardRepo) RenameBoard(ctx context.Context, id uuid.UUID, title string) (*models.Board, error) {
	res := r.db.WithContext(ctx).Model(&models.Board{}).Where("id = ?", id).Update("title", title)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: board %s", models.ErrNotFound, id)
	}
	return r.GetBoard(ctx, id)
}

// TouchBoard bumps updated_at so the board sorts first in listings
func (r *BoardRepo) TouchBoard(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Board{}).Where("id = ?", id).Update("updated_at", time.Now()).Error
}

func (r *BoardRepo) DeleteBoard(ctx context.Context, id uuid.UUID) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var columnIDs []uuid.UUID
		if err := tx.Model(&models.Column{}).Where("board_id = ?", id).Pluck("id", &columnIDs).Error; err != nil {
			return err
		}
		var cardIDs []uuid.UUID
		if len(columnIDs) > 0 {
			if err := tx.Model(&models.Card{}).Where("column_id IN ?", columnIDs).Pluck("id", &cardIDs).Error; err != nil {
				return err
			}
		}

		var err error
		if keys, err = deleteCardChildren(tx, cardIDs); err != nil {
			return err
		}
		if len(columnIDs) > 0 {
			if err := tx.Where("column_id IN ?", columnIDs).Delete(&models.Card{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("board_id = ?", id).Delete(&models.Column{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&models.BoardMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&models.BoardInvitation{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Board{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: board %s", models.ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// deleteCardChildren removes every row hanging off the given cards and returns the
// attachment object keys that were removed.
func deleteCardChildren(tx *gorm.DB, cardIDs []uuid.UUID) ([]string, error) {
	if len(cardIDs) == 0 {
		return nil, nil
	}

	var keys []string
	if err := tx.Model(&models.Attachment{}).Where("card_id IN ?", cardIDs).Pluck("object_key", &keys).Error; err != nil {
		return nil, err
	}

	checklists := tx.Model(&models.Checklist{}).Select("id").Where("card_id IN ?", cardIDs)
	if err := tx.Where("checklist_id IN (?)", checklists).Delete(&models.ChecklistItem{}).Error; err != nil {
		return nil, err
	}
	for _, model := range []interface{}{
		&models.Checklist{},
		&models.Label{},
		&models.CardMember{},
		&models.Comment{},
		&models.CardActivity{},
		&models.Attachment{},
	} {
		if err := tx.Where("card_id IN ?", cardIDs).Delete(model).Error; err != nil {
			return nil, err
		}
	}
	return keys, nil
}
