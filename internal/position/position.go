// Package position keeps sibling positions dense (0..N-1) for ordered children such as
// columns within a board and cards within a column.
//
// Every mutating call expects to run inside a store transaction, except Move, which opens
// its own so that the shift statements and the final placement commit together.
package position

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"epitrello-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Siblings describes one ordered collection: the item table, the column on it that points
// at the parent, and the parent table.
type Siblings struct {
	Table        string
	ParentColumn string
	ParentTable  string
}

var (
	Columns        = Siblings{Table: "columns", ParentColumn: "board_id", ParentTable: "boards"}
	Cards          = Siblings{Table: "cards", ParentColumn: "column_id", ParentTable: "columns"}
	Checklists     = Siblings{Table: "checklists", ParentColumn: "card_id", ParentTable: "cards"}
	ChecklistItems = Siblings{Table: "checklist_items", ParentColumn: "checklist_id", ParentTable: "checklists"}
)

// Move relocates one item. SourceParentID/SourcePos must match where the item currently is.
type Move struct {
	ItemID         uuid.UUID
	SourceParentID uuid.UUID
	DestParentID   uuid.UUID
	SourcePos      int
	DestPos        int
}

func (m Move) IsNoop() bool {
	return m.SourceParentID == m.DestParentID && m.SourcePos == m.DestPos
}

type placement struct {
	Parent   uuid.UUID
	Position int
}

// Next returns the position a newly appended item takes under parentID.
func (s Siblings) Next(tx *gorm.DB, parentID uuid.UUID) (int, error) {
	var max int
	row := tx.Table(s.Table).
		Select("COALESCE(MAX(position), -1)").
		Where(s.ParentColumn+" = ?", parentID).
		Row()
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("read max position in %s: %w", s.Table, err)
	}
	return max + 1, nil
}

// Count returns the number of items under parentID.
func (s Siblings) Count(tx *gorm.DB, parentID uuid.UUID) (int, error) {
	var n int64
	if err := tx.Table(s.Table).Where(s.ParentColumn+" = ?", parentID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", s.Table, err)
	}
	return int(n), nil
}

// Positions returns the positions under parentID in ascending order.
func (s Siblings) Positions(tx *gorm.DB, parentID uuid.UUID) ([]int, error) {
	var positions []int
	err := tx.Table(s.Table).
		Where(s.ParentColumn+" = ?", parentID).
		Order("position").
		Pluck("position", &positions).Error
	return positions, err
}

// LockParents takes row locks on the given parents (in id order, so concurrent movers
// cannot deadlock) and fails with ErrNotFound if any of them does not exist.
// SQLite has no row locks; its writer lock already serializes transactions.
func (s Siblings) LockParents(tx *gorm.DB, parentIDs ...uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(parentIDs))
	ids := make([]string, 0, len(parentIDs))
	for _, id := range parentIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id.String())
		}
	}
	sort.Strings(ids)

	q := tx.Table(s.ParentTable).Where("id IN ?", ids).Order("id")
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var found []string
	if err := q.Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("lock %s: %w", s.ParentTable, err)
	}
	if len(found) != len(ids) {
		return fmt.Errorf("%w: %s", models.ErrNotFound, s.ParentTable)
	}
	return nil
}

func (s Siblings) load(tx *gorm.DB, itemID uuid.UUID) (placement, error) {
	var p placement
	row := tx.Table(s.Table).
		Select(s.ParentColumn+", position").
		Where("id = ?", itemID).
		Row()
	if err := row.Scan(&p.Parent, &p.Position); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, fmt.Errorf("%w: %s %s", models.ErrNotFound, s.Table, itemID)
		}
		return p, fmt.Errorf("load %s %s: %w", s.Table, itemID, err)
	}
	return p, nil
}

func (s Siblings) shift(tx *gorm.DB, expr string, query string, args ...interface{}) error {
	return tx.Table(s.Table).Where(query, args...).Update("position", gorm.Expr(expr)).Error
}

// Remove deletes the item and closes the gap it leaves behind.
func (s Siblings) Remove(tx *gorm.DB, itemID uuid.UUID) error {
	p, err := s.load(tx, itemID)
	if err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM "+s.Table+" WHERE id = ?", itemID).Error; err != nil {
		return fmt.Errorf("delete %s: %w", s.Table, err)
	}
	err = s.shift(tx, "position - 1",
		s.ParentColumn+" = ? AND position > ?", p.Parent, p.Position)
	if err != nil {
		return fmt.Errorf("compact %s: %w", s.Table, err)
	}
	return nil
}

// Move applies m atomically. Moving an item onto its own slot returns without touching
// the store. Destinations outside 0..siblingCount are rejected with ErrInvalidPosition.
func (s Siblings) Move(db *gorm.DB, m Move) error {
	if m.IsNoop() {
		return nil
	}
	if m.SourcePos < 0 || m.DestPos < 0 {
		return fmt.Errorf("%w: negative index", models.ErrInvalidPosition)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := s.LockParents(tx, m.SourceParentID, m.DestParentID); err != nil {
			return err
		}

		current, err := s.load(tx, m.ItemID)
		if err != nil {
			return err
		}
		if current.Parent != m.SourceParentID || current.Position != m.SourcePos {
			return fmt.Errorf("%w: %s %s is at %d", models.ErrStalePosition, s.Table, m.ItemID, current.Position)
		}

		count, err := s.Count(tx, m.DestParentID)
		if err != nil {
			return err
		}
		maxPos := count
		if m.SourceParentID == m.DestParentID {
			maxPos = count - 1
		}
		if m.DestPos > maxPos {
			return fmt.Errorf("%w: %d not in [0, %d]", models.ErrInvalidPosition, m.DestPos, maxPos)
		}

		if m.SourceParentID == m.DestParentID {
			if m.SourcePos < m.DestPos {
				err = s.shift(tx, "position - 1",
					s.ParentColumn+" = ? AND position > ? AND position <= ?",
					m.SourceParentID, m.SourcePos, m.DestPos)
			} else {
				err = s.shift(tx, "position + 1",
					s.ParentColumn+" = ? AND position >= ? AND position < ?",
					m.SourceParentID, m.DestPos, m.SourcePos)
			}
			if err != nil {
				return fmt.Errorf("shift %s: %w", s.Table, err)
			}
		} else {
			err = s.shift(tx, "position - 1",
				s.ParentColumn+" = ? AND position > ?", m.SourceParentID, m.SourcePos)
			if err != nil {
				return fmt.Errorf("close gap in %s: %w", s.Table, err)
			}
			err = s.shift(tx, "position + 1",
				s.ParentColumn+" = ? AND position >= ?", m.DestParentID, m.DestPos)
			if err != nil {
				return fmt.Errorf("open slot in %s: %w", s.Table, err)
			}
		}

		err = tx.Table(s.Table).Where("id = ?", m.ItemID).Updates(map[string]interface{}{
			s.ParentColumn: m.DestParentID,
			"position":     m.DestPos,
		}).Error
		if err != nil {
			return fmt.Errorf("place %s: %w", s.Table, err)
		}
		return nil
	})
}

// Normalize rewrites the positions under parentID to 0..N-1, keeping the current order.
// Ties are broken by creation time.
func (s Siblings) Normalize(tx *gorm.DB, parentID uuid.UUID) error {
	var ids []string
	err := tx.Table(s.Table).
		Where(s.ParentColumn+" = ?", parentID).
		Order("position, created_at").
		Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("list %s: %w", s.Table, err)
	}
	for i, id := range ids {
		err := tx.Table(s.Table).
			Where("id = ? AND position <> ?", id, i).
			Update("position", i).Error
		if err != nil {
			return fmt.Errorf("renumber %s: %w", s.Table, err)
		}
	}
	return nil
}
