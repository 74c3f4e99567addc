package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"epitrello-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberRepo manages direct board memberships.
type MemberRepo struct {
	db *gorm.DB
}

type MemberRepoInterface interface {
	AddBoardMember(ctx context.Context, boardID, userID uuid.UUID, role models.BoardRole) error
	UpdateBoardMemberRole(ctx context.Context, boardID, userID uuid.UUID, role models.BoardRole) (models.BoardRole, error)
	RemoveBoardMember(ctx context.Context, boardID, userID uuid.UUID) error
}

func NewMemberRepository(db *gorm.DB) MemberRepoInterface {
	return &MemberRepo{db: db}
}

func (r *MemberRepo) AddBoardMember(ctx context.Context, boardID, userID uuid.UUID, role models.BoardRole) error {
	return addBoardMember(r.db.WithContext(ctx), boardID, userID, role)
}

func addBoardMember(tx *gorm.DB, boardID, userID uuid.UUID, role models.BoardRole) error {
	var n int64
	if err := tx.Model(&models.BoardMember{}).Where("board_id = ? AND user_id = ?", boardID, userID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: user is already a member of this board", models.ErrConflict)
	}
	return tx.Create(&models.BoardMember{
		ID:        uuid.New(),
		BoardID:   boardID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now(),
	}).Error
}

func (r *MemberRepo) directMember(tx *gorm.DB, boardID, userID uuid.UUID) (*models.BoardMember, error) {
	var member models.BoardMember
	err := tx.Where("board_id = ? AND user_id = ?", boardID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: board member %s", models.ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateBoardMemberRole changes a direct member's role and returns the previous one.
// The owner's role cannot be changed.
func (r *MemberRepo) UpdateBoardMemberRole(ctx context.Context, boardID, userID uuid.UUID, role models.BoardRole) (models.BoardRole, error) {
	var previous models.BoardRole
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := r.directMember(tx, boardID, userID)
		if err != nil {
			return err
		}
		if member.Role.IsOwner() {
			return fmt.Errorf("%w: cannot change owner role", models.ErrInvalidInput)
		}
		previous = member.Role
		return tx.Model(member).Update("role", role).Error
	})
	return previous, err
}

func (r *MemberRepo) RemoveBoardMember(ctx context.Context, boardID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := r.directMember(tx, boardID, userID)
		if err != nil {
			return err
		}
		if member.Role.IsOwner() {
			return fmt.Errorf("%w: cannot remove the board owner", models.ErrInvalidInput)
		}
		return tx.Delete(member).Error
	})
}
