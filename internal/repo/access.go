package repo

import (
	"context"
	"fmt"
	"time"

	"epitrello-backend/internal/access"
	"epitrello-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessRepo is the store behind access.Resolver.
type AccessRepo struct {
	db *gorm.DB
}

func NewAccessRepository(db *gorm.DB) *AccessRepo {
	return &AccessRepo{db: db}
}

var _ access.Store = (*AccessRepo)(nil)

func (r *AccessRepo) DirectRole(ctx context.Context, boardID, userID uuid.UUID) (*models.BoardRole, error) {
	var roles []string
	err := r.db.WithContext(ctx).
		Model(&models.BoardMember{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Limit(1).
		Pluck("role", &roles).Error
	if err != nil {
		return nil, fmt.Errorf("read board membership: %w", err)
	}
	if len(roles) == 0 {
		return nil, nil
	}
	role := models.BoardRole(roles[0])
	return &role, nil
}

func (r *AccessRepo) OrganizationRole(ctx context.Context, boardID, userID uuid.UUID) (*models.OrgRole, error) {
	var rows []struct {
		Role *string
	}
	err := r.db.WithContext(ctx).
		Table("boards b").
		Select("om.role AS role").
		Joins("LEFT JOIN organization_members om ON om.organization_id = b.organization_id AND om.user_id = ?", userID).
		Where("b.id = ?", boardID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("read organization membership: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: board %s", models.ErrNotFound, boardID)
	}
	if rows[0].Role == nil {
		return nil, nil
	}
	role := models.OrgRole(*rows[0].Role)
	return &role, nil
}

type memberRow struct {
	UserID    uuid.UUID
	Name      string
	Username  string
	Email     string
	Role      string
	CreatedAt time.Time
}

func (m memberRow) member(role models.BoardRole) models.Member {
	return models.Member{
		UserID:   m.UserID,
		Name:     m.Name,
		Username: m.Username,
		Email:    m.Email,
		Role:     role,
		JoinedAt: m.CreatedAt,
	}
}

func (r *AccessRepo) DirectMembers(ctx context.Context, boardID uuid.UUID) ([]models.Member, error) {
	var rows []memberRow
	err := r.db.WithContext(ctx).
		Table("board_members bm").
		Select("u.id AS user_id, u.name, u.username, u.email, bm.role, bm.created_at").
		Joins("JOIN users u ON u.id = bm.user_id").
		Where("bm.board_id = ?", boardID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list board members: %w", err)
	}
	members := make([]models.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.member(models.BoardRole(row.Role)))
	}
	return members, nil
}

func (r *AccessRepo) InheritedMembers(ctx context.Context, boardID uuid.UUID) ([]models.Member, error) {
	var rows []memberRow
	err := r.db.WithContext(ctx).
		Table("boards b").
		Select("u.id AS user_id, u.name, u.username, u.email, om.role, om.created_at").
		Joins("JOIN organization_members om ON om.organization_id = b.organization_id").
		Joins("JOIN users u ON u.id = om.user_id").
		Where("b.id = ? AND b.organization_id IS NOT NULL", boardID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list organization members of board: %w", err)
	}
	members := make([]models.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.member(access.Inherited(models.OrgRole(row.Role))))
	}
	return members, nil
}
