package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"epitrello-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationBoard is a board listed under its organization.
type OrganizationBoard struct {
	models.Board
	CreatorName     string `json:"creator_name"`
	CreatorUsername string `json:"creator_username"`
}

type OrganizationRepo struct {
	db *gorm.DB
}

type OrganizationRepoInterface interface {
	CreateOrganization(ctx context.Context, org *models.Organization) error
	GetOrganization(ctx context.Context, id uuid.UUID) (*models.OrganizationSummary, error)
	ListOrganizationsForUser(ctx context.Context, userID uuid.UUID) ([]models.OrganizationSummary, error)
	UpdateOrganization(ctx context.Context, id uuid.UUID, displayName, description string) (*models.Organization, error)
	DeleteOrganization(ctx context.Context, id uuid.UUID) error

	MemberRole(ctx context.Context, orgID, userID uuid.UUID) (*models.OrgRole, error)
	ListMembers(ctx context.Context, orgID uuid.UUID) ([]models.OrganizationMemberInfo, error)
	AddMember(ctx context.Context, orgID, userID uuid.UUID, role models.OrgRole) error
	UpdateMemberRole(ctx context.Context, orgID, userID uuid.UUID, role models.OrgRole) (models.OrgRole, error)
	RemoveMember(ctx context.Context, orgID, userID uuid.UUID) error
	ListBoards(ctx context.Context, orgID uuid.UUID) ([]OrganizationBoard, error)
}

func NewOrganizationRepository(db *gorm.DB) OrganizationRepoInterface {
	return &OrganizationRepo{db: db}
}

// CreateOrganization stores the organization and makes its creator the owner
func (r *OrganizationRepo) CreateOrganization(ctx context.Context, org *models.Organization) error {
	org.ID = uuid.New()
	org.CreatedAt = time.Now()
	org.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Organization{}).Where("name = ?", org.Name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: organization name %q is taken", models.ErrConflict, org.Name)
		}
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		return addOrganizationMember(tx, org.ID, org.CreatedBy, models.OrgRoleOwner)
	})
}

func (r *OrganizationRepo) summaries(db *gorm.DB) *gorm.DB {
	return db.Table("organizations o").
		Select("o.*, " +
			"(SELECT COUNT(*) FROM organization_members m WHERE m.organization_id = o.id) AS member_count, " +
			"(SELECT COUNT(*) FROM boards b WHERE b.organization_id = o.id) AS board_count")
}

func (r *OrganizationRepo) GetOrganization(ctx context.Context, id uuid.UUID) (*models.OrganizationSummary, error) {
	var rows []models.OrganizationSummary
	if err := r.summaries(r.db.WithContext(ctx)).Where("o.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: organization %s", models.ErrNotFound, id)
	}
	return &rows[0], nil
}

// ListOrganizationsForUser returns the user's organizations with the user's role, newest first
func (r *OrganizationRepo) ListOrganizationsForUser(ctx context.Context, userID uuid.UUID) ([]models.OrganizationSummary, error) {
	orgs := []models.OrganizationSummary{}
	err := r.db.WithContext(ctx).
		Table("organizations o").
		Select("o.*, om.role AS role, "+
			"(SELECT COUNT(*) FROM organization_members m WHERE m.organization_id = o.id) AS member_count, "+
			"(SELECT COUNT(*) FROM boards b WHERE b.organization_id = o.id) AS board_count").
		Joins("JOIN organization_members om ON om.organization_id = o.id AND om.user_id = ?", userID).
		Order("o.created_at DESC").
		Scan(&orgs).Error
	return orgs, err
}

func (r *OrganizationRepo) UpdateOrganization(ctx context.Context, id uuid.UUID, displayName, description string) (*models.Organization, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.Organization{}).Where("id = ?", id).Updates(map[string]interface{}{
		"display_name": displayName,
		"description":  description,
		"updated_at":   time.Now(),
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: organization %s", models.ErrNotFound, id)
	}
	var org models.Organization
	if err := db.Where("id = ?", id).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// DeleteOrganization removes the organization with its memberships, invitations and
// audit trail. Its boards survive as personal boards of their owners.
func (r *OrganizationRepo) DeleteOrganization(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Board{}).Where("organization_id = ?", id).Update("organization_id", nil).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{
			&models.OrganizationMember{},
			&models.OrganizationInvitation{},
			&models.AuditLog{},
		} {
			if err := tx.Where("organization_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&models.Organization{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: organization %s", models.ErrNotFound, id)
		}
		return nil
	})
}

// MemberRole returns nil when the user is not a member
func (r *OrganizationRepo) MemberRole(ctx context.Context, orgID, userID uuid.UUID) (*models.OrgRole, error) {
	var roles []string
	err := r.db.WithContext(ctx).
		Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Limit(1).
		Pluck("role", &roles).Error
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, nil
	}
	role := models.OrgRole(roles[0])
	return &role, nil
}

func (r *OrganizationRepo) ListMembers(ctx context.Context, orgID uuid.UUID) ([]models.OrganizationMemberInfo, error) {
	members := []models.OrganizationMemberInfo{}
	err := r.db.WithContext(ctx).
		Table("organization_members om").
		Select("u.id AS user_id, u.name, u.username, u.email, u.bio, om.role, om.created_at AS joined_at").
		Joins("JOIN users u ON u.id = om.user_id").
		Where("om.organization_id = ?", orgID).
		Order("om.created_at ASC").
		Scan(&members).Error
	if err != nil {
		return nil, err
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Role.Rank() < members[j].Role.Rank()
	})
	return members, nil
}

func (r *OrganizationRepo) AddMember(ctx context.Context, orgID, userID uuid.UUID, role models.OrgRole) error {
	return addOrganizationMember(r.db.WithContext(ctx), orgID, userID, role)
}

func addOrganizationMember(tx *gorm.DB, orgID, userID uuid.UUID, role models.OrgRole) error {
	var n int64
	err := tx.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: user is already a member", models.ErrConflict)
	}
	return tx.Create(&models.OrganizationMember{
		ID:             uuid.New(),
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		CreatedAt:      time.Now(),
	}).Error
}

func organizationMember(tx *gorm.DB, orgID, userID uuid.UUID) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	err := tx.Where("organization_id = ? AND user_id = ?", orgID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: organization member %s", models.ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateMemberRole returns the previous role. The owner's role cannot be changed.
func (r *OrganizationRepo) UpdateMemberRole(ctx context.Context, orgID, userID uuid.UUID, role models.OrgRole) (models.OrgRole, error) {
	var previous models.OrgRole
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := organizationMember(tx, orgID, userID)
		if err != nil {
			return err
		}
		if member.Role.IsOwner() {
			return fmt.Errorf("%w: cannot change owner role", models.ErrForbidden)
		}
		previous = member.Role
		return tx.Model(member).Update("role", role).Error
	})
	return previous, err
}

func (r *OrganizationRepo) RemoveMember(ctx context.Context, orgID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Delete(&models.OrganizationMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: organization member %s", models.ErrNotFound, userID)
	}
	return nil
}

func (r *OrganizationRepo) ListBoards(ctx context.Context, orgID uuid.UUID) ([]OrganizationBoard, error) {
	boards := []OrganizationBoard{}
	err := r.db.WithContext(ctx).
		Table("boards b").
		Select("b.*, u.name AS creator_name, u.username AS creator_username").
		Joins("JOIN users u ON u.id = b.user_id").
		Where("b.organization_id = ?", orgID).
		Order("b.created_at DESC").
		Scan(&boards).Error
	return boards, err
}
