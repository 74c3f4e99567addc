package repo

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"epitrello-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BoardInvitationView is a pending invitation as shown to its invitee.
type BoardInvitationView struct {
	models.BoardInvitation
	BoardTitle  string `json:"board_title"`
	InviterName string `json:"inviter_name"`
}

// OrganizationInvitationView is a pending organization invitation with its inviter.
type OrganizationInvitationView struct {
	models.OrganizationInvitation
	OrganizationName string `json:"organization_name"`
	InviterName      string `json:"inviter_name"`
	InviterUsername  string `json:"inviter_username"`
}

type InvitationRepo struct {
	db *gorm.DB
}

type InvitationRepoInterface interface {
	CreateBoardInvitation(ctx context.Context, boardID, inviterID uuid.UUID, email string, role models.BoardRole) (*models.BoardInvitation, error)
	PendingBoardInvitations(ctx context.Context, email string) ([]BoardInvitationView, error)
	AcceptBoardInvitation(ctx context.Context, token string, user *models.User) (*models.BoardInvitation, error)
	DeclineBoardInvitation(ctx context.Context, token string, user *models.User) error

	CreateOrganizationInvitation(ctx context.Context, orgID, inviterID uuid.UUID, email string, role models.OrgRole) (*models.OrganizationInvitation, error)
	PendingOrganizationInvitations(ctx context.Context, orgID uuid.UUID) ([]OrganizationInvitationView, error)
	AcceptOrganizationInvitation(ctx context.Context, token string, user *models.User) (*models.OrganizationInvitation, error)
}

func NewInvitationRepository(db *gorm.DB) InvitationRepoInterface {
	return &InvitationRepo{db: db}
}

// newToken returns 32 random bytes, hex encoded.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate invitation token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

var errInvitationGone = fmt.Errorf("%w: invitation not found or expired", models.ErrNotFound)

func (r *InvitationRepo) CreateBoardInvitation(ctx context.Context, boardID, inviterID uuid.UUID, email string, role models.BoardRole) (*models.BoardInvitation, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	inv := &models.BoardInvitation{
		ID:           uuid.New(),
		BoardID:      boardID,
		InviterID:    inviterID,
		InviteeEmail: strings.ToLower(email),
		Role:         role,
		Token:        token,
		Status:       models.InvitationPending,
		ExpiresAt:    time.Now().Add(models.InvitationTTL),
		CreatedAt:    time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InvitationRepo) PendingBoardInvitations(ctx context.Context, email string) ([]BoardInvitationView, error) {
	invitations := []BoardInvitationView{}
	err := r.db.WithContext(ctx).
		Table("board_invitations bi").
		Select("bi.*, b.title AS board_title, u.name AS inviter_name").
		Joins("JOIN boards b ON b.id = bi.board_id").
		Joins("JOIN users u ON u.id = bi.inviter_id").
		Where("bi.invitee_email = ? AND bi.status = ? AND bi.expires_at > ?",
			strings.ToLower(email), models.InvitationPending, time.Now()).
		Order("bi.created_at DESC").
		Scan(&invitations).Error
	return invitations, err
}

// pendingBoardInvitation loads an invitation that can still be answered by user
func pendingBoardInvitation(tx *gorm.DB, token string, user *models.User) (*models.BoardInvitation, error) {
	var inv models.BoardInvitation
	err := tx.Where("token = ? AND status = ? AND expires_at > ?", token, models.InvitationPending, time.Now()).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errInvitationGone
	}
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(inv.InviteeEmail, user.Email) {
		return nil, fmt.Errorf("%w: this invitation is not for you", models.ErrForbidden)
	}
	return &inv, nil
}

// AcceptBoardInvitation marks the invitation accepted and adds the user to the board.
// A user who already holds a direct membership keeps it.
func (r *InvitationRepo) AcceptBoardInvitation(ctx context.Context, token string, user *models.User) (*models.BoardInvitation, error) {
	var inv *models.BoardInvitation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if inv, err = pendingBoardInvitation(tx, token, user); err != nil {
			return err
		}
		if err := tx.Model(inv).Update("status", models.InvitationAccepted).Error; err != nil {
			return err
		}
		err = addBoardMember(tx, inv.BoardID, user.ID, inv.Role)
		if errors.Is(err, models.ErrConflict) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InvitationRepo) DeclineBoardInvitation(ctx context.Context, token string, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := pendingBoardInvitation(tx, token, user)
		if err != nil {
			return err
		}
		return tx.Model(inv).Update("status", models.InvitationDeclined).Error
	})
}

// CreateOrganizationInvitation replaces any earlier invitation for the same address
func (r *InvitationRepo) CreateOrganizationInvitation(ctx context.Context, orgID, inviterID uuid.UUID, email string, role models.OrgRole) (*models.OrganizationInvitation, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	inv := &models.OrganizationInvitation{
		ID:             uuid.New(),
		OrganizationID: orgID,
		InviterID:      inviterID,
		InviteeEmail:   strings.ToLower(email),
		Role:           role,
		Token:          token,
		Status:         models.InvitationPending,
		ExpiresAt:      time.Now().Add(models.InvitationTTL),
		CreatedAt:      time.Now(),
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("organization_id = ? AND invitee_email = ?", orgID, inv.InviteeEmail).
			Delete(&models.OrganizationInvitation{}).Error
		if err != nil {
			return err
		}
		return tx.Create(inv).Error
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InvitationRepo) PendingOrganizationInvitations(ctx context.Context, orgID uuid.UUID) ([]OrganizationInvitationView, error) {
	invitations := []OrganizationInvitationView{}
	err := r.db.WithContext(ctx).
		Table("organization_invitations oi").
		Select("oi.*, o.name AS organization_name, u.name AS inviter_name, u.username AS inviter_username").
		Joins("JOIN organizations o ON o.id = oi.organization_id").
		Joins("JOIN users u ON u.id = oi.inviter_id").
		Where("oi.organization_id = ? AND oi.status = ?", orgID, models.InvitationPending).
		Order("oi.created_at DESC").
		Scan(&invitations).Error
	return invitations, err
}

func (r *InvitationRepo) AcceptOrganizationInvitation(ctx context.Context, token string, user *models.User) (*models.OrganizationInvitation, error) {
	var inv models.OrganizationInvitation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("token = ? AND status = ? AND expires_at > ?", token, models.InvitationPending, time.Now()).
			First(&inv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errInvitationGone
		}
		if err != nil {
			return err
		}
		if !strings.EqualFold(inv.InviteeEmail, user.Email) {
			return fmt.Errorf("%w: this invitation is not for you", models.ErrForbidden)
		}
		if err := tx.Model(&inv).Update("status", models.InvitationAccepted).Error; err != nil {
			return err
		}
		err = addOrganizationMember(tx, inv.OrganizationID, user.ID, inv.Role)
		if errors.Is(err, models.ErrConflict) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
