package access

import (
	"context"
	"fmt"

	"epitrello-backend/internal/models"

	"github.com/google/uuid"
)

// Store is the read side the resolver needs.
type Store interface {
	// DirectRole returns the user's board_members role, or nil.
	DirectRole(ctx context.Context, boardID, userID uuid.UUID) (*models.BoardRole, error)
	// OrganizationRole returns the user's role in the organization owning the board, or nil
	// when the board has no organization or the user is not in it. It fails with
	// models.ErrNotFound when the board does not exist.
	OrganizationRole(ctx context.Context, boardID, userID uuid.UUID) (*models.OrgRole, error)
	DirectMembers(ctx context.Context, boardID uuid.UUID) ([]models.Member, error)
	// InheritedMembers lists organization members with their organization role mapped
	// through Inherited.
	InheritedMembers(ctx context.Context, boardID uuid.UUID) ([]models.Member, error)
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// EffectiveRole returns the user's role on the board, or nil for no access.
// It issues at most two reads and never writes.
func (r *Resolver) EffectiveRole(ctx context.Context, boardID, userID uuid.UUID) (*models.BoardRole, error) {
	if boardID == uuid.Nil {
		return nil, fmt.Errorf("%w: board", models.ErrNotFound)
	}
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user", models.ErrNotFound)
	}

	direct, err := r.store.DirectRole(ctx, boardID, userID)
	if err != nil {
		return nil, err
	}
	if direct != nil {
		return Effective(direct, nil), nil
	}

	org, err := r.store.OrganizationRole(ctx, boardID, userID)
	if err != nil {
		return nil, err
	}
	return Effective(nil, org), nil
}

func (r *Resolver) has(ctx context.Context, boardID, userID uuid.UUID, c Capability) (bool, error) {
	role, err := r.EffectiveRole(ctx, boardID, userID)
	if err != nil {
		return false, err
	}
	return c.Allows(role), nil
}

func (r *Resolver) CanRead(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	return r.has(ctx, boardID, userID, Read)
}

func (r *Resolver) CanWrite(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	return r.has(ctx, boardID, userID, Write)
}

func (r *Resolver) HasAdminAccess(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	return r.has(ctx, boardID, userID, Admin)
}

func (r *Resolver) IsOwner(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	return r.has(ctx, boardID, userID, Owner)
}

// Require returns the caller's role when it grants c, and models.ErrForbidden otherwise.
func (r *Resolver) Require(ctx context.Context, boardID, userID uuid.UUID, c Capability) (models.BoardRole, error) {
	role, err := r.EffectiveRole(ctx, boardID, userID)
	if err != nil {
		return "", err
	}
	if !c.Allows(role) {
		return "", fmt.Errorf("%w: %s access required on board %s", models.ErrForbidden, c, boardID)
	}
	return *role, nil
}

// Members returns the merged member list of a board.
func (r *Resolver) Members(ctx context.Context, boardID uuid.UUID) ([]models.Member, error) {
	direct, err := r.store.DirectMembers(ctx, boardID)
	if err != nil {
		return nil, err
	}
	inherited, err := r.store.InheritedMembers(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return MergeMembers(direct, inherited), nil
}
