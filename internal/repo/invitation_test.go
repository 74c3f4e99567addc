package repo

import (
	"context"
	"testing"
	"time"

	"epitrello-backend/internal/models"
	"epitrello-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardInvitation_Accept(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.User(t, db, "alice")
	board := testutil.Board(t, db, alice.ID, nil)
	invitations := NewInvitationRepository(db)

	inv, err := invitations.CreateBoardInvitation(ctx, board.ID, alice.ID, "Bob@Example.com", models.BoardRoleWrite)
	require.NoError(t, err)
	assert.Len(t, inv.Token, 64)
	assert.WithinDuration(t, time.Now().Add(models.InvitationTTL), inv.ExpiresAt, time.Minute)

	bob := testutil.User(t, db, "bob")
	pending, err := invitations.PendingBoardInvitations(ctx, bob.Email)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "board", pending[0].BoardTitle)
	assert.Equal(t, "alice", pending[0].InviterName)

	mallory := testutil.User(t, db, "mallory")
	_, err = invitations.AcceptBoardInvitation(ctx, inv.Token, &mallory)
	assert.ErrorIs(t, err, models.ErrForbidden)

	accepted, err := invitations.AcceptBoardInvitation(ctx, inv.Token, &bob)
	require.NoError(t, err)
	assert.Equal(t, board.ID, accepted.BoardID)

	var member models.BoardMember
	require.NoError(t, db.Where("board_id = ? AND user_id = ?", board.ID, bob.ID).First(&member).Error)
	assert.Equal(t, models.BoardRoleWrite, member.Role)

	_, err = invitations.AcceptBoardInvitation(ctx, inv.Token, &bob)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBoardInvitation_DeclineAndExpiry(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.User(t, db, "alice")
	bob := testutil.User(t, db, "bob")
	board := testutil.Board(t, db, alice.ID, nil)
	invitations := NewInvitationRepository(db)

	declined, err := invitations.CreateBoardInvitation(ctx, board.ID, alice.ID, bob.Email, models.BoardRoleRead)
	require.NoError(t, err)
	require.NoError(t, invitations.DeclineBoardInvitation(ctx, declined.Token, &bob))

	expired, err := invitations.CreateBoardInvitation(ctx, board.ID, alice.ID, bob.Email, models.BoardRoleRead)
	require.NoError(t, err)
	require.NoError(t, db.Model(expired).Update("expires_at", time.Now().Add(-time.Hour)).Error)

	pending, err := invitations.PendingBoardInvitations(ctx, bob.Email)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = invitations.AcceptBoardInvitation(ctx, expired.Token, &bob)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOrganizationInvitation_Accept(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.User(t, db, "alice")
	bob := testutil.User(t, db, "bob")
	org := testutil.Organization(t, db, alice.ID)
	invitations := NewInvitationRepository(db)

	first, err := invitations.CreateOrganizationInvitation(ctx, org.ID, alice.ID, bob.Email, models.OrgRoleMember)
	require.NoError(t, err)
	second, err := invitations.CreateOrganizationInvitation(ctx, org.ID, alice.ID, bob.Email, models.OrgRoleAdmin)
	require.NoError(t, err)

	pending, err := invitations.PendingOrganizationInvitations(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	_, err = invitations.AcceptOrganizationInvitation(ctx, first.Token, &bob)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = invitations.AcceptOrganizationInvitation(ctx, second.Token, &bob)
	require.NoError(t, err)
	role, err := NewOrganizationRepository(db).MemberRole(ctx, org.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, models.OrgRoleAdmin, *role)
}
