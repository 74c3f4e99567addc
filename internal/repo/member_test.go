package repo

import (
	"context"
	"testing"

	"epitrello-backend/internal/models"
	"epitrello-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardMembers(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.User(t, db, "alice")
	bob := testutil.User(t, db, "bob")
	board := testutil.Board(t, db, alice.ID, nil)
	members := NewMemberRepository(db)

	require.NoError(t, members.AddBoardMember(ctx, board.ID, bob.ID, models.BoardRoleRead))
	assert.ErrorIs(t, members.AddBoardMember(ctx, board.ID, bob.ID, models.BoardRoleWrite), models.ErrConflict)

	previous, err := members.UpdateBoardMemberRole(ctx, board.ID, bob.ID, models.BoardRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.BoardRoleRead, previous)

	_, err = members.UpdateBoardMemberRole(ctx, board.ID, alice.ID, models.BoardRoleRead)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.ErrorIs(t, members.RemoveBoardMember(ctx, board.ID, alice.ID), models.ErrInvalidInput)

	require.NoError(t, members.RemoveBoardMember(ctx, board.ID, bob.ID))
	assert.ErrorIs(t, members.RemoveBoardMember(ctx, board.ID, bob.ID), models.ErrNotFound)
	_, err = members.UpdateBoardMemberRole(ctx, board.ID, uuid.New(), models.BoardRoleRead)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
