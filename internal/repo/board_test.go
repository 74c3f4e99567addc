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

func TestCreateBoard_CreatorIsOwner(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.User(t, db, "alice")
	boards := NewBoardRepository(db)

	id, err := boards.CreateBoard(ctx, &models.Board{Title: "Roadmap", UserID: user.ID})
	require.NoError(t, err)

	var member models.BoardMember
	require.NoError(t, db.Where("board_id = ? AND user_id = ?", id, user.ID).First(&member).Error)
	assert.Equal(t, models.BoardRoleOwner, member.Role)
}

func TestGetBoardDetails_OrdersByPosition(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.User(t, db, "alice")
	board := testutil.Board(t, db, user.ID, nil)
	cols := testutil.Columns(t, db, board.ID, "Todo", "Doing", "Done")
	testutil.Cards(t, db, cols[0].ID, "a", "b")

	err := NewColumnRepository(db).MoveColumn(ctx, board.ID, cols[2].ID, 2, 0)
	require.NoError(t, err)

	details, err := NewBoardRepository(db).GetBoardDetails(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, details.Columns, 3)
	assert.Equal(t, "Done", details.Columns[0].Title)
	assert.Equal(t, "Todo", details.Columns[1].Title)
	assert.Equal(t, []string{"a", "b"}, []string{details.Columns[1].Cards[0].Title, details.Columns[1].Cards[1].Title})
	assert.NotNil(t, details.Columns[0].Cards)
	assert.Empty(t, details.Columns[0].Cards)
}

func TestGetBoardsForUser_DirectAndInherited(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.User(t, db, "alice")
	bob := testutil.User(t, db, "bob")
	org := testutil.Organization(t, db, alice.ID)
	testutil.OrgMember(t, db, org.ID, bob.ID, models.OrgRoleMember)

	personal := testutil.Board(t, db, alice.ID, nil)
	shared := testutil.Board(t, db, alice.ID, &org.ID)
	testutil.Columns(t, db, shared.ID, "A", "B")
	readOnly := testutil.Board(t, db, alice.ID, &org.ID)
	testutil.BoardMember(t, db, readOnly.ID, bob.ID, models.BoardRoleRead)

	summaries, err := NewBoardRepository(db).GetBoardsForUser(ctx, bob.ID)
	require.NoError(t, err)

	roles := map[uuid.UUID]models.BoardRole{}
	counts := map[uuid.UUID]int64{}
	for _, s := range summaries {
		roles[s.ID] = s.Role
		counts[s.ID] = s.ColumnCount
	}
	assert.NotContains(t, roles, personal.ID)
	assert.Equal(t, models.BoardRoleWrite, roles[shared.ID])
	assert.Equal(t, int64(2), counts[shared.ID])
	// direct membership wins over the organization role
	assert.Equal(t, models.BoardRoleRead, roles[readOnly.ID])
}

func TestGetBoardsForUser_None(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.User(t, db, "alice")

	summaries, err := NewBoardRepository(db).GetBoardsForUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}

func TestRenameBoard_NotFound(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := NewBoardRepository(db).RenameBoard(context.Background(), uuid.New(), "x")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteBoard_Cascades(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.User(t, db, "alice")
	board := testutil.Board(t, db, user.ID, nil)
	other := testutil.Board(t, db, user.ID, nil)
	cols := testutil.Columns(t, db, board.ID, "A")
	cards := testutil.Cards(t, db, cols[0].ID, "one", "two")
	otherCols := testutil.Columns(t, db, other.ID, "Z")
	testutil.Cards(t, db, otherCols[0].ID, "kept")

	require.NoError(t, db.Create(&models.Attachment{
		ID: uuid.New(), CardID: cards[0].ID, UploadedBy: user.ID, Filename: "a.txt", ObjectKey: "cards/a.txt",
	}).Error)
	cardRepo := NewCardRepository(db)
	checklist, err := cardRepo.AddChecklist(ctx, cards[1].ID, "steps")
	require.NoError(t, err)
	require.NoError(t, cardRepo.AddChecklistItem(ctx, cards[1].ID, &models.ChecklistItem{ChecklistID: checklist.ID, Text: "do"}))

	keys, err := NewBoardRepository(db).DeleteBoard(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cards/a.txt"}, keys)

	for _, model := range []interface{}{&models.Board{}, &models.Column{}, &models.Card{}, &models.BoardMember{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Equal(t, int64(1), n, "%T", model)
	}
	var items int64
	require.NoError(t, db.Model(&models.ChecklistItem{}).Count(&items).Error)
	assert.Zero(t, items)

	_, err = NewBoardRepository(db).DeleteBoard(ctx, board.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
