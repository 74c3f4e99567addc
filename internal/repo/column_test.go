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

func TestCreateColumn_Appends(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.User(t, db, "alice")
	board := testutil.Board(t, db, user.ID, nil)
	columns := NewColumnRepository(db)

	for i, title := range []string{"Todo", "Doing", "Done"} {
		col, err := columns.CreateColumn(ctx, board.ID, title)
		require.NoError(t, err)
		assert.Equal(t, i, col.Position)
	}
	assert.Equal(t, []string{"Todo", "Doing", "Done"}, testutil.ColumnOrder(t, db, board.ID))
}

func TestCreateColumn_UnknownBoard(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := NewColumnRepository(db).CreateColumn(context.Background(), uuid.New(), "x")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteColumn_CompactsAndCascades(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.User(t, db, "alice")
	board := testutil.Board(t, db, user.ID, nil)
	cols := testutil.Columns(t, db, board.ID, "A", "B", "C", "D")
	testutil.Cards(t, db, cols[1].ID, "x", "y")

	_, err := NewColumnRepository(db).DeleteColumn(ctx, cols[1].ID)
	require.NoError(t, err)

	var remaining []models.Column
	require.NoError(t, db.Where("board_id = ?", board.ID).Order("position").Find(&remaining).Error)
	require.Len(t, remaining, 3)
	for i, want := range []string{"A", "C", "D"} {
		assert.Equal(t, want, remaining[i].Title)
		assert.Equal(t, i, remaining[i].Position)
	}
	var cards int64
	require.NoError(t, db.Model(&models.Card{}).Where("column_id = ?", cols[1].ID).Count(&cards).Error)
	assert.Zero(t, cards)

	_, err = NewColumnRepository(db).DeleteColumn(ctx, cols[1].ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMoveColumn(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.User(t, db, "alice")
	board := testutil.Board(t, db, user.ID, nil)
	cols := testutil.Columns(t, db, board.ID, "A", "B", "C")
	columns := NewColumnRepository(db)

	require.NoError(t, columns.MoveColumn(ctx, board.ID, cols[0].ID, 0, 2))
	assert.Equal(t, []string{"B", "C", "A"}, testutil.ColumnOrder(t, db, board.ID))

	err := columns.MoveColumn(ctx, board.ID, cols[0].ID, 0, 1)
	assert.ErrorIs(t, err, models.ErrStalePosition)

	err = columns.MoveColumn(ctx, board.ID, cols[0].ID, 2, 3)
	assert.ErrorIs(t, err, models.ErrInvalidPosition)
	assert.Equal(t, []string{"B", "C", "A"}, testutil.ColumnOrder(t, db, board.ID))
}

func TestRenameColumn(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.User(t, db, "alice")
	board := testutil.Board(t, db, user.ID, nil)
	cols := testutil.Columns(t, db, board.ID, "A")

	col, err := NewColumnRepository(db).RenameColumn(ctx, cols[0].ID, "Backlog")
	require.NoError(t, err)
	assert.Equal(t, "Backlog", col.Title)
	assert.Equal(t, 0, col.Position)
}

func TestRepairPositions(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.User(t, db, "alice")
	board := testutil.Board(t, db, user.ID, nil)
	cols := testutil.Columns(t, db, board.ID, "A", "B")
	cards := testutil.Cards(t, db, cols[0].ID, "x", "y", "z")

	require.NoError(t, db.Model(&models.Column{}).Where("id = ?", cols[1].ID).Update("position", 7).Error)
	require.NoError(t, db.Model(&models.Card{}).Where("id = ?", cards[0].ID).Update("position", 5).Error)

	require.NoError(t, NewColumnRepository(db).RepairPositions(ctx))

	var col models.Column
	require.NoError(t, db.First(&col, "id = ?", cols[1].ID).Error)
	assert.Equal(t, 1, col.Position)
	assert.Equal(t, []string{"y", "z", "x"}, testutil.CardOrder(t, db, cols[0].ID))
}
