package repo

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"epitrello-backend/internal/models"
	"epitrello-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComments(t *testing.T) {
	f := newCardFixture(t)
	ctx := context.Background()
	card := testutil.Cards(t, f.db, f.columns[0].ID, "card")[0]
	comments := NewCommentRepository(f.db)

	first := &models.Comment{CardID: card.ID, UserID: f.user.ID, Body: "first"}
	require.NoError(t, comments.AddComment(ctx, first))
	time.Sleep(5 * time.Millisecond)
	second := &models.Comment{CardID: card.ID, UserID: f.user.ID, Body: "second"}
	require.NoError(t, comments.AddComment(ctx, second))

	list, err := comments.ListComments(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Body)
	assert.Equal(t, "alice", list[0].Username)

	assert.ErrorIs(t, comments.DeleteComment(ctx, uuid.New(), first.ID), models.ErrNotFound)
	require.NoError(t, comments.DeleteComment(ctx, card.ID, first.ID))
	_, err = comments.GetComment(ctx, first.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestActivity(t *testing.T) {
	f := newCardFixture(t)
	ctx := context.Background()
	card := testutil.Cards(t, f.db, f.columns[0].ID, "card")[0]
	comments := NewCommentRepository(f.db)

	require.NoError(t, comments.LogActivity(ctx, card.ID, f.user.ID, "created", map[string]interface{}{"title": "card"}))

	activity, err := comments.ListActivity(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, "created", activity[0].Action)
	assert.Equal(t, "alice", activity[0].UserName)

	var details map[string]string
	require.NoError(t, json.Unmarshal(activity[0].Details, &details))
	assert.Equal(t, "card", details["title"])
}
