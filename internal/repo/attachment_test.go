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

func TestAttachments(t *testing.T) {
	f := newCardFixture(t)
	ctx := context.Background()
	card := testutil.Cards(t, f.db, f.columns[0].ID, "card")[0]
	attachments := NewAttachmentRepository(f.db)

	att := &models.Attachment{CardID: card.ID, UploadedBy: f.user.ID, Filename: "a.txt", ObjectKey: "cards/x/a.txt", Size: 3}
	require.NoError(t, attachments.CreateAttachment(ctx, att))
	assert.NotEqual(t, uuid.Nil, att.ID)

	list, err := attachments.ListAttachments(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = attachments.GetAttachment(ctx, uuid.New(), att.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	deleted, err := attachments.DeleteAttachment(ctx, card.ID, att.ID)
	require.NoError(t, err)
	assert.Equal(t, "cards/x/a.txt", deleted.ObjectKey)

	list, err = attachments.ListAttachments(ctx, card.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
