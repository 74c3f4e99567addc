package libraries

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	key := AttachmentKey("card", "att", "../notes.txt")
	assert.Equal(t, "cards/card/att-notes.txt", key)

	require.NoError(t, store.Put(ctx, key, strings.NewReader("hello"), "text/plain"))
	r, err := store.Get(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "hello", string(body))

	require.NoError(t, store.Delete(ctx, key))
	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.Error(t, err)
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	err = store.Put(context.Background(), "../../etc/passwd", strings.NewReader("x"), "")
	assert.Error(t, err)
}
