package cli

import (
	"context"
	"testing"

	"epitrello-backend/internal/config"
	"epitrello-backend/internal/libraries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "epitrello", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"serve", "migrate"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	port := serve.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "", port.DefValue)

	migrate := serve.Flags().Lookup("migrate")
	require.NotNil(t, migrate)
	assert.Equal(t, "false", migrate.DefValue)
}

func TestNewObjectStore_LocalWithoutBucket(t *testing.T) {
	cfg := &config.Config{AttachmentDir: t.TempDir()}

	store, err := newObjectStore(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &libraries.LocalStore{}, store)
}
