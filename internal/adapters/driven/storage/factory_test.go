package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/castquery/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/castquery/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/castquery/internal/core/domain"
)

func TestCreateTranscriptStore(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "jobs.db")
		store, err := CreateTranscriptStore(ctx, domain.StoreSettings{
			Backend: domain.StoreBackendSQLite,
			Path:    path,
		})
		require.NoError(t, err)
		defer store.Close()

		require.IsType(t, &sqlite.Store{}, store)
		assert.Equal(t, path, store.(*sqlite.Store).Path())
	})

	t.Run("memory", func(t *testing.T) {
		store, err := CreateTranscriptStore(ctx, domain.StoreSettings{Backend: domain.StoreBackendMemory})
		require.NoError(t, err)
		assert.IsType(t, &memory.TranscriptStore{}, store)
	})

	t.Run("mongo without URI", func(t *testing.T) {
		_, err := CreateTranscriptStore(ctx, domain.StoreSettings{Backend: domain.StoreBackendMongo})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := CreateTranscriptStore(ctx, domain.StoreSettings{Backend: "postgres"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
