// Package storage selects the transcript store backend.
package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/castquery/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/castquery/internal/adapters/driven/storage/mongo"
	"github.com/custodia-labs/castquery/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/logger"
)

// CreateTranscriptStore opens the store the settings describe.
func CreateTranscriptStore(ctx context.Context, settings domain.StoreSettings) (driven.TranscriptStore, error) {
	switch settings.Backend {
	case domain.StoreBackendSQLite, "":
		store, err := sqlite.NewStore(settings.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		logger.Debug("Using SQLite transcript store at %s", store.Path())
		return store, nil

	case domain.StoreBackendMongo:
		store, err := mongo.NewStore(ctx, mongo.Config{
			URI:        settings.MongoURI,
			Database:   settings.MongoDatabase,
			Collection: settings.MongoCollection,
			Timeout:    settings.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return store, nil

	case domain.StoreBackendMemory:
		logger.Warn("Using in-memory transcript store; data is lost on exit")
		return memory.NewTranscriptStore(), nil

	default:
		return nil, fmt.Errorf("%w: unsupported store backend: %s", domain.ErrInvalidInput, settings.Backend)
	}
}
