package main

import (
	"context"
	"fmt"

	"github.com/custodia-labs/castquery/internal/adapters/driven/ai"
	"github.com/custodia-labs/castquery/internal/adapters/driven/cache/memory"
	"github.com/custodia-labs/castquery/internal/adapters/driven/config/file"
	"github.com/custodia-labs/castquery/internal/adapters/driven/filewatcher"
	"github.com/custodia-labs/castquery/internal/adapters/driven/storage"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/core/ports/driving"
	"github.com/custodia-labs/castquery/internal/core/services"
	"github.com/custodia-labs/castquery/internal/logger"
)

// application owns the adapters built for the query and ingest services.
type application struct {
	settings driving.SettingsService

	store   driven.TranscriptStore
	ai      *ai.InitResult
	watcher *filewatcher.Watcher
}

// Load builds the transcript store, AI adapters and services from the
// current settings.
func (a *application) Load(ctx context.Context) (driving.QueryService, driving.IngestService, error) {
	settings, err := a.settings.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}

	store, err := storage.CreateTranscriptStore(ctx, settings.Store)
	if err != nil {
		return nil, nil, err
	}
	a.store = store

	result, err := ai.Initialise(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	a.ai = result
	if result.LLMService == nil {
		logger.Warn("OpenAI API key is not configured; questions cannot be answered. Run 'castquery settings key'")
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return nil, nil, fmt.Errorf("opening prompts: %w", err)
	}

	query := services.NewQueryService(
		result.LLMService,
		store,
		result.VectorIndex,
		result.EmbeddingService,
		ai.CreateTokenizer(settings.Budget.Model),
		memory.NewPlanCache(),
		services.QueryOptions{
			TopK:         settings.Retrieval.TopK,
			OperationTag: settings.Retrieval.OperationTag,
			TokenLimit:   settings.Budget.TokenLimit,
			PlanTTL:      settings.Plan.TTL,
		},
	)
	query.SetPromptStore(prompts)

	var watcher driven.FileWatcher
	if w, err := filewatcher.New(); err != nil {
		logger.Warn("File watching disabled: %v", err)
	} else {
		a.watcher = w
		watcher = w
	}

	ingest := services.NewIngestService(
		store,
		result.VectorIndex,
		result.EmbeddingService,
		watcher,
		settings.Ingest.RatePerSecond,
	)

	return query, ingest, nil
}

// Close releases everything Load opened.
func (a *application) Close() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			logger.Debug("Closing file watcher: %v", err)
		}
	}
	if a.ai != nil {
		a.ai.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Debug("Closing transcript store: %v", err)
		}
	}
}
