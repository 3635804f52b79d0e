// Package ai provides factory functions for creating the model and retrieval
// adapters from application settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openaiembed "github.com/custodia-labs/castquery/internal/adapters/driven/embedding/openai"
	openaillm "github.com/custodia-labs/castquery/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/castquery/internal/adapters/driven/tokenizer/tiktoken"
	memoryindex "github.com/custodia-labs/castquery/internal/adapters/driven/vectorindex/memory"
	"github.com/custodia-labs/castquery/internal/adapters/driven/vectorindex/qdrant"
	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// fixHint is appended to configuration errors.
const fixHint = "Run 'castquery settings' to fix"

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	LLMService       driven.LLMService
	EmbeddingService driven.EmbeddingService
	VectorIndex      driven.VectorIndex
	Warnings         []string // Non-fatal issues that caused fallback.
	FellBack         bool     // True if semantic retrieval is disabled.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorIndex != nil {
		r.VectorIndex.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

func (r *InitResult) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn("%s", msg)
	r.Warnings = append(r.Warnings, msg)
}

// Initialise creates every AI adapter the settings describe. Only a broken
// LLM configuration is fatal; embedding and vector index problems disable
// semantic retrieval and are reported as warnings. Without an API key no
// LLM is created and the caller decides whether that is acceptable.
func Initialise(ctx context.Context, settings *domain.AppSettings) (*InitResult, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}
	result := &InitResult{}

	llm, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	result.LLMService = llm

	if settings.VectorIndex.Backend == domain.VectorBackendNone {
		result.FellBack = true
		return result, nil
	}

	embedder, err := CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		result.warn("Semantic retrieval disabled: %v", err)
		result.FellBack = true
		return result, nil
	}
	if embedder == nil {
		result.warn("Semantic retrieval disabled: OpenAI API key is not configured")
		result.FellBack = true
		return result, nil
	}

	index, err := CreateAndValidateVectorIndex(ctx, settings, embedder)
	if err != nil {
		embedder.Close()
		result.warn("Semantic retrieval disabled: %v", err)
		result.FellBack = true
		return result, nil
	}

	result.EmbeddingService = embedder
	result.VectorIndex = index
	return result, nil
}

// CreateLLMService creates the OpenAI chat client.
// Returns nil if no API key is configured.
func CreateLLMService(settings *domain.AppSettings) (driven.LLMService, error) {
	if settings == nil || !settings.OpenAI.IsConfigured() {
		return nil, nil
	}
	svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.OpenAI.APIKey,
		BaseURL: settings.OpenAI.BaseURL,
		Model:   settings.LLM.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// CreateEmbeddingService creates the OpenAI embedding client.
// Returns nil if no API key is configured.
func CreateEmbeddingService(settings *domain.AppSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.OpenAI.IsConfigured() {
		return nil, nil
	}

	dimensions := settings.Embedding.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Embedding.Model]
	}

	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.OpenAI.APIKey,
		BaseURL:    settings.OpenAI.BaseURL,
		Model:      settings.Embedding.Model,
		Dimensions: dimensions,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// CreateVectorIndex creates the configured vector index backend.
// Returns nil for VectorBackendNone or when no embedder is available.
func CreateVectorIndex(settings *domain.AppSettings, embedder driven.EmbeddingService) (driven.VectorIndex, error) {
	if settings == nil || embedder == nil {
		return nil, nil
	}

	switch settings.VectorIndex.Backend {
	case domain.VectorBackendNone:
		return nil, nil

	case domain.VectorBackendMemory:
		return memoryindex.NewIndex(embedder, settings.Ingest.TimeCodes), nil

	case domain.VectorBackendQdrant, "":
		client, err := newQdrantClient(settings)
		if err != nil {
			return nil, err
		}
		return qdrant.NewIndex(client, embedder, qdrant.WithTimecodes(settings.Ingest.TimeCodes)), nil

	default:
		return nil, fmt.Errorf("unsupported vector backend: %s", settings.VectorIndex.Backend)
	}
}

// CreateTokenizer loads the tiktoken encoding for model, falling back to an
// approximate count when the encoding cannot be loaded. The first call may
// download the encoding ranks.
func CreateTokenizer(model string) driven.Tokenizer {
	tok, err := tiktoken.New(model)
	if err != nil {
		logger.Warn("Token counts are approximate: %v", err)
		return tiktoken.Approximate{}
	}
	return tok
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.AppSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateVectorIndex creates the vector index, checks it is
// reachable and makes sure its collection exists.
func CreateAndValidateVectorIndex(
	ctx context.Context,
	settings *domain.AppSettings,
	embedder driven.EmbeddingService,
) (driven.VectorIndex, error) {
	if err := ValidateVectorIndexConfig(ctx, settings); err != nil {
		return nil, err
	}

	index, err := CreateVectorIndex(settings, embedder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrVectorIndexUnavailable, err, fixHint)
	}
	if index == nil {
		return nil, errors.New("no vector index configured")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := index.EnsureCollection(ctx, embedder.Dimensions()); err != nil {
		index.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
	}
	return index, nil
}

// ValidateOpenAIConfig checks the OpenAI credentials by listing models.
// This is intended for use in the settings commands to validate credentials on configuration.
func ValidateOpenAIConfig(ctx context.Context, settings *domain.AppSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateVectorIndexConfig checks the configured vector backend is
// reachable. In-memory and disabled backends are always valid.
func ValidateVectorIndexConfig(ctx context.Context, settings *domain.AppSettings) error {
	if settings == nil {
		return nil
	}

	switch settings.VectorIndex.Backend {
	case domain.VectorBackendNone, domain.VectorBackendMemory:
		return nil
	case domain.VectorBackendQdrant, "":
	default:
		return fmt.Errorf("unsupported vector backend: %s", settings.VectorIndex.Backend)
	}

	client, err := newQdrantClient(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
	}
	return nil
}

func newQdrantClient(settings *domain.AppSettings) (*qdrant.Client, error) {
	return qdrant.NewClient(qdrant.ClientConfig{
		URL:        settings.VectorIndex.URL,
		APIKey:     settings.VectorIndex.APIKey,
		Collection: settings.VectorIndex.Collection,
		Timeout:    settings.VectorIndex.Timeout,
	})
}
