package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyOpenAIAPIKey     = "openai.api_key"
	keyOpenAIBaseURL    = "openai.base_url"
	keyLLMModel         = "llm.model"
	keyEmbedModel       = "embedding.model"
	keyEmbedDims        = "embedding.dimensions"
	keyVectorBackend    = "vector_index.backend"
	keyVectorURL        = "vector_index.url"
	keyVectorAPIKey     = "vector_index.api_key"
	keyVectorCollection = "vector_index.collection"
	keyVectorTimeout    = "vector_index.timeout_seconds"
	keyStoreBackend     = "store.backend"
	keyStorePath        = "store.path"
	keyStoreMongoURI    = "store.mongo_uri"
	keyStoreMongoDB     = "store.mongo_database"
	keyStoreMongoColl   = "store.mongo_collection"
	keyRetrievalTopK    = "retrieval.top_k"
	keyRetrievalTag     = "retrieval.operation_tag"
	keyBudgetModel      = "budget.model"
	keyBudgetTokenLimit = "budget.token_limit"
	keyPlanTTLMinutes   = "plan.ttl_minutes"
	keyIngestRate       = "ingest.rate_per_second"
	keyIngestTimeCodes  = "ingest.time_codes"
	keyServerAddr       = "server.addr"
)

const envOpenAIAPIKey = "OPENAI_API_KEY"

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
	kindVectorBackend
	kindStoreBackend
)

// settingKeys lists every key Set accepts and how its value is parsed.
var settingKeys = map[string]keyKind{
	keyOpenAIAPIKey:     kindString,
	keyOpenAIBaseURL:    kindString,
	keyLLMModel:         kindString,
	keyEmbedModel:       kindString,
	keyEmbedDims:        kindInt,
	keyVectorBackend:    kindVectorBackend,
	keyVectorURL:        kindString,
	keyVectorAPIKey:     kindString,
	keyVectorCollection: kindString,
	keyVectorTimeout:    kindInt,
	keyStoreBackend:     kindStoreBackend,
	keyStorePath:        kindString,
	keyStoreMongoURI:    kindString,
	keyStoreMongoDB:     kindString,
	keyStoreMongoColl:   kindString,
	keyRetrievalTopK:    kindInt,
	keyRetrievalTag:     kindString,
	keyBudgetModel:      kindString,
	keyBudgetTokenLimit: kindInt,
	keyPlanTTLMinutes:   kindInt,
	keyIngestRate:       kindFloat,
	keyIngestTimeCodes:  kindBool,
	keyServerAddr:       kindString,
}

// SettingKeys returns every settable key, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings. The OpenAI key falls back
// to the OPENAI_API_KEY environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	apiKey := s.configStore.GetString(keyOpenAIAPIKey)
	if apiKey == "" {
		apiKey = s.getenv(envOpenAIAPIKey)
	}

	settings := &domain.AppSettings{
		OpenAI: domain.OpenAISettings{
			APIKey:  apiKey,
			BaseURL: s.configStore.GetString(keyOpenAIBaseURL), // No default - empty means api.openai.com
		},
		LLM: domain.LLMSettings{
			Model: s.getString(keyLLMModel, defaults.LLM.Model),
		},
		Embedding: domain.EmbeddingSettings{
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			Dimensions: s.getInt(keyEmbedDims, 0),
		},
		VectorIndex: domain.VectorIndexSettings{
			Backend:    s.getVectorBackend(defaults.VectorIndex.Backend),
			URL:        s.getString(keyVectorURL, defaults.VectorIndex.URL),
			APIKey:     s.configStore.GetString(keyVectorAPIKey),
			Collection: s.getString(keyVectorCollection, defaults.VectorIndex.Collection),
			Timeout:    s.getDuration(keyVectorTimeout, time.Second, defaults.VectorIndex.Timeout),
		},
		Store: domain.StoreSettings{
			Backend:         s.getStoreBackend(defaults.Store.Backend),
			Path:            s.configStore.GetString(keyStorePath),
			MongoURI:        s.configStore.GetString(keyStoreMongoURI),
			MongoDatabase:   s.getString(keyStoreMongoDB, defaults.Store.MongoDatabase),
			MongoCollection: s.getString(keyStoreMongoColl, defaults.Store.MongoCollection),
			Timeout:         defaults.Store.Timeout,
		},
		Retrieval: domain.RetrievalSettings{
			TopK:         s.getInt(keyRetrievalTopK, defaults.Retrieval.TopK),
			OperationTag: s.getString(keyRetrievalTag, defaults.Retrieval.OperationTag),
		},
		Budget: domain.BudgetSettings{
			Model:      s.getString(keyBudgetModel, defaults.Budget.Model),
			TokenLimit: s.getInt(keyBudgetTokenLimit, defaults.Budget.TokenLimit),
		},
		Plan: domain.PlanSettings{
			TTL: s.getDuration(keyPlanTTLMinutes, time.Minute, defaults.Plan.TTL),
		},
		Ingest: domain.IngestSettings{
			RatePerSecond: s.configStore.GetFloat(keyIngestRate),
			TimeCodes:     s.configStore.GetBool(keyIngestTimeCodes),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
	}

	// Dimensions follow the model unless set explicitly.
	if settings.Embedding.Dimensions == 0 {
		settings.Embedding.Dimensions = defaults.Embedding.Dimensions
		if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
			settings.Embedding.Dimensions = d
		}
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyOpenAIBaseURL, settings.OpenAI.BaseURL},
		{keyLLMModel, settings.LLM.Model},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyVectorBackend, settings.VectorIndex.Backend.String()},
		{keyVectorURL, settings.VectorIndex.URL},
		{keyVectorCollection, settings.VectorIndex.Collection},
		{keyVectorTimeout, int(settings.VectorIndex.Timeout / time.Second)},
		{keyStoreBackend, settings.Store.Backend.String()},
		{keyStorePath, settings.Store.Path},
		{keyStoreMongoDB, settings.Store.MongoDatabase},
		{keyStoreMongoColl, settings.Store.MongoCollection},
		{keyRetrievalTopK, settings.Retrieval.TopK},
		{keyRetrievalTag, settings.Retrieval.OperationTag},
		{keyBudgetModel, settings.Budget.Model},
		{keyBudgetTokenLimit, settings.Budget.TokenLimit},
		{keyPlanTTLMinutes, int(settings.Plan.TTL / time.Minute)},
		{keyIngestRate, settings.Ingest.RatePerSecond},
		{keyIngestTimeCodes, settings.Ingest.TimeCodes},
		{keyServerAddr, settings.Server.Addr},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Secrets are only written when present so a save never clears them.
	secrets := map[string]string{
		keyOpenAIAPIKey:  settings.OpenAI.APIKey,
		keyVectorAPIKey:  settings.VectorIndex.APIKey,
		keyStoreMongoURI: settings.Store.MongoURI,
	}
	for key, val := range secrets {
		if val == "" {
			continue
		}
		if err := s.configStore.Set(key, val); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// Set stores a single setting, parsing value by the key's type.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindVectorBackend:
		if !domain.VectorBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid vector backend %q", domain.ErrInvalidInput, value)
		}
		parsed = value
	case kindStoreBackend:
		if !domain.StoreBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid store backend %q", domain.ErrInvalidInput, value)
		}
		parsed = value
	default:
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetAPIKey stores the OpenAI API key.
func (s *SettingsService) SetAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("%w: API key is empty", domain.ErrInvalidInput)
	}
	return s.configStore.Set(keyOpenAIAPIKey, apiKey)
}

// Validate checks that current settings are coherent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.OpenAI.IsConfigured() {
		return fmt.Errorf("OpenAI API key is not configured (set %s or %s)", keyOpenAIAPIKey, envOpenAIAPIKey)
	}
	if !settings.VectorIndex.Backend.IsValid() {
		return fmt.Errorf("invalid vector backend: %s", settings.VectorIndex.Backend)
	}
	if !settings.Store.Backend.IsValid() {
		return fmt.Errorf("invalid store backend: %s", settings.Store.Backend)
	}
	if settings.VectorIndex.Backend == domain.VectorBackendQdrant && settings.VectorIndex.URL == "" {
		return fmt.Errorf("vector backend %q requires %s", settings.VectorIndex.Backend, keyVectorURL)
	}
	if settings.Store.Backend == domain.StoreBackendMongo && settings.Store.MongoURI == "" {
		return fmt.Errorf("store backend %q requires %s", settings.Store.Backend, keyStoreMongoURI)
	}
	if settings.Budget.TokenLimit <= 0 {
		return fmt.Errorf("%s must be positive", keyBudgetTokenLimit)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateOpenAI validates the current OpenAI credentials by pinging the provider.
func (s *SettingsService) ValidateOpenAI() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateOpenAI(settings)
}

// ValidateVectorIndex validates the configured vector index is reachable.
func (s *SettingsService) ValidateVectorIndex() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateVectorIndex(settings)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, unit, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * unit
}

func (s *SettingsService) getVectorBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getStoreBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	backend := domain.StoreBackend(s.configStore.GetString(keyStoreBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
