package domain

import "time"

const unknownDescription = "Unknown"

// VectorBackend selects the vector index implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendQdrant is a Qdrant server reached over REST.
	VectorBackendQdrant VectorBackend = "qdrant"

	// VectorBackendMemory is an in-process index, lost on exit.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendNone disables semantic retrieval.
	VectorBackendNone VectorBackend = "none"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendQdrant, VectorBackendMemory, VectorBackendNone:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendQdrant:
		return "Qdrant (REST server)"
	case VectorBackendMemory:
		return "In-memory (not persisted)"
	case VectorBackendNone:
		return "Disabled (structural retrieval only)"
	default:
		return unknownDescription
	}
}

// StoreBackend selects the transcript store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendSQLite is a local SQLite database file.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendMongo is a MongoDB collection of job results.
	StoreBackendMongo StoreBackend = "mongo"

	// StoreBackendMemory keeps transcripts in process memory.
	StoreBackendMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendMongo, StoreBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreBackendSQLite:
		return "SQLite (local file)"
	case StoreBackendMongo:
		return "MongoDB"
	case StoreBackendMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// OpenAISettings holds credentials shared by the LLM and embedding clients.
type OpenAISettings struct {
	// APIKey is the OpenAI API key.
	APIKey string

	// BaseURL overrides the API endpoint for compatible servers.
	BaseURL string
}

// IsConfigured returns true if an API key is present.
func (o OpenAISettings) IsConfigured() bool {
	return o.APIKey != ""
}

// LLMSettings holds the generation and extraction model configuration.
type LLMSettings struct {
	// Model is the chat completion model name.
	Model string
}

// EmbeddingSettings holds embedding model configuration.
type EmbeddingSettings struct {
	// Model is the embedding model name.
	Model string

	// Dimensions is the embedding vector size.
	Dimensions int
}

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	// Backend selects the implementation.
	Backend VectorBackend

	// URL is the Qdrant base URL.
	URL string

	// APIKey authenticates against Qdrant Cloud.
	APIKey string

	// Collection is the collection holding transcript points.
	Collection string

	// Timeout bounds every call to the index.
	Timeout time.Duration
}

// StoreSettings holds transcript store configuration.
type StoreSettings struct {
	// Backend selects the implementation.
	Backend StoreBackend

	// Path is the SQLite database file.
	Path string

	// MongoURI is the MongoDB connection string.
	MongoURI string

	// MongoDatabase is the database holding job results.
	MongoDatabase string

	// MongoCollection is the job results collection.
	MongoCollection string

	// Timeout bounds every store call.
	Timeout time.Duration
}

// RetrievalSettings tunes the hybrid retriever.
type RetrievalSettings struct {
	// TopK is the number of vector candidates requested.
	TopK int

	// OperationTag is the job operation retrieved for questions.
	OperationTag string
}

// BudgetSettings configures the token budget guard.
type BudgetSettings struct {
	// Model selects the tokenizer encoding.
	Model string

	// TokenLimit is the largest prompt allowed through to generation.
	TokenLimit int
}

// PlanSettings configures the plan cache.
type PlanSettings struct {
	// TTL is how long an assembled plan may be served from cache.
	TTL time.Duration
}

// IngestSettings configures transcript ingestion.
type IngestSettings struct {
	// RatePerSecond throttles job ingestion; zero disables throttling.
	RatePerSecond float64

	// TimeCodes prefixes embedded text with elapsed-second ranges.
	TimeCodes bool
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	OpenAI      OpenAISettings
	LLM         LLMSettings
	Embedding   EmbeddingSettings
	VectorIndex VectorIndexSettings
	Store       StoreSettings
	Retrieval   RetrievalSettings
	Budget      BudgetSettings
	Plan        PlanSettings
	Ingest      IngestSettings
	Server      ServerSettings
}

// Default values used when no configuration is present.
const (
	DefaultLLMModel        = "gpt-4o-mini"
	DefaultEmbeddingModel  = "text-embedding-3-small"
	DefaultEmbeddingDims   = 1536
	DefaultQdrantURL       = "http://localhost:6333"
	DefaultCollection      = "transcripts"
	DefaultCallTimeout     = 30 * time.Second
	DefaultMongoDatabase   = "ActusIntegration"
	DefaultMongoCollection = "intelligence_aijob_results"
	DefaultTopK            = 50
	DefaultBudgetModel     = "gpt-4-turbo"
	DefaultTokenLimit      = 128000
	DefaultServerAddr      = ":8080"
)

// DefaultAppSettings returns settings with sensible defaults.
// The OpenAI key is left empty; it must come from config or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{Model: DefaultLLMModel},
		Embedding: EmbeddingSettings{
			Model:      DefaultEmbeddingModel,
			Dimensions: DefaultEmbeddingDims,
		},
		VectorIndex: VectorIndexSettings{
			Backend:    VectorBackendQdrant,
			URL:        DefaultQdrantURL,
			Collection: DefaultCollection,
			Timeout:    DefaultCallTimeout,
		},
		Store: StoreSettings{
			Backend:         StoreBackendSQLite,
			MongoDatabase:   DefaultMongoDatabase,
			MongoCollection: DefaultMongoCollection,
			Timeout:         DefaultCallTimeout,
		},
		Retrieval: RetrievalSettings{
			TopK:         DefaultTopK,
			OperationTag: OperationTranscription,
		},
		Budget: BudgetSettings{
			Model:      DefaultBudgetModel,
			TokenLimit: DefaultTokenLimit,
		},
		Plan:   PlanSettings{TTL: DefaultPlanTTL},
		Server: ServerSettings{Addr: DefaultServerAddr},
	}
}

// AllVectorBackends returns every vector backend.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{VectorBackendQdrant, VectorBackendMemory, VectorBackendNone}
}

// AllStoreBackends returns every store backend.
func AllStoreBackends() []StoreBackend {
	return []StoreBackend{StoreBackendSQLite, StoreBackendMongo, StoreBackendMemory}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// MaskSecret hides all but the first and last four characters of a secret.
// Short secrets are fully masked.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
