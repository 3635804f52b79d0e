package driven

import "github.com/custodia-labs/castquery/internal/core/domain"

// AIConfigValidator validates provider configurations by testing
// connectivity to the underlying services.
type AIConfigValidator interface {
	// ValidateOpenAI pings the models endpoint with the given credentials.
	// Returns nil if the configuration is valid or not configured.
	ValidateOpenAI(settings *domain.AppSettings) error

	// ValidateVectorIndex checks the configured vector backend is reachable.
	ValidateVectorIndex(settings *domain.AppSettings) error
}
