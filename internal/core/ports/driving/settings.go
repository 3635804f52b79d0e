package driving

import "github.com/custodia-labs/castquery/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, including environment overrides.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set stores a single setting by its dotted key.
	Set(key, value string) error

	// SetAPIKey stores the OpenAI API key.
	SetAPIKey(apiKey string) error

	// Validate checks that current settings are coherent.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateOpenAI checks the configured OpenAI credentials by pinging the provider.
	ValidateOpenAI() error

	// ValidateVectorIndex checks the configured vector index is reachable.
	ValidateVectorIndex() error
}
