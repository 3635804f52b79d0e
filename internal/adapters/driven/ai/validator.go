package ai

import (
	"context"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateOpenAI validates the OpenAI credentials by pinging the provider.
func (v *ConfigValidator) ValidateOpenAI(settings *domain.AppSettings) error {
	return ValidateOpenAIConfig(context.Background(), settings)
}

// ValidateVectorIndex validates the configured vector index is reachable.
func (v *ConfigValidator) ValidateVectorIndex(settings *domain.AppSettings) error {
	return ValidateVectorIndexConfig(context.Background(), settings)
}
