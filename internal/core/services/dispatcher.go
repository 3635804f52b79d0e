package services

import (
	"strings"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

// DispatchResult is a generated answer labelled with its intent.
type DispatchResult struct {
	Intent domain.Intent
	Text   string
}

// Dispatch labels the raw model output with the primary (first) intent.
// No intents, or an unknown first intent, is labelled unrecognized.
func Dispatch(intents []string, raw string) DispatchResult {
	intent := domain.IntentUnrecognized
	if len(intents) > 0 {
		intent = domain.ParseIntent(intents[0])
	}
	return DispatchResult{
		Intent: intent,
		Text:   intent.Label() + " " + strings.TrimSpace(raw),
	}
}
