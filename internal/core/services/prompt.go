package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/logger"
)

// Ensure PromptComposer accepts a prompt store.
var _ driven.PromptStoreAware = (*PromptComposer)(nil)

// NoRelevantDataMessage is the answer given when retrieval finds nothing.
const NoRelevantDataMessage = "I couldn't find any relevant data for your query. " +
	"Please try adjusting the time range or channels."

// TooManyTokensMessage is the answer given when the prompt exceeds the
// token budget.
func TooManyTokensMessage(count int) string {
	return fmt.Sprintf("The query is too large to process (%d tokens). "+
		"Please reduce the time range, number of channels, or amount of input data and try again.", count)
}

const transcriptsHeader = "--- TRANSCRIPTS ---"

// PromptComposer renders the system prompt and data block sent to the
// generation model.
type PromptComposer struct {
	prompts driven.PromptStore
}

// NewPromptComposer creates a composer using the built-in templates.
func NewPromptComposer() *PromptComposer {
	return &PromptComposer{}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (c *PromptComposer) SetPromptStore(store driven.PromptStore) {
	c.prompts = store
}

// Compose returns the system prompt for query and the data block listing
// the plan's transcript lines. A plan without lines yields an empty block.
func (c *PromptComposer) Compose(query string, plan *domain.QueryPlan) (systemPrompt, data string) {
	systemPrompt = fmt.Sprintf(loadPrompt(c.prompts, driven.PromptAnswerSystem), query)

	if !plan.HasData() {
		return systemPrompt, ""
	}

	var sb strings.Builder
	sb.WriteString(transcriptsHeader)
	sb.WriteString("\n")
	for _, line := range plan.TranscriptLines {
		sb.WriteString("- ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return systemPrompt, sb.String()
}

// loadPrompt returns the named template from store, or the built-in
// default when the store is nil or fails.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		tmpl, err := store.Load(name)
		if err == nil && tmpl != "" {
			return tmpl
		}
		if err != nil {
			logger.Warn("Using built-in %s prompt: %v", name, err)
		}
	}
	return driven.DefaultPrompts()[name]
}
