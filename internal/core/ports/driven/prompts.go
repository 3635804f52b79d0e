package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible
	// default or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptExtraction instructs the model to return the query's intents,
	// entities, dates and sources as JSON. The template expects %s (today's
	// date, YYYY-MM-DD) followed by %d (current year).
	PromptExtraction = "extraction"

	// PromptAnswerSystem opens the answer prompt. The template expects a
	// %s placeholder for the user query.
	PromptAnswerSystem = "answer_system"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}

// DefaultPrompts returns the built-in template for every well-known prompt.
// File-backed stores seed user-editable copies from these.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptExtraction: `You are a smart assistant for a media monitoring service. Analyze the user query and extract:

- intents (list of strings, e.g. "summary", "emotion analysis", "keywords", "alerts", "mentions")
- entities (list of objects with "entity" and "type")
- dates (list of objects with "date", "type", and optional "startTime" and "endTime" in 24-hour format)
- sources (list of objects with "source" and "type"; use type "channel" for channel numbers)

Today is %s. Return dates in yyyy-MM-dd format and times in HH:mm:ss (24-hour clock).
If the user did not specify a year, assume the current year is %d.
For date ranges, include "startDate" and "endDate" and set "type" to "range".
For time ranges, include "startTime" and "endTime".

Respond only with valid JSON. Do not include any explanation or comments.`,

		PromptAnswerSystem: `You are an expert assistant that analyzes media data.

--- USER QUERY ---
%s`,
	}
}
