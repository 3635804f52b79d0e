package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Extraction and answer generation are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Semantic retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrStoreUnavailable indicates the transcript store could not be opened.
	ErrStoreUnavailable = errors.New("transcript store unavailable")

	// Pipeline Errors.

	// ErrRetrievalDegraded marks a semantic retrieval that fell back to the
	// structural path. It is logged and reported as a flag, never returned
	// to callers of the query service.
	ErrRetrievalDegraded = errors.New("retrieval degraded to structural")

	// ErrNoRelevantData indicates retrieval produced no transcript lines.
	// Callers turn it into a friendly notice rather than a failure.
	ErrNoRelevantData = errors.New("no relevant data")

	// ErrUpstreamUnavailable indicates the transcript store, vector index or
	// generation model could not be reached after the retry budget.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ExtractionParseError is returned when the extraction model's answer is not
// the JSON document it was asked for. Raw holds the payload for diagnosis.
type ExtractionParseError struct {
	Raw string
	Err error
}

func (e *ExtractionParseError) Error() string {
	if e.Err == nil {
		return "malformed extraction"
	}
	return fmt.Sprintf("malformed extraction: %v", e.Err)
}

func (e *ExtractionParseError) Unwrap() error {
	return e.Err
}

// RawExtraction returns the model payload carried by an ExtractionParseError
// anywhere in err's chain.
func RawExtraction(err error) (string, bool) {
	var perr *ExtractionParseError
	if !errors.As(err, &perr) {
		return "", false
	}
	return perr.Raw, true
}

// TooManyTokensError is returned by the budget guard when the assembled
// prompt exceeds the model's context limit.
type TooManyTokensError struct {
	Count int
	Limit int
}

func (e *TooManyTokensError) Error() string {
	return fmt.Sprintf("too many tokens: %d exceeds limit %d", e.Count, e.Limit)
}
