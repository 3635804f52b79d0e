// Package mcp provides an MCP (Model Context Protocol) server adapter for castquery.
// It lets AI assistants ask questions about broadcast transcripts and inspect
// the retrieval plans behind the answers.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// toolError appends the raw model payload of a failed extraction so the
// client sees what the model returned.
func toolError(err error) error {
	raw, ok := domain.RawExtraction(err)
	if !ok {
		return err
	}
	return fmt.Errorf("%w\nmodel response: %s", err, raw)
}
