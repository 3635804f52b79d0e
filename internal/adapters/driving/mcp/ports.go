package mcp

import (
	"github.com/custodia-labs/castquery/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions and builds plans.
	Query driving.QueryService

	// Ingest loads transcript files. Optional; the ingest tool is only
	// registered when set.
	Ingest driving.IngestService

	// Settings exposes the active configuration as a resource. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
