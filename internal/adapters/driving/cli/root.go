// Package cli provides the castquery command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/castquery/internal/core/ports/driving"
	"github.com/custodia-labs/castquery/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services wired by the composition root.
var (
	queryService    driving.QueryService
	ingestService   driving.IngestService
	settingsService driving.SettingsService
	serviceLoader   ServiceLoader
)

// ServiceLoader builds the query and ingest services. It runs on first use
// so commands that only touch settings never dial the model or the stores.
type ServiceLoader func(ctx context.Context) (driving.QueryService, driving.IngestService, error)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "castquery",
	Short: "Ask questions about broadcast transcripts",
	Long: `castquery answers natural-language questions about time-stamped
broadcast transcripts. Questions are classified into intents, their dates are
resolved to a time window, and matching transcript lines are retrieved from
the transcript store and the vector index before an answer is generated.

Run 'castquery settings' to configure the OpenAI key and the backends.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetSettingsService sets the settings service used by the commands.
func SetSettingsService(svc driving.SettingsService) {
	settingsService = svc
}

// SetServiceLoader sets the loader for the query and ingest services.
func SetServiceLoader(loader ServiceLoader) {
	serviceLoader = loader
}

// Execute runs the root command with the given build version.
func Execute(ctx context.Context, buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.ExecuteContext(ctx)
}

// loadServices resolves the query and ingest services on first use.
func loadServices(ctx context.Context) error {
	if queryService != nil {
		return nil
	}
	if serviceLoader == nil {
		return errors.New("query service not configured")
	}

	query, ingest, err := serviceLoader(ctx)
	if err != nil {
		return fmt.Errorf("initialising services: %w", err)
	}
	queryService = query
	ingestService = ingest
	return nil
}
