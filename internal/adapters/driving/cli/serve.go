package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/castquery/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/castquery/internal/adapters/driving/mcp"
)

var (
	serveAddr string
	serveMCP  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON HTTP API.

Endpoints:
  POST /api/query/ask   answer a question
  POST /api/query/plan  show the retrieval plan for a question
  GET  /healthz         liveness check
  /mcp                  MCP over streamable HTTP (unless --mcp=false)

The listen address defaults to the server.addr setting.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", true, "mount the MCP server under /mcp")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := loadServices(cmd.Context()); err != nil {
		return err
	}
	if queryService == nil {
		return errors.New("query service not configured")
	}

	addr, err := resolveServeAddr()
	if err != nil {
		return err
	}

	var opts []httpapi.Option
	if serveMCP {
		mcpServer, err := mcp.NewServer(&mcp.Ports{
			Query:    queryService,
			Ingest:   ingestService,
			Settings: settingsService,
		})
		if err != nil {
			return err
		}
		opts = append(opts, httpapi.WithMCPHandler(mcpServer.Handler()))
	}

	server, err := httpapi.NewServer(queryService, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on %s\n", addr)
	return server.Run(ctx, addr)
}

func resolveServeAddr() (string, error) {
	if serveAddr != "" {
		return serveAddr, nil
	}
	if settingsService == nil {
		return "", errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.Server.Addr, nil
}
