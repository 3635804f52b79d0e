package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/castquery/internal/core/ports/driving"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Load transcript job results",
	Long: `Loads job results from JSON files into the transcript store and
indexes their segments in the vector index. Each file holds one job result
or an array of them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest job result files as they appear",
	Long: `Watches a directory and ingests JSON job result files when they are
created or modified. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Vector index commands",
}

var indexInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the vector collection",
	Long:  `Creates the vector index collection and its payload indexes if they do not exist.`,
	Args:  cobra.NoArgs,
	RunE:  runIndexInit,
}

func init() {
	indexCmd.AddCommand(indexInitCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(indexCmd)
}

func requireIngestService(cmd *cobra.Command) error {
	if err := loadServices(cmd.Context()); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requireIngestService(cmd); err != nil {
		return err
	}

	var total driving.IngestReport
	var failed int
	for _, path := range args {
		report, err := ingestService.IngestFile(cmd.Context(), path)
		total.Add(report)
		if err != nil {
			failed++
			cmd.Printf("%s %s: %v\n", styles.Error.Render("FAILED"), path, err)
			continue
		}
		cmd.Printf("%s %s (%d jobs, %d points)\n", styles.Success.Render("OK"), path, report.Jobs, report.Points)
	}

	cmd.Println()
	cmd.Printf("Ingested %d jobs, indexed %d points", total.Jobs, total.Points)
	if total.IndexFailures > 0 {
		cmd.Printf(", %d jobs could not be indexed", total.IndexFailures)
	}
	cmd.Println()

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireIngestService(cmd); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for job result files. Press Ctrl+C to stop.\n", args[0])
	if err := ingestService.Watch(ctx, args[0]); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

func runIndexInit(cmd *cobra.Command, _ []string) error {
	if err := requireIngestService(cmd); err != nil {
		return err
	}
	if err := ingestService.EnsureIndex(cmd.Context()); err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	cmd.Println("Vector index is ready.")
	return nil
}
