// Command castquery answers questions about broadcast transcripts.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/castquery/internal/adapters/driven/ai"
	"github.com/custodia-labs/castquery/internal/adapters/driven/config/file"
	"github.com/custodia-labs/castquery/internal/adapters/driving/cli"
	"github.com/custodia-labs/castquery/internal/core/services"
	"github.com/custodia-labs/castquery/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env file is normal.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("Loading .env: %v", err)
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening config: %v\n", err)
		return 1
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	app := &application{settings: settingsService}
	defer app.Close()

	cli.SetSettingsService(settingsService)
	cli.SetServiceLoader(app.Load)

	if err := cli.Execute(context.Background(), version); err != nil {
		return 1
	}
	return 0
}
