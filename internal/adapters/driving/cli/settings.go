package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the OpenAI key, models, vector index, transcript
store and retrieval options.

Use subcommands to change single values or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key, for example:

  castquery settings set vector_index.backend memory
  castquery settings set store.backend mongo
  castquery settings set store.mongo_uri mongodb://localhost:27017
  castquery settings set retrieval.top_k 100
  castquery settings set plan.ttl_minutes 30

Every key can also be set through an environment variable: upper-case the
key, replace dots with underscores and prefix CASTQUERY_, as in
CASTQUERY_VECTOR_INDEX_URL.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Set the OpenAI API key",
	Long:  `Prompts for the OpenAI API key, stores it and checks it against the API.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsKey,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the OpenAI key and vector index",
	Args:  cobra.NoArgs,
	RunE:  runSettingsValidate,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the key and backends step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeyCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(styles.Title.Render("Current Settings"))
	cmd.Println()

	cmd.Println(styles.Section.Render("[OpenAI]"))
	if settings.OpenAI.IsConfigured() {
		cmd.Printf("  API Key: %s\n", domain.MaskSecret(settings.OpenAI.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	if settings.OpenAI.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.OpenAI.BaseURL)
	}
	cmd.Printf("  Chat Model: %s\n", settings.LLM.Model)
	cmd.Printf("  Embedding Model: %s (%d dimensions)\n", settings.Embedding.Model, settings.Embedding.Dimensions)
	cmd.Println()

	cmd.Println(styles.Section.Render("[Vector Index]"))
	cmd.Printf("  Backend: %s\n", settings.VectorIndex.Backend.Description())
	if settings.VectorIndex.Backend == domain.VectorBackendQdrant {
		cmd.Printf("  URL: %s\n", settings.VectorIndex.URL)
		cmd.Printf("  Collection: %s\n", settings.VectorIndex.Collection)
		if settings.VectorIndex.APIKey != "" {
			cmd.Printf("  API Key: %s\n", domain.MaskSecret(settings.VectorIndex.APIKey))
		}
	}
	cmd.Println()

	cmd.Println(styles.Section.Render("[Transcript Store]"))
	cmd.Printf("  Backend: %s\n", settings.Store.Backend.Description())
	switch settings.Store.Backend {
	case domain.StoreBackendSQLite:
		path := settings.Store.Path
		if path == "" {
			path = "(default)"
		}
		cmd.Printf("  Path: %s\n", path)
	case domain.StoreBackendMongo:
		cmd.Printf("  URI: %s\n", domain.MaskSecret(settings.Store.MongoURI))
		cmd.Printf("  Collection: %s.%s\n", settings.Store.MongoDatabase, settings.Store.MongoCollection)
	}
	cmd.Println()

	cmd.Println(styles.Section.Render("[Retrieval]"))
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Operation: %s\n", settings.Retrieval.OperationTag)
	cmd.Printf("  Token Limit: %d (%s)\n", settings.Budget.TokenLimit, settings.Budget.Model)
	cmd.Printf("  Plan Cache TTL: %s\n", settings.Plan.TTL)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Println(styles.Warning.Render(fmt.Sprintf("Warning: %v", err)))
		cmd.Println("Run 'castquery settings wizard' to fix configuration issues.")
	} else {
		cmd.Println(styles.Success.Render("Configuration is valid."))
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runSettingsKey(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureAPIKey(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var failed bool
	cmd.Print("OpenAI... ")
	if err := settingsService.ValidateOpenAI(); err != nil {
		cmd.Println(styles.Error.Render("FAILED: " + err.Error()))
		failed = true
	} else {
		cmd.Println(styles.Success.Render("OK"))
	}

	cmd.Print("Vector index... ")
	if err := settingsService.ValidateVectorIndex(); err != nil {
		cmd.Println(styles.Error.Render("FAILED: " + err.Error()))
		failed = true
	} else {
		cmd.Println(styles.Success.Render("OK"))
	}

	if failed {
		return errors.New("configuration validation failed")
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println(styles.Title.Render("castquery Settings Wizard"))
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: OpenAI key
	cmd.Println(styles.Section.Render("Step 1: OpenAI API Key"))
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.OpenAI.IsConfigured() {
		cmd.Printf("A key is already configured (%s). Replace it? [y/N]: ", domain.MaskSecret(settings.OpenAI.APIKey))
		if strings.EqualFold(readLine(reader), "y") {
			if err := configureAPIKey(cmd, reader); err != nil {
				return err
			}
		}
	} else if err := configureAPIKey(cmd, reader); err != nil {
		return err
	}
	cmd.Println()

	// Step 2: Vector index
	cmd.Println(styles.Section.Render("Step 2: Vector Index"))
	backends := domain.AllVectorBackends()
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	vector := backends[parseChoice(readLine(reader), len(backends), 1)-1]
	if err := settingsService.Set("vector_index.backend", vector.String()); err != nil {
		return fmt.Errorf("failed to set vector backend: %w", err)
	}
	if vector == domain.VectorBackendQdrant {
		cmd.Printf("Qdrant URL [%s]: ", settings.VectorIndex.URL)
		if url := readLine(reader); url != "" {
			if err := settingsService.Set("vector_index.url", url); err != nil {
				return fmt.Errorf("failed to set Qdrant URL: %w", err)
			}
		}
	}
	cmd.Println()

	// Step 3: Transcript store
	cmd.Println(styles.Section.Render("Step 3: Transcript Store"))
	stores := domain.AllStoreBackends()
	for i, b := range stores {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	store := stores[parseChoice(readLine(reader), len(stores), 1)-1]
	if err := settingsService.Set("store.backend", store.String()); err != nil {
		return fmt.Errorf("failed to set store backend: %w", err)
	}
	if store == domain.StoreBackendMongo {
		cmd.Print("MongoDB URI: ")
		if uri := readLine(reader); uri != "" {
			if err := settingsService.Set("store.mongo_uri", uri); err != nil {
				return fmt.Errorf("failed to set MongoDB URI: %w", err)
			}
		}
	}
	cmd.Println()

	cmd.Println(styles.Title.Render("Configuration Complete"))
	if err := settingsService.Validate(); err != nil {
		cmd.Println(styles.Warning.Render(fmt.Sprintf("Warning: %v", err)))
	} else {
		cmd.Println(styles.Success.Render("All settings are valid and saved."))
	}

	return nil
}

func configureAPIKey(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Print("Enter OpenAI API key: ")
	apiKey := readPassword(cmd.InOrStdin(), reader)
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required")
	}

	if err := settingsService.SetAPIKey(apiKey); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}

	cmd.Print("Validating key... ")
	if err := settingsService.ValidateOpenAI(); err != nil {
		cmd.Println(styles.Error.Render("FAILED"))
		return fmt.Errorf("OpenAI key validation failed: %w", err)
	}
	cmd.Println(styles.Success.Render("OK"))
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal and falls back to
// a plain line read otherwise.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}
