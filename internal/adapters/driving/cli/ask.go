package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

// queryFlags are shared by ask and plan.
type queryFlags struct {
	channels  []int
	keywords  []string
	sort      string
	timeCodes bool
	json      bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntSliceVarP(&f.channels, "channel", "c", nil, "restrict retrieval to these channel IDs")
	cmd.Flags().StringSliceVarP(&f.keywords, "keyword", "k", nil, "keep only segments containing one of these words")
	cmd.Flags().StringVar(&f.sort, "sort", "", "order transcripts by start time (asc or desc)")
	cmd.Flags().BoolVar(&f.timeCodes, "timecodes", false, "prefix transcript lines with their time range")
	cmd.Flags().BoolVar(&f.json, "json", false, "output as JSON")
}

func (f *queryFlags) request(query string) (domain.QueryRequest, error) {
	sort := domain.ParseSortDirection(f.sort)
	if f.sort != "" && sort == domain.SortUnset {
		return domain.QueryRequest{}, fmt.Errorf("invalid --sort %q: use asc or desc", f.sort)
	}
	return domain.QueryRequest{
		Query:      query,
		TimeCodes:  f.timeCodes,
		Keywords:   f.keywords,
		Sort:       sort,
		ChannelIDs: f.channels,
	}, nil
}

var (
	askFlags  queryFlags
	planFlags queryFlags
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about broadcast transcripts",
	Long: `Answers a question using the transcripts that match its dates,
channels and keywords. The answer is prefixed with the detected intent,
for example [SUMMARY] or [MENTIONS].

Examples:
  castquery ask "summarise the evening news on August 5th"
  castquery ask --channel 3 --keyword election "what was said about the election yesterday?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

var planCmd = &cobra.Command{
	Use:   "plan [question]",
	Short: "Show the retrieval plan for a question",
	Long: `Runs intent extraction, date resolution and retrieval for a question
and prints the resulting plan without generating an answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	askFlags.register(askCmd)
	planFlags.register(planCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(planCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	req, err := askFlags.request(args[0])
	if err != nil {
		return err
	}
	if err := loadServices(cmd.Context()); err != nil {
		return err
	}
	if queryService == nil {
		return errors.New("query service not configured")
	}

	answer, err := queryService.Ask(cmd.Context(), req)
	if err != nil {
		outputRawExtraction(cmd, err)
		return fmt.Errorf("ask failed: %w", err)
	}

	if askFlags.json {
		return outputJSON(cmd, answer)
	}
	outputAnswer(cmd, answer)
	return nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	req, err := planFlags.request(args[0])
	if err != nil {
		return err
	}
	if err := loadServices(cmd.Context()); err != nil {
		return err
	}
	if queryService == nil {
		return errors.New("query service not configured")
	}

	plan, err := queryService.Plan(cmd.Context(), req)
	if err != nil {
		outputRawExtraction(cmd, err)
		return fmt.Errorf("planning failed: %w", err)
	}

	if planFlags.json {
		return outputJSON(cmd, plan)
	}
	outputPlan(cmd, plan)
	return nil
}

// outputRawExtraction prints the model payload behind a failed extraction.
func outputRawExtraction(cmd *cobra.Command, err error) {
	raw, ok := domain.RawExtraction(err)
	if !ok {
		return
	}
	cmd.PrintErrln(styles.Warning.Render("The model did not return valid JSON. Its response was:"))
	cmd.PrintErrln(raw)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswer(cmd *cobra.Command, answer *domain.Answer) {
	switch answer.Notice {
	case domain.NoticeNoRelevantData, domain.NoticeTooManyTokens:
		cmd.Println(styles.Warning.Render(answer.Text))
	default:
		cmd.Println(answer.Text)
	}

	if answer.Plan != nil && answer.Plan.Degraded {
		cmd.Println(styles.Muted.Render("Semantic retrieval was unavailable; results come from the transcript store only."))
	}
	if verbose && answer.TokenCount > 0 {
		cmd.Println(styles.Muted.Render(fmt.Sprintf("Prompt size: %d tokens", answer.TokenCount)))
	}
}

func outputPlan(cmd *cobra.Command, plan *domain.QueryPlan) {
	cmd.Println(styles.Title.Render("Query Plan"))
	cmd.Printf("  ID:       %s\n", plan.ID)
	cmd.Printf("  Intents:  %s\n", joinOrNone(plan.Intents))

	entities := make([]string, 0, len(plan.Entities))
	for _, e := range plan.Entities {
		entities = append(entities, fmt.Sprintf("%s (%s)", e.Name, e.Type))
	}
	cmd.Printf("  Entities: %s\n", joinOrNone(entities))

	if plan.Window != nil {
		cmd.Printf("  Window:   %s to %s\n",
			plan.Window.Start.UTC().Format(time.RFC3339),
			plan.Window.End.UTC().Format(time.RFC3339))
	} else {
		cmd.Println("  Window:   (unbounded)")
	}
	if plan.Degraded {
		cmd.Println("  Retrieval: structural only")
	}
	cmd.Println()

	if len(plan.TranscriptLines) == 0 {
		cmd.Println("No transcript lines matched.")
		return
	}
	cmd.Println(styles.Section.Render(fmt.Sprintf("Transcript lines (%d)", len(plan.TranscriptLines))))
	for _, line := range plan.TranscriptLines {
		cmd.Printf("  %s\n", line)
	}
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
