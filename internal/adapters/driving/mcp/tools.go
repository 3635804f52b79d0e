package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

// QueryInput is the input schema shared by the ask and plan tools.
type QueryInput struct {
	Query     string   `json:"query" jsonschema:"the question about broadcast content, in natural language"`
	Channels  []int    `json:"channels,omitempty" jsonschema:"channel IDs to restrict retrieval to, overriding channels named in the question"`
	Keywords  []string `json:"keywords,omitempty" jsonschema:"keep only transcript segments containing one of these words"`
	Sort      string   `json:"sort,omitempty" jsonschema:"order transcripts by start time: asc or desc"`
	TimeCodes bool     `json:"time_codes,omitempty" jsonschema:"prefix transcript lines with their time range"`
}

// request converts tool input into a pipeline request.
func (in QueryInput) request() domain.QueryRequest {
	return domain.QueryRequest{
		Query:      in.Query,
		TimeCodes:  in.TimeCodes,
		Keywords:   in.Keywords,
		Sort:       domain.ParseSortDirection(in.Sort),
		ChannelIDs: in.Channels,
	}
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string `json:"answer"`
	Intent     string `json:"intent"`
	Notice     string `json:"notice,omitempty"`
	TokenCount int    `json:"token_count,omitempty"`
	PlanID     string `json:"plan_id,omitempty"`
	Degraded   bool   `json:"degraded"`
}

// PlanOutput is the output schema for the plan tool.
type PlanOutput struct {
	PlanID      string         `json:"plan_id"`
	Intents     []string       `json:"intents"`
	Entities    []EntityOutput `json:"entities,omitempty"`
	WindowStart string         `json:"window_start,omitempty"`
	WindowEnd   string         `json:"window_end,omitempty"`
	Lines       []string       `json:"lines"`
	LineCount   int            `json:"line_count"`
	Degraded    bool           `json:"degraded"`
}

// EntityOutput is a named entity found in the question.
type EntityOutput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Path string `json:"path" jsonschema:"path to a JSON file holding one job result or an array of them"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Jobs          int `json:"jobs"`
	Points        int `json:"points"`
	IndexFailures int `json:"index_failures"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_media",
		Description: "Answer a question about broadcast transcripts, such as a summary or the mentions of a topic on a given day and channel",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "plan_query",
		Description: "Show the intents, time window and transcript lines that would be used to answer a question, without generating an answer",
	}, s.handlePlan)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_file",
			Description: "Load transcript job results from a JSON file into the store and vector index",
		}, s.handleIngest)
	}
}

// handleAsk handles the ask_media tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Query.Ask(ctx, input.request())
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	output := AskOutput{
		Answer:     answer.Text,
		Intent:     answer.IntentName,
		Notice:     string(answer.Notice),
		TokenCount: answer.TokenCount,
	}
	if answer.Plan != nil {
		output.PlanID = answer.Plan.ID
		output.Degraded = answer.Plan.Degraded
	}
	return nil, output, nil
}

// handlePlan handles the plan_query tool invocation.
func (s *Server) handlePlan(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, PlanOutput, error) {
	plan, err := s.ports.Query.Plan(ctx, input.request())
	if err != nil {
		return nil, PlanOutput{}, toolError(err)
	}
	return nil, planOutput(plan), nil
}

// handleIngest handles the ingest_file tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	report, err := s.ports.Ingest.IngestFile(ctx, input.Path)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, IngestOutput{
		Jobs:          report.Jobs,
		Points:        report.Points,
		IndexFailures: report.IndexFailures,
	}, nil
}

func planOutput(plan *domain.QueryPlan) PlanOutput {
	out := PlanOutput{
		PlanID:    plan.ID,
		Intents:   plan.Intents,
		Lines:     plan.TranscriptLines,
		LineCount: len(plan.TranscriptLines),
		Degraded:  plan.Degraded,
	}
	if out.Intents == nil {
		out.Intents = []string{}
	}
	if out.Lines == nil {
		out.Lines = []string{}
	}
	for _, e := range plan.Entities {
		out.Entities = append(out.Entities, EntityOutput{Name: e.Name, Type: e.Type})
	}
	if plan.Window != nil {
		out.WindowStart = plan.Window.Start.UTC().Format(time.RFC3339)
		out.WindowEnd = plan.Window.End.UTC().Format(time.RFC3339)
	}
	return out
}
