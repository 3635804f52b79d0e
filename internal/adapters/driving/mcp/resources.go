package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

// uriScheme is the custom URI scheme for castquery resources.
const uriScheme = "castquery://"

// intentInfo describes one intent for resource listings.
type intentInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// settingsInfo is the redacted view of the active settings.
type settingsInfo struct {
	OpenAIKey        string `json:"openai_key,omitempty"`
	LLMModel         string `json:"llm_model"`
	EmbeddingModel   string `json:"embedding_model"`
	VectorBackend    string `json:"vector_backend"`
	VectorURL        string `json:"vector_url,omitempty"`
	VectorCollection string `json:"vector_collection,omitempty"`
	StoreBackend     string `json:"store_backend"`
	TopK             int    `json:"top_k"`
	OperationTag     string `json:"operation_tag"`
	TokenLimit       int    `json:"token_limit"`
	PlanTTL          string `json:"plan_ttl"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "intents",
		Name:        "intents",
		Description: "Intents a question can be classified as, with their answer labels",
		MIMEType:    "application/json",
	}, s.handleIntentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "intents/{name}",
		Name:        "intent",
		Description: "A single intent, looked up by name or alias",
		MIMEType:    "application/json",
	}, s.handleIntentResource)

	if s.ports.Settings != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "settings",
			Name:        "settings",
			Description: "Active configuration with secrets masked",
			MIMEType:    "application/json",
		}, s.handleSettingsResource)
	}
}

// handleIntentsResource lists every recognised intent.
func (s *Server) handleIntentsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	intents := domain.AllIntents()
	infos := make([]intentInfo, len(intents))
	for i, intent := range intents {
		infos[i] = intentInfo{Name: intent.String(), Label: intent.Label()}
	}
	return jsonResult(req.Params.URI, infos)
}

// handleIntentResource describes one intent.
func (s *Server) handleIntentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractIntentName(req.Params.URI)
	intent := domain.ParseIntent(name)
	if intent == domain.IntentUnrecognized {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResult(req.Params.URI, intentInfo{Name: intent.String(), Label: intent.Label()})
}

// handleSettingsResource returns the active settings.
func (s *Server) handleSettingsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	settings, err := s.ports.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	info := settingsInfo{
		OpenAIKey:      domain.MaskSecret(settings.OpenAI.APIKey),
		LLMModel:       settings.LLM.Model,
		EmbeddingModel: settings.Embedding.Model,
		VectorBackend:  settings.VectorIndex.Backend.String(),
		StoreBackend:   settings.Store.Backend.String(),
		TopK:           settings.Retrieval.TopK,
		OperationTag:   settings.Retrieval.OperationTag,
		TokenLimit:     settings.Budget.TokenLimit,
		PlanTTL:        settings.Plan.TTL.String(),
	}
	if settings.VectorIndex.Backend == domain.VectorBackendQdrant {
		info.VectorURL = settings.VectorIndex.URL
		info.VectorCollection = settings.VectorIndex.Collection
	}
	return jsonResult(req.Params.URI, info)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractIntentName extracts the name from a URI like castquery://intents/{name}.
func extractIntentName(uri string) string {
	const prefix = uriScheme + "intents/"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
