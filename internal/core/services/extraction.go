package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/logger"
)

// Ensure Extractor accepts a prompt store.
var _ driven.PromptStoreAware = (*Extractor)(nil)

const extractionPersona = "You are a helpful media assistant."

// Extractor turns a natural-language query into a QueryIntentContext using
// the LLM.
type Extractor struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	now     func() time.Time
}

// NewExtractor creates an extractor. A nil clock uses time.Now.
func NewExtractor(llm driven.LLMService, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{llm: llm, now: now}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (e *Extractor) SetPromptStore(store driven.PromptStore) {
	e.prompts = store
}

// Extract asks the model for the query's intents, entities, dates and
// sources. A reply that is not valid JSON fails with a
// *domain.ExtractionParseError carrying the raw reply; an LLM failure is
// wrapped with domain.ErrUpstreamUnavailable.
func (e *Extractor) Extract(ctx context.Context, query string) (*domain.QueryIntentContext, error) {
	logger.Section("Extraction")

	if e.llm == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, domain.ErrLLMUnavailable)
	}

	today := e.now().UTC()
	instructions := fmt.Sprintf(loadPrompt(e.prompts, driven.PromptExtraction),
		today.Format("2006-01-02"), today.Year())

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: extractionPersona},
		{Role: driven.RoleUser, Content: instructions + "\n\nUser query: " + strconv.Quote(query)},
	}

	raw, err := e.llm.Chat(ctx, messages, driven.ChatOptions{JSON: true})
	if err != nil {
		return nil, fmt.Errorf("%w: extraction: %w", domain.ErrUpstreamUnavailable, err)
	}
	logger.Debug("Extraction reply: %s", raw)

	ictx, err := ParseExtraction(raw)
	if err != nil {
		return nil, err
	}
	ictx.OriginalQuery = query

	logger.Info("Extracted %d intents, %d entities, %d dates, %d sources",
		len(ictx.Intents), len(ictx.Entities), len(ictx.DateMentions), len(ictx.Sources))
	return ictx, nil
}

// extractionReply is the JSON shape the extraction prompt asks for.
type extractionReply struct {
	Intents  []flexString `json:"intents"`
	Entities []struct {
		Entity flexString `json:"entity"`
		Type   flexString `json:"type"`
	} `json:"entities"`
	Dates []struct {
		Date      flexString `json:"date"`
		StartDate flexString `json:"startDate"`
		EndDate   flexString `json:"endDate"`
		StartTime flexString `json:"startTime"`
		EndTime   flexString `json:"endTime"`
		Type      flexString `json:"type"`
		Phrase    flexString `json:"phrase"`
	} `json:"dates"`
	Sources []struct {
		Source flexString `json:"source"`
		Type   flexString `json:"type"`
	} `json:"sources"`
}

// flexString accepts a JSON string, number or null. Models often emit
// channel numbers unquoted.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string {
	return strings.TrimSpace(string(f))
}

// ParseExtraction decodes an extraction reply, tolerating markdown code
// fences and prose around the JSON object.
func ParseExtraction(raw string) (*domain.QueryIntentContext, error) {
	body := stripCodeFence(raw)
	if body == "" {
		return nil, &domain.ExtractionParseError{Raw: raw}
	}

	var reply extractionReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, &domain.ExtractionParseError{Raw: raw, Err: err}
	}

	ictx := &domain.QueryIntentContext{}
	for _, in := range reply.Intents {
		if s := in.String(); s != "" {
			ictx.Intents = append(ictx.Intents, s)
		}
	}
	for _, ent := range reply.Entities {
		if name := ent.Entity.String(); name != "" {
			ictx.Entities = append(ictx.Entities, domain.Entity{Name: name, Type: ent.Type.String()})
		}
	}
	for _, d := range reply.Dates {
		m := domain.DateMention{
			Kind:      domain.DateMentionSingle,
			Date:      d.Date.String(),
			StartDate: d.StartDate.String(),
			EndDate:   d.EndDate.String(),
			StartTime: d.StartTime.String(),
			EndTime:   d.EndTime.String(),
			Phrase:    d.Phrase.String(),
		}
		if strings.EqualFold(d.Type.String(), "range") || m.StartDate != "" || m.EndDate != "" {
			m.Kind = domain.DateMentionRange
		}
		ictx.DateMentions = append(ictx.DateMentions, m)
	}
	for _, src := range reply.Sources {
		if name := src.Source.String(); name != "" {
			ictx.Sources = append(ictx.Sources, domain.SourceRef{Name: name, Type: src.Type.String()})
		}
	}
	return ictx, nil
}

// stripCodeFence returns the JSON object inside raw, dropping ``` fences
// and any text outside the outermost braces.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
