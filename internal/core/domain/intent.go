package domain

import (
	"strconv"
	"strings"
)

// Intent is the classified purpose of a query. The zero value is
// IntentUnrecognized.
type Intent int

// Known intents.
const (
	IntentUnrecognized Intent = iota
	IntentSummary
	IntentEmotionAnalysis
	IntentKeywords
	IntentAlerts
	IntentMentions
)

// ParseIntent maps an extracted intent label onto the enumeration.
// Matching is case-insensitive and ignores spaces, underscores and hyphens,
// so "emotion_analysis" and "EmotionAnalysis" agree.
func ParseIntent(s string) Intent {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "", "-", "", " ", "").Replace(norm)

	switch norm {
	case "summary", "summarize", "summarise", "summarization", "summarisation":
		return IntentSummary
	case "emotionanalysis", "emotion", "emotions", "sentiment", "sentimentanalysis":
		return IntentEmotionAnalysis
	case "keywords", "keyword", "keywordextraction", "keyworddetection", "detectkeywords":
		return IntentKeywords
	case "alerts", "alert", "checkalerts":
		return IntentAlerts
	case "mentions", "mention", "mentiondetection", "detectmentions":
		return IntentMentions
	default:
		return IntentUnrecognized
	}
}

// Label returns the prefix attached to answers of this intent.
func (i Intent) Label() string {
	switch i {
	case IntentSummary:
		return "[SUMMARY]"
	case IntentEmotionAnalysis:
		return "[EMOTION ANALYSIS]"
	case IntentKeywords:
		return "[KEYWORDS]"
	case IntentAlerts:
		return "[ALERTS]"
	case IntentMentions:
		return "[MENTIONS]"
	default:
		return "[UNRECOGNIZED]"
	}
}

// String returns the canonical lower-case name.
func (i Intent) String() string {
	switch i {
	case IntentSummary:
		return "summary"
	case IntentEmotionAnalysis:
		return "emotion_analysis"
	case IntentKeywords:
		return "keywords"
	case IntentAlerts:
		return "alerts"
	case IntentMentions:
		return "mentions"
	default:
		return "unrecognized"
	}
}

// AllIntents returns every recognised intent.
func AllIntents() []Intent {
	return []Intent{
		IntentSummary,
		IntentEmotionAnalysis,
		IntentKeywords,
		IntentAlerts,
		IntentMentions,
	}
}

// Entity is a named entity extracted from a query.
type Entity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// SourceRef is a media source (usually a channel) named in a query.
type SourceRef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// QueryIntentContext is the structured reading of a query produced by
// extraction. It is built once per request and not modified afterwards.
type QueryIntentContext struct {
	OriginalQuery string
	Intents       []string
	Entities      []Entity
	DateMentions  []DateMention
	Sources       []SourceRef
}

// PrimaryIntent classifies the first extracted intent.
func (c QueryIntentContext) PrimaryIntent() Intent {
	if len(c.Intents) == 0 {
		return IntentUnrecognized
	}
	return ParseIntent(c.Intents[0])
}

// ChannelIDs returns the numeric source identifiers in first-seen order.
// Sources whose names are not integers are ignored.
func (c QueryIntentContext) ChannelIDs() []int {
	var ids []int
	seen := make(map[int]bool)
	for _, src := range c.Sources {
		id, err := strconv.Atoi(strings.TrimSpace(src.Name))
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
