package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		in       string
		expected Intent
	}{
		{"summary", IntentSummary},
		{"SUMMARY", IntentSummary},
		{"  Summarise ", IntentSummary},
		{"emotion analysis", IntentEmotionAnalysis},
		{"Emotion_Analysis", IntentEmotionAnalysis},
		{"emotion-analysis", IntentEmotionAnalysis},
		{"keyword extraction", IntentKeywords},
		{"keywords", IntentKeywords},
		{"alerts", IntentAlerts},
		{"Mention", IntentMentions},
		{"EmotionAnalysis", IntentEmotionAnalysis},
		{"DetectKeywords", IntentKeywords},
		{"CheckAlerts", IntentAlerts},
		{"", IntentUnrecognized},
		{"translate", IntentUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseIntent(tt.in))
		})
	}
}

func TestIntent_LabelIsTotal(t *testing.T) {
	seen := map[string]bool{}
	for _, i := range append(AllIntents(), IntentUnrecognized) {
		label := i.Label()
		assert.NotEmpty(t, label)
		assert.False(t, seen[label], "duplicate label %s", label)
		seen[label] = true
	}

	assert.Equal(t, "[SUMMARY]", IntentSummary.Label())
	assert.Equal(t, "[EMOTION ANALYSIS]", IntentEmotionAnalysis.Label())
	assert.Equal(t, "[UNRECOGNIZED]", IntentUnrecognized.Label())
	assert.Equal(t, "[UNRECOGNIZED]", Intent(99).Label())
}

func TestIntent_StringRoundTrips(t *testing.T) {
	for _, i := range AllIntents() {
		assert.Equal(t, i, ParseIntent(i.String()))
	}
}

func TestQueryIntentContext_PrimaryIntent(t *testing.T) {
	assert.Equal(t, IntentUnrecognized, QueryIntentContext{}.PrimaryIntent())

	ctx := QueryIntentContext{Intents: []string{"Emotion Analysis", "summary"}}
	assert.Equal(t, IntentEmotionAnalysis, ctx.PrimaryIntent())
}

func TestQueryIntentContext_ChannelIDs(t *testing.T) {
	ctx := QueryIntentContext{
		Sources: []SourceRef{
			{Name: "12", Type: "channel"},
			{Name: "CNN", Type: "channel"},
			{Name: " 4 ", Type: "channel"},
			{Name: "12", Type: "channel"},
		},
	}

	assert.Equal(t, []int{12, 4}, ctx.ChannelIDs())
	assert.Nil(t, QueryIntentContext{}.ChannelIDs())
}
