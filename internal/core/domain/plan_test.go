package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueryPlan_Expired(t *testing.T) {
	created := time.Date(2025, 8, 5, 12, 0, 0, 0, time.UTC)

	t.Run("within ttl", func(t *testing.T) {
		p := &QueryPlan{CreatedAt: created, TTL: 10 * time.Minute}
		assert.False(t, p.Expired(created.Add(10*time.Minute)))
	})

	t.Run("past ttl", func(t *testing.T) {
		p := &QueryPlan{CreatedAt: created, TTL: 10 * time.Minute}
		assert.True(t, p.Expired(created.Add(10*time.Minute+time.Nanosecond)))
	})

	t.Run("zero ttl uses default", func(t *testing.T) {
		p := &QueryPlan{CreatedAt: created}
		assert.False(t, p.Expired(created.Add(DefaultPlanTTL)))
		assert.True(t, p.Expired(created.Add(DefaultPlanTTL+time.Second)))
	})
}

func TestQueryPlan_HasData(t *testing.T) {
	var nilPlan *QueryPlan
	assert.False(t, nilPlan.HasData())
	assert.False(t, (&QueryPlan{}).HasData())
	assert.True(t, (&QueryPlan{TranscriptLines: []string{"x"}}).HasData())
}

func TestQueryRequest_HasOverrides(t *testing.T) {
	assert.False(t, QueryRequest{Query: "q"}.HasOverrides())
	assert.True(t, QueryRequest{TimeCodes: true}.HasOverrides())
	assert.True(t, QueryRequest{Keywords: []string{"oil"}}.HasOverrides())
	assert.True(t, QueryRequest{Sort: SortDescending}.HasOverrides())
	assert.True(t, QueryRequest{ChannelIDs: []int{1}}.HasOverrides())
}
