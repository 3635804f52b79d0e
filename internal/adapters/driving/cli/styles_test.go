package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputStyles_KeepText(t *testing.T) {
	s := newOutputStyles()

	assert.Contains(t, s.Title.Render("Query Plan"), "Query Plan")
	assert.Contains(t, s.Warning.Render("careful"), "careful")
	assert.True(t, s.Title.GetBold())
	assert.Equal(t, colourPrimary, s.Title.GetForeground())
}
