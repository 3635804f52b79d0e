package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

func TestTokenBudgetGuard_Check(t *testing.T) {
	g := NewTokenBudgetGuard(wordTokenizer{}, 10)

	res := g.Check("one two three", "four five")

	assert.Equal(t, 5, res.Count)
	assert.Equal(t, 10, res.Limit)
	assert.False(t, res.Exceeded())
}

func TestTokenBudgetGuard_EqualToLimitPasses(t *testing.T) {
	g := NewTokenBudgetGuard(wordTokenizer{}, 4)

	res, err := g.Guard("a b", "c d")

	assert.NoError(t, err)
	assert.Equal(t, 4, res.Count)
}

func TestTokenBudgetGuard_OverLimit(t *testing.T) {
	g := NewTokenBudgetGuard(wordTokenizer{}, 4)

	res, err := g.Guard("a b", "c d e")

	require.Error(t, err)
	assert.Equal(t, 5, res.Count)
	var tooMany *domain.TooManyTokensError
	require.True(t, errors.As(err, &tooMany))
	assert.Equal(t, 5, tooMany.Count)
	assert.Equal(t, 4, tooMany.Limit)
}

func TestTokenBudgetGuard_DefaultLimit(t *testing.T) {
	g := NewTokenBudgetGuard(wordTokenizer{}, 0)

	assert.Equal(t, 128000, g.Limit())
}
