package services

import (
	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/logger"
)

// BudgetResult is the outcome of a token budget check.
type BudgetResult struct {
	Count int
	Limit int
}

// Exceeded reports whether the count is over the limit. Equal is allowed.
func (r BudgetResult) Exceeded() bool {
	return r.Count > r.Limit
}

// TokenBudgetGuard rejects prompts too large for the generation model.
// Counts are computed on every call and never cached.
type TokenBudgetGuard struct {
	tokenizer driven.Tokenizer
	limit     int
}

// NewTokenBudgetGuard creates a guard. A non-positive limit uses the default.
func NewTokenBudgetGuard(tokenizer driven.Tokenizer, limit int) *TokenBudgetGuard {
	if limit <= 0 {
		limit = domain.DefaultTokenLimit
	}
	return &TokenBudgetGuard{tokenizer: tokenizer, limit: limit}
}

// Limit returns the configured token limit.
func (g *TokenBudgetGuard) Limit() int {
	return g.limit
}

// Check counts the tokens of the system prompt plus the data block.
func (g *TokenBudgetGuard) Check(systemPrompt, data string) BudgetResult {
	count := g.tokenizer.Count(systemPrompt) + g.tokenizer.Count(data)
	logger.Debug("Token budget (%s): %d of %d", g.tokenizer.Encoding(), count, g.limit)
	return BudgetResult{Count: count, Limit: g.limit}
}

// Guard checks the prompt and returns a *domain.TooManyTokensError when it
// is over budget. The result is filled in either way.
func (g *TokenBudgetGuard) Guard(systemPrompt, data string) (BudgetResult, error) {
	res := g.Check(systemPrompt, data)
	if res.Exceeded() {
		return res, &domain.TooManyTokensError{Count: res.Count, Limit: res.Limit}
	}
	return res, nil
}
