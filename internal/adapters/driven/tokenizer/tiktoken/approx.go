package tiktoken

import "github.com/custodia-labs/castquery/internal/core/ports/driven"

var _ driven.Tokenizer = Approximate{}

// ApproximateEncoding names the fallback counter.
const ApproximateEncoding = "approx-4cpt"

// Approximate counts one token per four bytes of text, rounding up. It
// stands in when the BPE ranks cannot be loaded, for instance offline.
type Approximate struct{}

// Count estimates the number of tokens in text.
func (Approximate) Count(text string) int {
	return (len(text) + 3) / 4
}

// Encoding names the estimator.
func (Approximate) Encoding() string {
	return ApproximateEncoding
}
