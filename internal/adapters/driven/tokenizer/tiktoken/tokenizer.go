// Package tiktoken provides a token counter backed by OpenAI's BPE
// encodings. The encoding ranks are downloaded on first use and cached by
// the library (see TIKTOKEN_CACHE_DIR).
package tiktoken

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/castquery/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// DefaultEncoding is used for models the library does not know.
const DefaultEncoding = "cl100k_base"

type encoder interface {
	Encode(text string, allowedSpecial, disallowedSpecial []string) []int
}

// Tokenizer counts tokens with a tiktoken encoding.
type Tokenizer struct {
	enc      encoder
	encoding string
}

// New returns a tokenizer for model, falling back to cl100k_base when the
// model is unknown.
func New(model string) (*Tokenizer, error) {
	name := EncodingName(model)
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("tiktoken: load %s: %w", name, err)
	}
	return &Tokenizer{enc: enc, encoding: name}, nil
}

// EncodingName maps a model name to its encoding, matching exact names
// first and then known prefixes.
func EncodingName(model string) string {
	if name, ok := tiktoken.MODEL_TO_ENCODING[model]; ok {
		return name
	}
	for prefix, name := range tiktoken.MODEL_PREFIX_TO_ENCODING {
		if strings.HasPrefix(model, prefix) {
			return name
		}
	}
	return DefaultEncoding
}

// Count returns the number of tokens text encodes to. Special tokens are
// counted as ordinary text.
func (t *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Encoding names the underlying encoding.
func (t *Tokenizer) Encoding() string {
	return t.encoding
}
