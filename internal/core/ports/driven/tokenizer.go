package driven

// Tokenizer counts model tokens.
type Tokenizer interface {
	// Count returns the number of tokens text encodes to.
	Count(text string) int

	// Encoding names the underlying encoding (e.g. "cl100k_base").
	Encoding() string
}
