// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.castquery.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with CASTQUERY_ environment overrides
//   - PromptStore: user-editable LLM prompt templates
package file
