// Package domain defines the core business entities for castquery.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - JobResult: A transcribed media recording with its segments
//   - TranscriptSegment: One timed line of transcript text
//   - DateMention: A date or time phrase pulled out of a query
//   - TimeWindow: The resolved UTC interval that bounds retrieval
//   - RetrievalFilter: Structural predicates shared by stores and vector indexes
//   - QueryPlan: The assembled, fingerprinted slice of transcript lines
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
