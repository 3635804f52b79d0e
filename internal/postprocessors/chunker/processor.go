// Package chunker groups consecutive transcript segments into the text
// units that are embedded and stored as vector points.
package chunker

import (
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

// DefaultGroupSize is the number of consecutive segments per chunk.
const DefaultGroupSize = 2

// Chunk is the embedding unit for a run of consecutive segments.
type Chunk struct {
	// Text is the segment texts joined by a space.
	Text string

	// Start is the earliest segment start time in the chunk.
	Start time.Time

	// End is the latest segment end time in the chunk.
	End time.Time

	// Offset is the index of the chunk's first segment.
	Offset int
}

// Processor splits a job's segments into fixed-size groups.
type Processor struct {
	groupSize int
	timecodes bool
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithGroupSize sets how many segments go into each chunk.
func WithGroupSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.groupSize = size
		}
	}
}

// WithTimecodes prefixes each segment text with its elapsed-second range,
// as in "12.5-14: text".
func WithTimecodes(enabled bool) Option {
	return func(p *Processor) {
		p.timecodes = enabled
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{groupSize: DefaultGroupSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process groups segments in order: [0,1], [2,3], ... with an odd tail
// emitted alone. Segments with blank text are dropped before grouping.
func (p *Processor) Process(segments []domain.TranscriptSegment) []Chunk {
	kept := make([]int, 0, len(segments))
	for i, s := range segments {
		if strings.TrimSpace(s.Text) != "" {
			kept = append(kept, i)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	chunks := make([]Chunk, 0, (len(kept)+p.groupSize-1)/p.groupSize)
	for i := 0; i < len(kept); i += p.groupSize {
		end := i + p.groupSize
		if end > len(kept) {
			end = len(kept)
		}

		texts := make([]string, 0, end-i)
		chunk := Chunk{Offset: kept[i]}
		for _, idx := range kept[i:end] {
			s := segments[idx]
			texts = append(texts, p.render(s))
			if chunk.Start.IsZero() || s.StartTime.Before(chunk.Start) {
				chunk.Start = s.StartTime
			}
			if s.EndTime.After(chunk.End) {
				chunk.End = s.EndTime
			}
		}
		chunk.Text = strings.Join(texts, " ")
		chunks = append(chunks, chunk)
	}
	return chunks
}

func (p *Processor) render(s domain.TranscriptSegment) string {
	text := strings.TrimSpace(s.Text)
	if !p.timecodes {
		return text
	}
	return formatSeconds(s.StartInSeconds) + "-" + formatSeconds(s.EndInSeconds) + ": " + text
}

func formatSeconds(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// PairSegments groups segments two at a time.
func PairSegments(segments []domain.TranscriptSegment, withTimecodes bool) []Chunk {
	return New(WithTimecodes(withTimecodes)).Process(segments)
}
