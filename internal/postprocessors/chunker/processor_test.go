package chunker

import (
	"testing"
	"time"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

var base = time.Date(2025, 8, 5, 20, 0, 0, 0, time.UTC)

func segments(texts ...string) []domain.TranscriptSegment {
	out := make([]domain.TranscriptSegment, len(texts))
	for i, text := range texts {
		start := float64(i * 5)
		out[i] = domain.TranscriptSegment{
			Text:           text,
			StartInSeconds: start,
			EndInSeconds:   start + 4.5,
			StartTime:      base.Add(time.Duration(i*5) * time.Second),
			EndTime:        base.Add(time.Duration(i*5)*time.Second + 4500*time.Millisecond),
		}
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.groupSize != DefaultGroupSize {
			t.Errorf("expected groupSize %d, got %d", DefaultGroupSize, p.groupSize)
		}
		if p.timecodes {
			t.Error("expected timecodes off by default")
		}
	})

	t.Run("custom group size", func(t *testing.T) {
		p := New(WithGroupSize(3))
		if p.groupSize != 3 {
			t.Errorf("expected groupSize 3, got %d", p.groupSize)
		}
	})

	t.Run("invalid group size ignored", func(t *testing.T) {
		p := New(WithGroupSize(0))
		if p.groupSize != DefaultGroupSize {
			t.Errorf("expected groupSize %d, got %d", DefaultGroupSize, p.groupSize)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	if got := New().Name(); got != "chunker" {
		t.Errorf("expected name chunker, got %q", got)
	}
}

func TestPairSegments_Even(t *testing.T) {
	chunks := PairSegments(segments("a", "b", "c", "d"), false)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "a b" || chunks[1].Text != "c d" {
		t.Errorf("unexpected texts %q, %q", chunks[0].Text, chunks[1].Text)
	}
	if chunks[0].Offset != 0 || chunks[1].Offset != 2 {
		t.Errorf("unexpected offsets %d, %d", chunks[0].Offset, chunks[1].Offset)
	}
	if !chunks[0].Start.Equal(base) {
		t.Errorf("expected start %s, got %s", base, chunks[0].Start)
	}
	wantEnd := base.Add(9500 * time.Millisecond)
	if !chunks[0].End.Equal(wantEnd) {
		t.Errorf("expected end %s, got %s", wantEnd, chunks[0].End)
	}
}

func TestPairSegments_OddTailAlone(t *testing.T) {
	chunks := PairSegments(segments("a", "b", "c"), false)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[1].Text != "c" {
		t.Errorf("expected tail chunk %q, got %q", "c", chunks[1].Text)
	}
}

func TestPairSegments_Timecodes(t *testing.T) {
	chunks := PairSegments(segments("hello", "world"), true)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	want := "0-4.5: hello 5-9.5: world"
	if chunks[0].Text != want {
		t.Errorf("expected %q, got %q", want, chunks[0].Text)
	}
}

func TestPairSegments_SkipsBlank(t *testing.T) {
	chunks := PairSegments(segments("a", "  ", "b", ""), false)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "a b" {
		t.Errorf("expected %q, got %q", "a b", chunks[0].Text)
	}
}

func TestPairSegments_Empty(t *testing.T) {
	if chunks := PairSegments(nil, false); chunks != nil {
		t.Errorf("expected nil, got %v", chunks)
	}
}

func TestProcess_GroupSize(t *testing.T) {
	chunks := New(WithGroupSize(3)).Process(segments("a", "b", "c", "d"))

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "a b c" {
		t.Errorf("expected %q, got %q", "a b c", chunks[0].Text)
	}
}

func TestPoints(t *testing.T) {
	job := domain.JobResult{ID: "job-1", ChannelID: 7}
	chunks := PairSegments(segments("a", "b", "c"), false)
	vectors := [][]float32{{1, 0}, {0, 1}}

	points := Points(job, chunks, vectors, 5000)

	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].ID != 5000 || points[1].ID != 5001 {
		t.Errorf("unexpected ids %d, %d", points[0].ID, points[1].ID)
	}
	p := points[1].Payload
	if p.DocumentID != "job-1" || p.ChannelID != 7 {
		t.Errorf("unexpected payload %+v", p)
	}
	if p.WindowStart != base.Add(10*time.Second).Unix() {
		t.Errorf("expected window start %d, got %d", base.Add(10*time.Second).Unix(), p.WindowStart)
	}
	if p.WindowEnd != base.Add(14*time.Second).Unix() {
		t.Errorf("expected window end %d, got %d", base.Add(14*time.Second).Unix(), p.WindowEnd)
	}
}

func TestTexts(t *testing.T) {
	texts := Texts(PairSegments(segments("a", "b", "c"), false))
	if len(texts) != 2 || texts[0] != "a b" || texts[1] != "c" {
		t.Errorf("unexpected texts %v", texts)
	}
}
