// Package memory provides an in-process vector index with brute-force
// cosine search. Points are lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/postprocessors/chunker"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a thread-safe in-memory VectorIndex.
type Index struct {
	mu       sync.RWMutex
	points   map[uint64]domain.VectorPoint
	size     int
	embedder driven.EmbeddingService
	chunker  *chunker.Processor
	now      func() time.Time
	seq      uint64
}

// NewIndex creates an empty index. timecodes prefixes embedded text with
// elapsed-second ranges, matching the Qdrant index.
func NewIndex(embedder driven.EmbeddingService, timecodes bool) *Index {
	return &Index{
		points:   make(map[uint64]domain.VectorPoint),
		embedder: embedder,
		chunker:  chunker.New(chunker.WithTimecodes(timecodes)),
		now:      time.Now,
	}
}

// EnsureCollection records the vector size. Points of another size are
// rejected by later upserts.
func (i *Index) EnsureCollection(_ context.Context, vectorSize int) error {
	if vectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive, got %d", domain.ErrInvalidInput, vectorSize)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.size == 0 {
		i.size = vectorSize
	}
	return nil
}

// Upsert pairs and embeds the job's segments and stores the points.
func (i *Index) Upsert(ctx context.Context, job domain.JobResult) (int, error) {
	chunks := i.chunker.Process(job.Segments)
	if len(chunks) == 0 {
		return 0, nil
	}
	if i.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	vectors, err := i.embedder.EmbedBatch(ctx, chunker.Texts(chunks))
	if err != nil {
		return 0, fmt.Errorf("embed chunks for %s: %w", job.ID, err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	for _, v := range vectors {
		if i.size != 0 && len(v) != i.size {
			return 0, fmt.Errorf("%w: vector size %d, collection expects %d", domain.ErrInvalidInput, len(v), i.size)
		}
	}

	// A sequence keeps IDs unique when two upserts land in the same millisecond.
	baseID := uint64(i.now().UnixMilli())*1000 + i.seq
	i.seq += uint64(len(chunks))
	points := chunker.Points(job, chunks, vectors, baseID)
	for _, p := range points {
		i.points[p.ID] = p
	}
	return len(points), nil
}

// Search ranks stored points by cosine similarity to query, applying the
// window and channel predicates first.
func (i *Index) Search(
	_ context.Context,
	query []float32,
	filter domain.RetrievalFilter,
	topK int,
) ([]driven.VectorHit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(i.points))
	for _, p := range i.points {
		if !p.Payload.Overlaps(filter.Window) {
			continue
		}
		if len(filter.ChannelIDs) > 0 && !lo.Contains(filter.ChannelIDs, p.Payload.ChannelID) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			DocumentID: p.Payload.DocumentID,
			Score:      cosine(query, p.Vector),
		})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].DocumentID < hits[b].DocumentID
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Len returns the number of stored points.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.points)
}

// Close releases resources.
func (i *Index) Close() error {
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for k := range a {
		dot += float64(a[k]) * float64(b[k])
		na += float64(a[k]) * float64(a[k])
		nb += float64(b[k]) * float64(b[k])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
