package qdrant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/logger"
	"github.com/custodia-labs/castquery/internal/postprocessors/chunker"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores paired transcript segments in a Qdrant collection.
type Index struct {
	client   *Client
	embedder driven.EmbeddingService
	chunker  *chunker.Processor
	now      func() time.Time

	mu     sync.Mutex
	nextID uint64
}

// idsPerMilli spreads point IDs so that batches written a millisecond
// apart start at distinct bases.
const idsPerMilli = 1000

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithTimecodes prefixes embedded text with elapsed-second ranges.
func WithTimecodes(enabled bool) IndexOption {
	return func(i *Index) {
		i.chunker = chunker.New(chunker.WithTimecodes(enabled))
	}
}

// WithClock sets the clock used to derive point IDs.
func WithClock(now func() time.Time) IndexOption {
	return func(i *Index) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIndex creates an index over client. The embedder may be nil, in which
// case Upsert fails with ErrEmbeddingUnavailable and Search still works for
// callers that embed queries themselves.
func NewIndex(client *Client, embedder driven.EmbeddingService, opts ...IndexOption) *Index {
	i := &Index{
		client:   client,
		embedder: embedder,
		chunker:  chunker.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// EnsureCollection creates the backing collection if it is missing.
func (i *Index) EnsureCollection(ctx context.Context, vectorSize int) error {
	return i.client.EnsureCollection(ctx, vectorSize)
}

// Upsert pairs the job's segments, embeds every chunk in one batch and
// writes the points.
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
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embed chunks for %s: got %d vectors for %d chunks", job.ID, len(vectors), len(chunks))
	}

	points := chunker.Points(job, chunks, vectors, i.reserveIDs(len(chunks)))
	if err := i.client.UpsertPoints(ctx, points); err != nil {
		return 0, err
	}

	logger.Debug("Indexed %d points for job %s in %s", len(points), job.ID, i.client.Collection())
	return len(points), nil
}

// reserveIDs returns the first of n consecutive point IDs. A block starts at
// the clock-derived base but never inside a block handed out before.
func (i *Index) reserveIDs(n int) uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()

	base := uint64(i.now().UnixMilli()) * idsPerMilli
	if base < i.nextID {
		base = i.nextID
	}
	i.nextID = base + uint64(n)
	return base
}

// Search returns document IDs ranked by similarity.
func (i *Index) Search(
	ctx context.Context,
	query []float32,
	filter domain.RetrievalFilter,
	topK int,
) ([]driven.VectorHit, error) {
	hits, err := i.client.SearchPoints(ctx, query, filter.Window, filter.ChannelIDs, topK)
	if err != nil {
		return nil, err
	}

	out := make([]driven.VectorHit, 0, len(hits))
	for _, h := range hits {
		if h.DocumentID == "" {
			continue
		}
		out = append(out, driven.VectorHit{DocumentID: h.DocumentID, Score: h.Score})
	}
	return out, nil
}

// Close releases resources.
func (i *Index) Close() error {
	return nil
}
