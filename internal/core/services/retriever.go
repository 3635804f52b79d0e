package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/logger"
)

// RetrievalMode records which path produced a retrieval result.
type RetrievalMode string

// Retrieval paths.
const (
	// RetrievalModeSemantic ranked documents by vector similarity.
	RetrievalModeSemantic RetrievalMode = "semantic"

	// RetrievalModeStructural used the store filter alone.
	RetrievalModeStructural RetrievalMode = "structural"
)

// RetrievalResult holds the documents of one retrieval.
type RetrievalResult struct {
	Documents []domain.JobResult

	// Degraded is set when the semantic path was attempted and failed or
	// came back empty, so the structural path answered instead.
	Degraded bool

	Mode RetrievalMode
}

// HybridRetriever fetches transcript documents for a query, preferring
// vector similarity and falling back to the structural store filter.
type HybridRetriever struct {
	store    driven.TranscriptStore
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	topK     int
}

// NewHybridRetriever creates a retriever. The index and embedder are
// optional (can be nil); without both, retrieval is structural only.
func NewHybridRetriever(
	store driven.TranscriptStore,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	topK int,
) *HybridRetriever {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &HybridRetriever{
		store:    store,
		index:    index,
		embedder: embedder,
		topK:     topK,
	}
}

// Retrieve returns documents matching filter, ranked by similarity to query
// when the semantic path succeeds. Semantic failures never propagate; only
// structural failures are returned, wrapped with ErrUpstreamUnavailable.
func (r *HybridRetriever) Retrieve(
	ctx context.Context, query string, filter domain.RetrievalFilter,
) (RetrievalResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Window: %s, tag: %q, channels: %v", filter.Window, filter.OperationTag, filter.ChannelIDs)

	query = strings.TrimSpace(query)
	if query == "" || r.index == nil || r.embedder == nil {
		logger.Debug("Structural retrieval only (query empty: %t, vector available: %t)",
			query == "", r.index != nil && r.embedder != nil)
		return r.structural(ctx, filter, false)
	}

	docs, err := r.semantic(ctx, query, filter)
	if err != nil {
		logger.Warn("%v: %v", domain.ErrRetrievalDegraded, err)
		return r.structural(ctx, filter, true)
	}

	logger.Info("Semantic retrieval: %d documents", len(docs))
	return RetrievalResult{Documents: docs, Mode: RetrievalModeSemantic}, nil
}

// semantic runs embed, search, fetch. Any failure or empty step is an error
// so the caller can degrade.
func (r *HybridRetriever) semantic(
	ctx context.Context, query string, filter domain.RetrievalFilter,
) ([]domain.JobResult, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Search(ctx, vec, filter, r.topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	ids := lo.Uniq(lo.FilterMap(hits, func(h driven.VectorHit, _ int) (string, bool) {
		return h.DocumentID, h.DocumentID != ""
	}))
	if len(ids) == 0 {
		return nil, errors.New("vector search returned no candidates")
	}
	logger.Debug("Vector candidates: %d hits, %d documents", len(hits), len(ids))

	fetched, err := r.store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	// Fetching by ID bypasses the store predicates.
	docs := filter.Apply(fetched)
	if len(docs) == 0 {
		return nil, errors.New("no candidate documents matched the filter")
	}

	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	sort.SliceStable(docs, func(i, j int) bool {
		ri, rj := rank[docs[i].ID], rank[docs[j].ID]
		if ri != rj {
			return ri < rj
		}
		return docs[i].Start.Before(docs[j].Start)
	})
	return docs, nil
}

func (r *HybridRetriever) structural(
	ctx context.Context, filter domain.RetrievalFilter, degraded bool,
) (RetrievalResult, error) {
	if r.store == nil {
		return RetrievalResult{}, fmt.Errorf("%w: no transcript store configured", domain.ErrUpstreamUnavailable)
	}

	docs, err := r.store.FindByFilter(ctx, filter)
	if err != nil {
		return RetrievalResult{}, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}

	logger.Info("Structural retrieval: %d documents (degraded: %t)", len(docs), degraded)
	return RetrievalResult{
		Documents: docs,
		Degraded:  degraded,
		Mode:      RetrievalModeStructural,
	}, nil
}
