package services

import (
	"strings"

	"github.com/samber/lo"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

// FilterOption narrows a RetrievalFilter beyond window and tag.
type FilterOption func(*domain.RetrievalFilter)

// WithChannels restricts retrieval to the given channel IDs. Duplicates are
// dropped; an empty list leaves the filter unrestricted.
func WithChannels(ids []int) FilterOption {
	return func(f *domain.RetrievalFilter) {
		if len(ids) > 0 {
			f.ChannelIDs = lo.Uniq(ids)
		}
	}
}

// WithKeywords keeps only segments containing one of the keywords.
func WithKeywords(keywords []string) FilterOption {
	return func(f *domain.RetrievalFilter) {
		cleaned := lo.Uniq(lo.FilterMap(keywords, func(k string, _ int) (string, bool) {
			k = strings.TrimSpace(k)
			return k, k != ""
		}))
		if len(cleaned) > 0 {
			f.Keywords = cleaned
		}
	}
}

// WithSort orders structural results by job start.
func WithSort(dir domain.SortDirection) FilterOption {
	return func(f *domain.RetrievalFilter) {
		f.Sort = dir
	}
}

// WithAIJobRequest restricts retrieval to one transcription request.
func WithAIJobRequest(id string) FilterOption {
	return func(f *domain.RetrievalFilter) {
		f.AIJobRequestID = strings.TrimSpace(id)
	}
}

// BuildFilter assembles the structural filter for a resolved window.
// An empty tag defaults to the transcription operation.
func BuildFilter(window *domain.TimeWindow, operationTag string, opts ...FilterOption) domain.RetrievalFilter {
	if operationTag == "" {
		operationTag = domain.OperationTranscription
	}
	f := domain.RetrievalFilter{
		Window:       window,
		OperationTag: operationTag,
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}
