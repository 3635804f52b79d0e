package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/core/ports/driving"
	"github.com/custodia-labs/castquery/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryOptions tunes the query pipeline. Zero values use the defaults.
type QueryOptions struct {
	TopK         int
	OperationTag string
	TokenLimit   int
	PlanTTL      time.Duration
	Now          func() time.Time
}

// QueryService answers questions by extracting intent, resolving the time
// window, retrieving transcripts, assembling a plan and generating an answer.
type QueryService struct {
	llm          driven.LLMService
	cache        driven.PlanCache
	extractor    *Extractor
	resolver     *DateRangeResolver
	retriever    *HybridRetriever
	assembler    *PlanAssembler
	composer     *PromptComposer
	guard        *TokenBudgetGuard
	operationTag string
	now          func() time.Time
}

// NewQueryService creates a query service.
// The index, embedder and cache parameters are optional (can be nil).
func NewQueryService(
	llm driven.LLMService,
	store driven.TranscriptStore,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	tokenizer driven.Tokenizer,
	cache driven.PlanCache,
	opts QueryOptions,
) *QueryService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &QueryService{
		llm:          llm,
		cache:        cache,
		extractor:    NewExtractor(llm, now),
		resolver:     NewDateRangeResolver(WithClock(now)),
		retriever:    NewHybridRetriever(store, index, embedder, opts.TopK),
		assembler:    NewPlanAssembler(now, opts.PlanTTL),
		composer:     NewPromptComposer(),
		guard:        NewTokenBudgetGuard(tokenizer, opts.TokenLimit),
		operationTag: opts.OperationTag,
		now:          now,
	}
}

// SetPromptStore sets the prompt store used for extraction and answers.
func (s *QueryService) SetPromptStore(store driven.PromptStore) {
	s.extractor.SetPromptStore(store)
	s.composer.SetPromptStore(store)
}

// Ask runs the full pipeline. Missing data and oversized prompts are
// answered with a notice; the generation model is not called for either.
func (s *QueryService) Ask(ctx context.Context, req domain.QueryRequest) (*domain.Answer, error) {
	ictx, plan, err := s.plan(ctx, req)
	if err != nil {
		return nil, err
	}

	intent := ictx.PrimaryIntent()

	if !plan.HasData() {
		logger.Info("%v for query", domain.ErrNoRelevantData)
		return &domain.Answer{
			Text:       NoRelevantDataMessage,
			Intent:     intent,
			IntentName: intent.String(),
			Notice:     domain.NoticeNoRelevantData,
			Plan:       plan,
		}, nil
	}

	systemPrompt, data := s.composer.Compose(ictx.OriginalQuery, plan)

	if s.guard.tokenizer == nil {
		return nil, errors.New("query service: no tokenizer configured")
	}

	budget, err := s.guard.Guard(systemPrompt, data)
	var tooMany *domain.TooManyTokensError
	if errors.As(err, &tooMany) {
		logger.Warn("Refusing generation: %v", tooMany)
		return &domain.Answer{
			Text:       TooManyTokensMessage(tooMany.Count),
			Intent:     intent,
			IntentName: intent.String(),
			Notice:     domain.NoticeTooManyTokens,
			TokenCount: tooMany.Count,
			Plan:       plan,
		}, nil
	}

	logger.Section("Generation")
	raw, err := s.llm.Complete(ctx, systemPrompt, data)
	if err != nil {
		return nil, fmt.Errorf("%w: generation: %w", domain.ErrUpstreamUnavailable, err)
	}

	res := Dispatch(ictx.Intents, raw)
	return &domain.Answer{
		Text:       res.Text,
		Intent:     res.Intent,
		IntentName: res.Intent.String(),
		TokenCount: budget.Count,
		Plan:       plan,
	}, nil
}

// Plan runs the pipeline through assembly without generation.
func (s *QueryService) Plan(ctx context.Context, req domain.QueryRequest) (*domain.QueryPlan, error) {
	_, plan, err := s.plan(ctx, req)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *QueryService) plan(
	ctx context.Context, req domain.QueryRequest,
) (*domain.QueryIntentContext, *domain.QueryPlan, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, domain.ErrLLMUnavailable)
	}
	ictx, err := s.extractor.Extract(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	window := s.resolver.Resolve(ictx.DateMentions)
	logger.Debug("Resolved window: %s", window)

	channels := req.ChannelIDs
	if len(channels) == 0 {
		channels = ictx.ChannelIDs()
	}
	filter := BuildFilter(window, s.operationTag,
		WithChannels(channels),
		WithKeywords(req.Keywords),
		WithSort(req.Sort),
	)

	cacheable := s.cache != nil && !req.HasOverrides()
	fingerprint := Fingerprint(ictx.OriginalQuery)
	if cacheable {
		if cached, ok := s.cache.Get(fingerprint, s.now()); ok {
			logger.Info("Plan cache hit: %s", cached.ID)
			return ictx, cached, nil
		}
	}

	result, err := s.retriever.Retrieve(ctx, query, filter)
	if err != nil {
		return nil, nil, err
	}

	plan := s.assembler.Assemble(*ictx, window, result.Documents, AssembleOptions{
		TimeCodes: req.TimeCodes,
		Degraded:  result.Degraded,
	})
	logger.Info("Assembled plan %s: %d lines from %d documents", plan.ID, len(plan.TranscriptLines), len(result.Documents))

	if cacheable {
		s.cache.Put(plan)
	}
	return ictx, plan, nil
}
