package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockTranscriptStore implements driven.TranscriptStore for testing.
// FindByFilter applies the filter to jobs the way the real stores do.
type mockTranscriptStore struct {
	mu        sync.Mutex
	jobs      []domain.JobResult
	findErr   error
	idsErr    error
	saveErr   error
	filterArg *domain.RetrievalFilter
	idsArg    []string
	findCalls int
}

func (m *mockTranscriptStore) FindByFilter(_ context.Context, filter domain.RetrievalFilter) ([]domain.JobResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	m.filterArg = &filter
	if m.findErr != nil {
		return nil, m.findErr
	}
	return filter.Apply(m.jobs), nil
}

func (m *mockTranscriptStore) FindByIDs(_ context.Context, ids []string) ([]domain.JobResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idsArg = ids
	if m.idsErr != nil {
		return nil, m.idsErr
	}
	var out []domain.JobResult
	for _, job := range m.jobs {
		for _, id := range ids {
			if job.ID == id {
				out = append(out, job)
				break
			}
		}
	}
	return out, nil
}

func (m *mockTranscriptStore) Save(_ context.Context, job *domain.JobResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.jobs = append(m.jobs, *job)
	return nil
}

func (m *mockTranscriptStore) Close() error {
	return nil
}

func (m *mockTranscriptStore) saved() []domain.JobResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.JobResult(nil), m.jobs...)
}

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	mu          sync.Mutex
	hits        []driven.VectorHit
	searchErr   error
	upsertErr   error
	ensureErr   error
	points      int
	upserted    []string
	ensuredSize int
	topKArg     int
	searchCalls int
}

func (m *mockVectorIndex) EnsureCollection(_ context.Context, vectorSize int) error {
	m.ensuredSize = vectorSize
	return m.ensureErr
}

func (m *mockVectorIndex) Upsert(_ context.Context, job domain.JobResult) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	m.upserted = append(m.upserted, job.ID)
	return m.points, nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, _ domain.RetrievalFilter, topK int) ([]driven.VectorHit, error) {
	m.searchCalls++
	m.topKArg = topK
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits, nil
}

func (m *mockVectorIndex) Close() error {
	return nil
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding  []float32
	embedErr   error
	dims       int
	embedCalls int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 3
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	chatResponse     string
	chatErr          error
	completeResponse string
	completeErr      error
	chatCalls        int
	completeCalls    int
	lastMessages     []driven.ChatMessage
	lastSystem       string
	lastData         string
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.chatCalls++
	m.lastMessages = messages
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.chatResponse, nil
}

func (m *mockLLMService) Complete(_ context.Context, systemPrompt, data string) (string, error) {
	m.completeCalls++
	m.lastSystem = systemPrompt
	m.lastData = data
	if m.completeErr != nil {
		return "", m.completeErr
	}
	return m.completeResponse, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// wordTokenizer counts whitespace-separated words.
type wordTokenizer struct{}

func (wordTokenizer) Count(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}

func (wordTokenizer) Encoding() string {
	return "words"
}

// mockPlanCache implements driven.PlanCache for testing.
type mockPlanCache struct {
	mu    sync.Mutex
	plans map[string]*domain.QueryPlan
	gets  int
	puts  int
}

func newMockPlanCache() *mockPlanCache {
	return &mockPlanCache{plans: make(map[string]*domain.QueryPlan)}
}

func (m *mockPlanCache) Get(fingerprint string, now time.Time) (*domain.QueryPlan, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	p, ok := m.plans[fingerprint]
	if !ok || p.Expired(now) {
		return nil, false
	}
	return p, true
}

func (m *mockPlanCache) Put(plan *domain.QueryPlan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.plans[plan.Fingerprint] = plan
}

func (m *mockPlanCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.plans)
}

// mockFileWatcher implements driven.FileWatcher over a test-fed channel.
type mockFileWatcher struct {
	events   chan driven.FileEvent
	watchErr error
	dir      string
}

func (m *mockFileWatcher) Watch(ctx context.Context, dir string) (<-chan driven.FileEvent, error) {
	if m.watchErr != nil {
		return nil, m.watchErr
	}
	m.dir = dir
	out := make(chan driven.FileEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-m.events:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (m *mockFileWatcher) Close() error {
	return nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// --- Fixtures ---

func newSegment(text string, start time.Time, dur time.Duration) domain.TranscriptSegment {
	return domain.TranscriptSegment{
		Text:      text,
		StartTime: start,
		EndTime:   start.Add(dur),
	}
}

func newJob(id string, channel int, start time.Time, texts ...string) domain.JobResult {
	j := domain.JobResult{
		ID:        id,
		ChannelID: channel,
		Operation: domain.OperationTranscription,
		Start:     start,
		End:       start.Add(time.Hour),
	}
	for i, text := range texts {
		j.Segments = append(j.Segments, newSegment(text, start.Add(time.Duration(i)*10*time.Second), 10*time.Second))
	}
	return j
}

// mockConfigStore implements driven.ConfigStore over a map.
type mockConfigStore struct {
	values map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	b, _ := m.values[key].(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	s, _ := m.values[key].([]string)
	return s
}

func (m *mockConfigStore) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }

func (m *mockConfigStore) Load() error { return nil }

func (m *mockConfigStore) Path() string { return ":memory:" }

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	openAIErr error
	vectorErr error
	lastKey   string
}

func (m *mockAIValidator) ValidateOpenAI(settings *domain.AppSettings) error {
	m.lastKey = settings.OpenAI.APIKey
	return m.openAIErr
}

func (m *mockAIValidator) ValidateVectorIndex(_ *domain.AppSettings) error {
	return m.vectorErr
}
