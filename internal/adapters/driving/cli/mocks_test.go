package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driving"
)

type mockQueryService struct {
	answer  *domain.Answer
	plan    *domain.QueryPlan
	err     error
	lastReq domain.QueryRequest
}

func (m *mockQueryService) Ask(_ context.Context, req domain.QueryRequest) (*domain.Answer, error) {
	m.lastReq = req
	return m.answer, m.err
}

func (m *mockQueryService) Plan(_ context.Context, req domain.QueryRequest) (*domain.QueryPlan, error) {
	m.lastReq = req
	return m.plan, m.err
}

type mockIngestService struct {
	reports     map[string]driving.IngestReport
	errs        map[string]error
	watchDir    string
	watchErr    error
	ensureErr   error
	ensureCalls int
}

func (m *mockIngestService) IngestJob(_ context.Context, _ *domain.JobResult) (driving.IngestReport, error) {
	return driving.IngestReport{Jobs: 1}, nil
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) (driving.IngestReport, error) {
	return m.reports[path], m.errs[path]
}

func (m *mockIngestService) Watch(_ context.Context, dir string) error {
	m.watchDir = dir
	return m.watchErr
}

func (m *mockIngestService) EnsureIndex(_ context.Context) error {
	m.ensureCalls++
	return m.ensureErr
}

type mockSettingsService struct {
	settings       *domain.AppSettings
	getErr         error
	setErr         error
	validateErr    error
	openAIErr      error
	vectorIndexErr error
	set            map[string]string
	apiKey         string
}

func newMockSettingsService() *mockSettingsService {
	settings := domain.DefaultAppSettings()
	settings.OpenAI.APIKey = "sk-test-1234567890"
	return &mockSettingsService{settings: &settings, set: map[string]string{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	return m.settings, m.getErr
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = settings
	return m.setErr
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetAPIKey(apiKey string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.apiKey = apiKey
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateOpenAI() error { return m.openAIErr }

func (m *mockSettingsService) ValidateVectorIndex() error { return m.vectorIndexErr }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	query    *mockQueryService
	ingest   *mockIngestService
	settings *mockSettingsService
}

// setupTestServices installs mock services and resets command flags. The
// returned func restores the previous state.
func setupTestServices() (*testServices, func()) {
	prevQuery, prevIngest, prevSettings, prevLoader := queryService, ingestService, settingsService, serviceLoader

	ts := &testServices{
		query: &mockQueryService{
			answer: &domain.Answer{Text: "[SUMMARY] All quiet.", IntentName: "summary"},
			plan: &domain.QueryPlan{
				ID:              "plan-1",
				Intents:         []string{"Summary"},
				TranscriptLines: []string{"first line", "second line"},
				CreatedAt:       time.Date(2025, 8, 5, 12, 0, 0, 0, time.UTC),
			},
		},
		ingest:   &mockIngestService{reports: map[string]driving.IngestReport{}, errs: map[string]error{}},
		settings: newMockSettingsService(),
	}
	queryService = ts.query
	ingestService = ts.ingest
	settingsService = ts.settings
	serviceLoader = nil
	resetFlags()

	return ts, func() {
		queryService, ingestService, settingsService, serviceLoader = prevQuery, prevIngest, prevSettings, prevLoader
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

func resetFlags() {
	askFlags = queryFlags{}
	planFlags = queryFlags{}
	serveAddr = ""
	serveMCP = true
	verbose = false
}
