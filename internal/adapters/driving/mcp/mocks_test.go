package mcp

import (
	"context"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
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

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report   driving.IngestReport
	err      error
	lastPath string
}

func (m *mockIngestService) IngestJob(_ context.Context, _ *domain.JobResult) (driving.IngestReport, error) {
	return m.report, m.err
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) (driving.IngestReport, error) {
	m.lastPath = path
	return m.report, m.err
}

func (m *mockIngestService) Watch(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIngestService) EnsureIndex(_ context.Context) error {
	return m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings *domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error { return m.err }

func (m *mockSettingsService) Set(_, _ string) error { return m.err }

func (m *mockSettingsService) SetAPIKey(_ string) error { return m.err }

func (m *mockSettingsService) Validate() error { return m.err }

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateOpenAI() error { return m.err }

func (m *mockSettingsService) ValidateVectorIndex() error { return m.err }
