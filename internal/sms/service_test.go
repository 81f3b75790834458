package sms_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucaamst/farmy/internal/platform/httpx"
	"github.com/Lucaamst/farmy/internal/sms"
	_ "github.com/Lucaamst/farmy/testing"
)

type stubRepo struct {
	logs     []sms.Log
	settings *sms.CostSettings
	monthly  map[[2]int]*sms.MonthlyStats
	names    map[string]string
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		monthly: map[[2]int]*sms.MonthlyStats{},
		names:   map[string]string{},
	}
}

func (s *stubRepo) InsertLog(ctx context.Context, log sms.Log) error {
	s.logs = append(s.logs, log)
	return nil
}

func (s *stubRepo) ListLogs(ctx context.Context, companyID *string, limit int) ([]sms.Log, error) {
	var out []sms.Log
	for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		l := s.logs[i]
		if companyID != nil && (l.CompanyID == nil || *l.CompanyID != *companyID) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *stubRepo) GetCostSettings(ctx context.Context) (*sms.CostSettings, error) {
	if s.settings == nil {
		def := sms.DefaultCostSettings()
		return &def, nil
	}
	return s.settings, nil
}

func (s *stubRepo) SaveCostSettings(ctx context.Context, settings sms.CostSettings) error {
	s.settings = &settings
	return nil
}

func (s *stubRepo) GetMonthlyStats(ctx context.Context, year, month int) (*sms.MonthlyStats, error) {
	stats, ok := s.monthly[[2]int{year, month}]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *stats
	return &copied, nil
}

func (s *stubRepo) SaveMonthlyStats(ctx context.Context, stats sms.MonthlyStats) error {
	s.monthly[[2]int{stats.Year, stats.Month}] = &stats
	return nil
}

func (s *stubRepo) ListMonthlyStats(ctx context.Context, year int) ([]sms.MonthlyStats, error) {
	var out []sms.MonthlyStats
	for key, stats := range s.monthly {
		if key[0] == year {
			out = append(out, *stats)
		}
	}
	return out, nil
}

func (s *stubRepo) CompanyName(ctx context.Context, companyID string) (string, error) {
	name, ok := s.names[companyID]
	if !ok {
		return "", httpx.ErrNotFound
	}
	return name, nil
}

type stubProvider struct {
	err   error
	calls int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Send(ctx context.Context, phone, message string) error {
	p.calls++
	return p.err
}

func newTestService(repo sms.Repository, provider sms.Provider) *sms.Service {
	return sms.NewService(repo, provider, slog.Default(), nil)
}

func TestSendSuccessAccountsCostAndBreakdown(t *testing.T) {
	repo := newStubRepo()
	repo.names["c1"] = "Acme"
	cost := 0.10
	repo.settings = &sms.CostSettings{CostPerSMS: cost, Currency: "EUR"}
	provider := &stubProvider{}
	svc := newTestService(repo, provider)

	require.NoError(t, svc.Send(context.Background(), "+39111", "ciao", "c1"))
	assert.Equal(t, 1, provider.calls)

	require.Len(t, repo.logs, 1)
	assert.Equal(t, sms.StatusSent, repo.logs[0].Status)
	assert.Equal(t, "stub", repo.logs[0].Method)

	now := time.Now().UTC()
	stats, err := repo.GetMonthlyStats(context.Background(), now.Year(), int(now.Month()))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSent)
	assert.Equal(t, 1, stats.Successful)
	assert.Equal(t, 0, stats.Failed)
	assert.InDelta(t, cost, stats.TotalCost, 1e-9)
	require.Contains(t, stats.Companies, "c1")
	assert.Equal(t, "Acme", stats.Companies["c1"].CompanyName)
	assert.Equal(t, 1, stats.Companies["c1"].Stats.Sent)
	assert.Contains(t, stats.Daily, now.Format("2006-01-02"))
}

func TestSendFailureCountsButCostsNothing(t *testing.T) {
	repo := newStubRepo()
	provider := &stubProvider{err: errors.New("gateway down")}
	svc := newTestService(repo, provider)

	err := svc.Send(context.Background(), "+39111", "ciao", "c1")
	require.Error(t, err)

	require.Len(t, repo.logs, 1)
	assert.Equal(t, sms.StatusFailed, repo.logs[0].Status)
	assert.NotEmpty(t, repo.logs[0].Error)

	now := time.Now().UTC()
	stats, err := repo.GetMonthlyStats(context.Background(), now.Year(), int(now.Month()))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSent)
	assert.Equal(t, 0, stats.Successful)
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, stats.TotalCost)
	assert.Equal(t, 1, stats.Companies["c1"].Stats.Failed)
}

func TestMidMonthPriceChangeAffectsSubsequentSendsOnly(t *testing.T) {
	repo := newStubRepo()
	repo.settings = &sms.CostSettings{CostPerSMS: 0.05, Currency: "EUR"}
	svc := newTestService(repo, &stubProvider{})

	require.NoError(t, svc.Send(context.Background(), "+39111", "ciao", ""))

	now := time.Now().UTC()
	stats, err := repo.GetMonthlyStats(context.Background(), now.Year(), int(now.Month()))
	require.NoError(t, err)
	assert.InDelta(t, 0.05, stats.CostAtCreation, 1e-9)
	assert.InDelta(t, 0.05, stats.TotalCost, 1e-9)

	// Raise the price: the record keeps its creation snapshot but the next
	// increment uses the new price.
	repo.settings = &sms.CostSettings{CostPerSMS: 0.10, Currency: "EUR"}
	require.NoError(t, svc.Send(context.Background(), "+39111", "ciao", ""))

	stats, err = repo.GetMonthlyStats(context.Background(), now.Year(), int(now.Month()))
	require.NoError(t, err)
	assert.InDelta(t, 0.05, stats.CostAtCreation, 1e-9)
	assert.InDelta(t, 0.15, stats.TotalCost, 1e-9)
}

func TestLogsScopedByCompany(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubProvider{})

	require.NoError(t, svc.Send(context.Background(), "+39111", "ciao", "c1"))
	require.NoError(t, svc.Send(context.Background(), "+39222", "ciao", "c2"))

	all, err := svc.Logs(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	c1 := "c1"
	scoped, err := svc.Logs(context.Background(), &c1)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "+39111", scoped[0].Phone)
}

func TestUpdateCostSettingsValidation(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubProvider{})

	negative := -0.01
	_, err := svc.UpdateCostSettings(context.Background(), sms.UpdateCostSettingsRequest{CostPerSMS: &negative})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))

	price := 0.10
	settings, err := svc.UpdateCostSettings(context.Background(), sms.UpdateCostSettingsRequest{CostPerSMS: &price})
	require.NoError(t, err)
	assert.Equal(t, "EUR", settings.Currency)
	assert.InDelta(t, 0.10, settings.CostPerSMS, 1e-9)
}

func TestMonthlyReportMissingIs404(t *testing.T) {
	svc := newTestService(newStubRepo(), &stubProvider{})
	_, err := svc.MonthlyReport(context.Background(), 2026, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestStatsAggregatesYearToDate(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubProvider{})

	require.NoError(t, svc.Send(context.Background(), "+39111", "ciao", "c1"))
	require.NoError(t, svc.Send(context.Background(), "+39222", "ciao", "c1"))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.YearToDate.TotalSMS)
	assert.InDelta(t, 100.0, stats.YearToDate.SuccessRate, 1e-9)
	assert.Equal(t, 2, stats.CurrentMonth.TotalSent)
	assert.Equal(t, 2, stats.CompaniesBreakdown["c1"].Stats.Sent)
}
