package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Lucaamst/farmy/internal/observability"
	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

const logListLimit = 50

// Service sends notifications, keeps the audit trail and maintains the
// monthly accounting record.
type Service struct {
	repo     Repository
	provider Provider
	logger   *slog.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewService constructs a Service around the configured provider. metrics
// may be nil.
func NewService(repo Repository, provider Provider, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, provider: provider, logger: logger, metrics: metrics, now: time.Now}
}

// Send attempts one SMS, appends a log entry and updates the current
// month's usage record. companyID attributes the attempt to a tenant;
// empty means unattributed. The returned error reflects the provider
// outcome only; bookkeeping failures are logged and swallowed so a flaky
// stats write never breaks the triggering business action.
func (s *Service) Send(ctx context.Context, phone, message, companyID string) error {
	sendErr := s.provider.Send(ctx, phone, message)

	entry := Log{
		ID:      uuid.NewString(),
		Phone:   phone,
		Message: message,
		Status:  StatusSent,
		Method:  s.provider.Name(),
		SentAt:  s.now().UTC(),
	}
	if companyID != "" {
		entry.CompanyID = &companyID
	}
	if sendErr != nil {
		entry.Status = StatusFailed
		entry.Error = sendErr.Error()
	}
	s.metrics.CountSMSAttempt(entry.Status)
	if err := s.repo.InsertLog(ctx, entry); err != nil {
		s.logger.Error("sms log write failed", slog.String("error", err.Error()))
	}
	if err := s.recordUsage(ctx, sendErr == nil, companyID); err != nil {
		s.logger.Error("sms usage accounting failed", slog.String("error", err.Error()))
	}
	return sendErr
}

// recordUsage upserts the (year, month) record: total always increments,
// success adds the live per-message price, and the per-company and per-day
// breakdowns track the attempt. The price snapshotted at record creation is
// kept for reference; increments deliberately follow the live settings.
func (s *Service) recordUsage(ctx context.Context, success bool, companyID string) error {
	now := s.now().UTC()
	settings, err := s.repo.GetCostSettings(ctx)
	if err != nil {
		return err
	}

	stats, err := s.repo.GetMonthlyStats(ctx, now.Year(), int(now.Month()))
	if err != nil {
		if !errors.Is(err, httpx.ErrNotFound) {
			return err
		}
		stats = &MonthlyStats{
			ID:             uuid.NewString(),
			Year:           now.Year(),
			Month:          int(now.Month()),
			CostAtCreation: settings.CostPerSMS,
			Currency:       settings.Currency,
			CreatedAt:      now,
		}
	}
	if stats.Companies == nil {
		stats.Companies = make(map[string]CompanyBreakdown)
	}
	if stats.Daily == nil {
		stats.Daily = make(map[string]Counters)
	}

	stats.TotalSent++
	if success {
		stats.Successful++
		stats.TotalCost += settings.CostPerSMS
	} else {
		stats.Failed++
	}

	if companyID != "" {
		entry := stats.Companies[companyID]
		if entry.CompanyName == "" {
			name, err := s.repo.CompanyName(ctx, companyID)
			if err == nil {
				entry.CompanyName = name
			}
		}
		if success {
			entry.Stats.Sent++
		} else {
			entry.Stats.Failed++
		}
		stats.Companies[companyID] = entry
	}

	day := stats.Daily[now.Format("2006-01-02")]
	if success {
		day.Sent++
	} else {
		day.Failed++
	}
	stats.Daily[now.Format("2006-01-02")] = day

	return s.repo.SaveMonthlyStats(ctx, *stats)
}

// Logs returns the newest entries, company-scoped unless the caller sees
// all tenants.
func (s *Service) Logs(ctx context.Context, companyID *string) ([]Log, error) {
	return s.repo.ListLogs(ctx, companyID, logListLimit)
}

// Stats assembles the super-admin accounting dashboard for the current
// year.
func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	now := s.now().UTC()
	settings, err := s.repo.GetCostSettings(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListMonthlyStats(ctx, now.Year())
	if err != nil {
		return nil, err
	}

	current := MonthlyStats{Year: now.Year(), Month: int(now.Month()), Currency: settings.Currency}
	var ytd YearToDate
	var successful int
	for _, m := range history {
		ytd.TotalSMS += m.TotalSent
		ytd.TotalCost += m.TotalCost
		successful += m.Successful
		if m.Month == current.Month {
			current = m
		}
	}
	if ytd.TotalSMS > 0 {
		ytd.SuccessRate = float64(successful) / float64(ytd.TotalSMS) * 100
	}

	breakdown := current.Companies
	if breakdown == nil {
		breakdown = map[string]CompanyBreakdown{}
	}
	if history == nil {
		history = []MonthlyStats{}
	}
	return &StatsResponse{
		CurrentMonth:       current,
		MonthlyHistory:     history,
		YearToDate:         ytd,
		CostSettings:       *settings,
		CompaniesBreakdown: breakdown,
	}, nil
}

// UpdateCostSettings sets the per-message price. Negative prices are
// rejected; the currency defaults to EUR.
func (s *Service) UpdateCostSettings(ctx context.Context, req UpdateCostSettingsRequest) (*CostSettings, error) {
	if req.CostPerSMS == nil || *req.CostPerSMS < 0 {
		return nil, fmt.Errorf("%w: cost_per_sms must be non-negative", httpx.ErrValidation)
	}
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}
	settings := CostSettings{
		CostPerSMS: *req.CostPerSMS,
		Currency:   currency,
		UpdatedAt:  s.now().UTC(),
	}
	if err := s.repo.SaveCostSettings(ctx, settings); err != nil {
		return nil, err
	}
	s.logger.Info("sms cost settings updated",
		slog.Float64("cost_per_sms", settings.CostPerSMS), slog.String("currency", settings.Currency))
	return &settings, nil
}

// MonthlyReport returns one month's record with its daily drill-down, 404
// when the month has no traffic on record.
func (s *Service) MonthlyReport(ctx context.Context, year, month int) (*MonthlyReportResponse, error) {
	stats, err := s.repo.GetMonthlyStats(ctx, year, month)
	if err != nil {
		return nil, err
	}
	daily := stats.Daily
	if daily == nil {
		daily = map[string]Counters{}
	}
	return &MonthlyReportResponse{
		MonthlyStats:   *stats,
		DailyBreakdown: daily,
		Period:         fmt.Sprintf("%04d-%02d", year, month),
	}, nil
}
