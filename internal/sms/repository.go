package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Repository defines persistence for the SMS audit trail and accounting.
type Repository interface {
	InsertLog(ctx context.Context, log Log) error
	ListLogs(ctx context.Context, companyID *string, limit int) ([]Log, error)
	GetCostSettings(ctx context.Context) (*CostSettings, error)
	SaveCostSettings(ctx context.Context, settings CostSettings) error
	GetMonthlyStats(ctx context.Context, year, month int) (*MonthlyStats, error)
	SaveMonthlyStats(ctx context.Context, stats MonthlyStats) error
	ListMonthlyStats(ctx context.Context, year int) ([]MonthlyStats, error)
	CompanyName(ctx context.Context, companyID string) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) InsertLog(ctx context.Context, log Log) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sms_logs (id, phone, message, status, method, error, company_id, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		log.ID, log.Phone, log.Message, log.Status, log.Method, log.Error, log.CompanyID, log.SentAt)
	return err
}

func (r *repository) ListLogs(ctx context.Context, companyID *string, limit int) ([]Log, error) {
	sql := `SELECT id, phone, message, status, method, COALESCE(error, ''), company_id, sent_at FROM sms_logs`
	args := []any{}
	if companyID != nil {
		sql += ` WHERE company_id = $1`
		args = append(args, *companyID)
	}
	args = append(args, limit)
	sql += fmt.Sprintf(` ORDER BY sent_at DESC LIMIT $%d`, len(args))
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []Log
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.Phone, &l.Message, &l.Status, &l.Method, &l.Error, &l.CompanyID, &l.SentAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// GetCostSettings falls back to the default pricing when the singleton row
// has never been written.
func (r *repository) GetCostSettings(ctx context.Context) (*CostSettings, error) {
	var s CostSettings
	err := r.pool.QueryRow(ctx,
		`SELECT cost_per_sms, currency, updated_at FROM sms_cost_settings WHERE id = 1`,
	).Scan(&s.CostPerSMS, &s.Currency, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			def := DefaultCostSettings()
			return &def, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) SaveCostSettings(ctx context.Context, settings CostSettings) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sms_cost_settings (id, cost_per_sms, currency, updated_at)
		 VALUES (1, $1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET cost_per_sms = $1, currency = $2, updated_at = $3`,
		settings.CostPerSMS, settings.Currency, settings.UpdatedAt)
	return err
}

const monthlyColumns = `id, year, month, total_sent, successful, failed, total_cost,
	cost_per_sms_at_creation, currency, companies_breakdown, daily_breakdown, created_at`

func (r *repository) GetMonthlyStats(ctx context.Context, year, month int) (*MonthlyStats, error) {
	var m MonthlyStats
	err := r.pool.QueryRow(ctx,
		`SELECT `+monthlyColumns+` FROM sms_monthly_stats WHERE year = $1 AND month = $2`, year, month,
	).Scan(&m.ID, &m.Year, &m.Month, &m.TotalSent, &m.Successful, &m.Failed, &m.TotalCost,
		&m.CostAtCreation, &m.Currency, &m.Companies, &m.Daily, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// SaveMonthlyStats upserts the whole record keyed (year, month). The read-
// modify-write cycle matches the per-attempt accounting contract; the
// unique constraint keeps concurrent first writes from splitting a month.
func (r *repository) SaveMonthlyStats(ctx context.Context, stats MonthlyStats) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sms_monthly_stats
		   (id, year, month, total_sent, successful, failed, total_cost,
		    cost_per_sms_at_creation, currency, companies_breakdown, daily_breakdown, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (year, month) DO UPDATE SET
		   total_sent = $4, successful = $5, failed = $6, total_cost = $7,
		   companies_breakdown = $10, daily_breakdown = $11`,
		stats.ID, stats.Year, stats.Month, stats.TotalSent, stats.Successful, stats.Failed,
		stats.TotalCost, stats.CostAtCreation, stats.Currency, stats.Companies, stats.Daily, stats.CreatedAt)
	return err
}

func (r *repository) ListMonthlyStats(ctx context.Context, year int) ([]MonthlyStats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+monthlyColumns+` FROM sms_monthly_stats WHERE year = $1 ORDER BY month`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stats []MonthlyStats
	for rows.Next() {
		var m MonthlyStats
		if err := rows.Scan(&m.ID, &m.Year, &m.Month, &m.TotalSent, &m.Successful, &m.Failed, &m.TotalCost,
			&m.CostAtCreation, &m.Currency, &m.Companies, &m.Daily, &m.CreatedAt); err != nil {
			return nil, err
		}
		stats = append(stats, m)
	}
	return stats, rows.Err()
}

func (r *repository) CompanyName(ctx context.Context, companyID string) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT name FROM companies WHERE id = $1`, companyID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", httpx.ErrNotFound
		}
		return "", err
	}
	return name, nil
}

var _ Repository = (*repository)(nil)
