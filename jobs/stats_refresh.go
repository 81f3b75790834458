package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// StatsRefreshJob recomputes the derived aggregates that list endpoints
// otherwise refresh on read: company delivery/courier counters and customer
// order counts. Running it on a schedule keeps dashboards close to the
// truth even for tenants nobody lists.
type StatsRefreshJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStatsRefreshJob constructs the job.
func NewStatsRefreshJob(pool *pgxpool.Pool, logger *slog.Logger) *StatsRefreshJob {
	return &StatsRefreshJob{pool: pool, logger: logger}
}

// Handle processes TaskStatsRefresh tasks.
func (j *StatsRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload StatsRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	ids, err := j.companyIDs(ctx, payload.Scope)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			return j.refreshCompany(gctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := j.refreshCustomers(ctx, payload.Scope); err != nil {
		return err
	}
	j.logger.Info("aggregate refresh complete",
		slog.String("scope", payload.Scope), slog.Int("companies", len(ids)))
	return nil
}

func (j *StatsRefreshJob) companyIDs(ctx context.Context, scope string) ([]string, error) {
	if scope != "" && scope != "all" {
		return []string{scope}, nil
	}
	rows, err := j.pool.Query(ctx, `SELECT id FROM companies`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (j *StatsRefreshJob) refreshCompany(ctx context.Context, id string) error {
	_, err := j.pool.Exec(ctx,
		`UPDATE companies SET
		   total_deliveries = (SELECT count(*) FROM orders WHERE company_id = companies.id AND status = 'delivered'),
		   active_couriers = (SELECT count(*) FROM users WHERE company_id = companies.id AND role = 'courier' AND is_active = TRUE)
		 WHERE id = $1`, id)
	return err
}

func (j *StatsRefreshJob) refreshCustomers(ctx context.Context, scope string) error {
	sql := `UPDATE customers SET
		  total_orders = (SELECT count(*) FROM orders WHERE customer_id = customers.id),
		  last_order_date = (SELECT max(created_at) FROM orders WHERE customer_id = customers.id)`
	if scope != "" && scope != "all" {
		_, err := j.pool.Exec(ctx, sql+` WHERE company_id = $1`, scope)
		return err
	}
	_, err := j.pool.Exec(ctx, sql)
	return err
}
