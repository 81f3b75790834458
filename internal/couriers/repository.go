package couriers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lucaamst/farmy/internal/auth"
	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Repository defines persistence operations for courier accounts.
type Repository interface {
	Get(ctx context.Context, companyID, id string) (*Courier, error)
	List(ctx context.Context, companyID string) ([]Courier, error)
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)
	Create(ctx context.Context, courier Courier, passwordHash string) error
	UpdateProfile(ctx context.Context, id, username, fullName string) error
	SetPassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	CountOpenOrders(ctx context.Context, courierID string) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const courierColumns = `id, username, COALESCE(full_name, ''), company_id, is_active, created_at`

func (r *repository) Get(ctx context.Context, companyID, id string) (*Courier, error) {
	var c Courier
	err := r.pool.QueryRow(ctx,
		`SELECT `+courierColumns+` FROM users WHERE id = $1 AND company_id = $2 AND role = $3`,
		id, companyID, auth.RoleCourier,
	).Scan(&c.ID, &c.Username, &c.FullName, &c.CompanyID, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, companyID string) ([]Courier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+courierColumns+` FROM users WHERE company_id = $1 AND role = $2 ORDER BY created_at`,
		companyID, auth.RoleCourier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var couriers []Courier
	for rows.Next() {
		var c Courier
		if err := rows.Scan(&c.ID, &c.Username, &c.FullName, &c.CompanyID, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		couriers = append(couriers, c)
	}
	return couriers, rows.Err()
}

func (r *repository) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE username = $1 AND id <> $2`, username, excludeID).Scan(&count)
	return count > 0, err
}

func (r *repository) Create(ctx context.Context, courier Courier, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, role, company_id, full_name, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		courier.ID, courier.Username, passwordHash, auth.RoleCourier, courier.CompanyID,
		courier.FullName, courier.IsActive, courier.CreatedAt)
	return err
}

func (r *repository) UpdateProfile(ctx context.Context, id, username, fullName string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET username = $2, full_name = $3 WHERE id = $1`, id, username, fullName)
	return err
}

func (r *repository) SetPassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	return err
}

func (r *repository) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $2 WHERE id = $1`, id, active)
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *repository) CountOpenOrders(ctx context.Context, courierID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE courier_id = $1 AND status IN ('assigned', 'in_progress')`,
		courierID).Scan(&count)
	return count, err
}

var _ Repository = (*repository)(nil)
