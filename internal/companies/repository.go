package companies

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lucaamst/farmy/internal/auth"
	"github.com/Lucaamst/farmy/internal/platform/db"
	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Repository defines persistence operations for company management.
type Repository interface {
	Get(ctx context.Context, id string) (*Company, error)
	List(ctx context.Context) ([]Company, error)
	NameTaken(ctx context.Context, name, excludeID string) (bool, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	CreateWithAdmin(ctx context.Context, company Company, admin auth.User) error
	Rename(ctx context.Context, id, name string) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	CountDelivered(ctx context.Context, companyID string) (int, error)
	CountActiveCouriers(ctx context.Context, companyID string) (int, error)
	SaveCounters(ctx context.Context, id string, deliveries, couriers int) error
	GetAdmin(ctx context.Context, companyID string) (*auth.User, error)
	SetUserPassword(ctx context.Context, userID, passwordHash string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const companyColumns = `id, name, is_active, created_at, total_deliveries, active_couriers`

func scanCompany(row pgx.Row) (*Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt, &c.TotalDeliveries, &c.ActiveCouriers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Company, error) {
	return scanCompany(r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
}

func (r *repository) List(ctx context.Context) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt, &c.TotalDeliveries, &c.ActiveCouriers); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *repository) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM companies WHERE name = $1 AND id <> $2`, name, excludeID).Scan(&count)
	return count > 0, err
}

func (r *repository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE username = $1`, username).Scan(&count)
	return count > 0, err
}

func (r *repository) CreateWithAdmin(ctx context.Context, company Company, admin auth.User) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO companies (id, name, is_active, created_at, total_deliveries, active_couriers)
			 VALUES ($1, $2, $3, $4, 0, 0)`,
			company.ID, company.Name, company.IsActive, company.CreatedAt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO users (id, username, password_hash, role, company_id, full_name, is_active, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			admin.ID, admin.Username, admin.PasswordHash, admin.Role, admin.CompanyID,
			admin.FullName, admin.IsActive, admin.CreatedAt)
		return err
	})
}

func (r *repository) Rename(ctx context.Context, id, name string) error {
	_, err := r.pool.Exec(ctx, `UPDATE companies SET name = $2 WHERE id = $1`, id, name)
	return err
}

func (r *repository) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE companies SET is_active = $2 WHERE id = $1`, id, active)
	return err
}

// Delete removes the company and everything it owns.
func (r *repository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE company_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM customers WHERE company_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM users WHERE company_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
		return err
	})
}

func (r *repository) CountDelivered(ctx context.Context, companyID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE company_id = $1 AND status = 'delivered'`, companyID).Scan(&count)
	return count, err
}

func (r *repository) CountActiveCouriers(ctx context.Context, companyID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE company_id = $1 AND role = $2 AND is_active = TRUE`,
		companyID, auth.RoleCourier).Scan(&count)
	return count, err
}

func (r *repository) SaveCounters(ctx context.Context, id string, deliveries, couriers int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE companies SET total_deliveries = $2, active_couriers = $3 WHERE id = $1`,
		id, deliveries, couriers)
	return err
}

func (r *repository) GetAdmin(ctx context.Context, companyID string) (*auth.User, error) {
	var user auth.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, role, company_id, full_name, is_active, created_at
		 FROM users WHERE company_id = $1 AND role = $2`,
		companyID, auth.RoleCompanyAdmin,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.CompanyID,
		&user.FullName, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) SetUserPassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, passwordHash)
	return err
}

var _ Repository = (*repository)(nil)
