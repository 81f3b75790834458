package customers

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Repository defines persistence operations for customer records.
type Repository interface {
	Get(ctx context.Context, companyID, id string) (*Customer, error)
	List(ctx context.Context, companyID string) ([]Customer, error)
	Search(ctx context.Context, companyID, query string) ([]Customer, error)
	FindByPhone(ctx context.Context, companyID, phone, excludeID string) (*Customer, error)
	Create(ctx context.Context, customer Customer) error
	Update(ctx context.Context, customer Customer) error
	Delete(ctx context.Context, id string) error
	CountOrders(ctx context.Context, customerID string) (int, error)
	OrderAggregates(ctx context.Context, customerID string) (int, *time.Time, error)
	SaveAggregates(ctx context.Context, id string, total int, last *time.Time) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const customerColumns = `id, company_id, name, phone, address, notes, total_orders, last_order_date, created_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Phone, &c.Address, &c.Notes,
		&c.TotalOrders, &c.LastOrderDate, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, companyID, id string) (*Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1 AND company_id = $2`, id, companyID))
}

func collect(rows pgx.Rows) ([]Customer, error) {
	defer rows.Close()
	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Phone, &c.Address, &c.Notes,
			&c.TotalOrders, &c.LastOrderDate, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *repository) List(ctx context.Context, companyID string) ([]Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE company_id = $1 ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repository) Search(ctx context.Context, companyID, query string) ([]Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+customerColumns+` FROM customers
		 WHERE company_id = $1 AND (name ILIKE '%' || $2 || '%' OR phone ILIKE '%' || $2 || '%')
		 ORDER BY created_at DESC`, companyID, query)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// FindByPhone returns nil, nil when no customer matches.
func (r *repository) FindByPhone(ctx context.Context, companyID, phone, excludeID string) (*Customer, error) {
	customer, err := scanCustomer(r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE company_id = $1 AND phone = $2 AND id <> $3`,
		companyID, phone, excludeID))
	if errors.Is(err, httpx.ErrNotFound) {
		return nil, nil
	}
	return customer, err
}

func (r *repository) Create(ctx context.Context, customer Customer) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO customers (id, company_id, name, phone, address, notes, total_orders, last_order_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		customer.ID, customer.CompanyID, customer.Name, customer.Phone, customer.Address,
		customer.Notes, customer.TotalOrders, customer.LastOrderDate, customer.CreatedAt)
	return err
}

func (r *repository) Update(ctx context.Context, customer Customer) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE customers SET name = $2, phone = $3, address = $4, notes = $5 WHERE id = $1`,
		customer.ID, customer.Name, customer.Phone, customer.Address, customer.Notes)
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	return err
}

func (r *repository) CountOrders(ctx context.Context, customerID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders WHERE customer_id = $1`, customerID).Scan(&count)
	return count, err
}

func (r *repository) OrderAggregates(ctx context.Context, customerID string) (int, *time.Time, error) {
	var total int
	var last *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT count(*), max(created_at) FROM orders WHERE customer_id = $1`, customerID).Scan(&total, &last)
	return total, last, err
}

func (r *repository) SaveAggregates(ctx context.Context, id string, total int, last *time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE customers SET total_orders = $2, last_order_date = $3 WHERE id = $1`, id, total, last)
	return err
}

var _ Repository = (*repository)(nil)
