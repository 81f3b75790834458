package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lucaamst/farmy/internal/auth"
	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// CourierInfo is the slice of a courier account the order flow needs.
type CourierInfo struct {
	ID       string
	FullName string
	IsActive bool
}

// Repository defines persistence operations for orders.
type Repository interface {
	Get(ctx context.Context, companyID, id string) (*Order, error)
	List(ctx context.Context, companyID string) ([]Order, error)
	Search(ctx context.Context, companyID string, filter SearchFilter) ([]Order, error)
	ListByCustomer(ctx context.Context, companyID, customerID string) ([]Order, error)
	ListOpenForCourier(ctx context.Context, courierID string) ([]Order, error)
	GetForCourier(ctx context.Context, courierID, id string) (*Order, error)
	Create(ctx context.Context, order Order) error
	UpdateSnapshot(ctx context.Context, order Order) error
	Assign(ctx context.Context, id, courierID string) error
	MarkDelivered(ctx context.Context, id string, deliveredAt time.Time, smsSent bool) error
	Delete(ctx context.Context, id string) error
	GetCourier(ctx context.Context, companyID, courierID string) (*CourierInfo, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const orderColumns = `id, company_id, customer_name, customer_phone, delivery_address,
	COALESCE(reference_number, ''), customer_id, courier_id, status, sms_sent, created_at, delivered_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CompanyID, &o.CustomerName, &o.CustomerPhone, &o.DeliveryAddress,
		&o.Reference, &o.CustomerID, &o.CourierID, &o.Status, &o.SMSSent, &o.CreatedAt, &o.DeliveredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func collect(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CompanyID, &o.CustomerName, &o.CustomerPhone, &o.DeliveryAddress,
			&o.Reference, &o.CustomerID, &o.CourierID, &o.Status, &o.SMSSent, &o.CreatedAt, &o.DeliveredAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id string) (*Order, error) {
	return scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND company_id = $2`, id, companyID))
}

func (r *repository) List(ctx context.Context, companyID string) ([]Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE company_id = $1 ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repository) Search(ctx context.Context, companyID string, filter SearchFilter) ([]Order, error) {
	sql := `SELECT ` + orderColumns + ` FROM orders WHERE company_id = $1`
	args := []any{companyID}
	if filter.Query != "" {
		args = append(args, filter.Query)
		n := len(args)
		sql += fmt.Sprintf(` AND (customer_name ILIKE '%%' || $%d || '%%'
			OR customer_phone ILIKE '%%' || $%d || '%%'
			OR reference_number ILIKE '%%' || $%d || '%%')`, n, n, n)
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		sql += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.CourierID != "" {
		args = append(args, filter.CourierID)
		sql += fmt.Sprintf(` AND courier_id = $%d`, len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		sql += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		sql += fmt.Sprintf(` AND created_at <= $%d`, len(args))
	}
	sql += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repository) ListByCustomer(ctx context.Context, companyID, customerID string) ([]Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE company_id = $1 AND customer_id = $2 ORDER BY created_at DESC`,
		companyID, customerID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repository) ListOpenForCourier(ctx context.Context, courierID string) ([]Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE courier_id = $1 AND status IN ('assigned', 'in_progress')
		 ORDER BY created_at`, courierID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repository) GetForCourier(ctx context.Context, courierID, id string) (*Order, error) {
	return scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND courier_id = $2`, id, courierID))
}

func (r *repository) Create(ctx context.Context, order Order) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO orders (id, company_id, customer_name, customer_phone, delivery_address,
		   reference_number, customer_id, courier_id, status, sms_sent, created_at, delivered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		order.ID, order.CompanyID, order.CustomerName, order.CustomerPhone, order.DeliveryAddress,
		order.Reference, order.CustomerID, order.CourierID, order.Status, order.SMSSent,
		order.CreatedAt, order.DeliveredAt)
	return err
}

func (r *repository) UpdateSnapshot(ctx context.Context, order Order) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE orders SET customer_name = $2, customer_phone = $3, delivery_address = $4, reference_number = $5
		 WHERE id = $1`,
		order.ID, order.CustomerName, order.CustomerPhone, order.DeliveryAddress, order.Reference)
	return err
}

func (r *repository) Assign(ctx context.Context, id, courierID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE orders SET courier_id = $2, status = $3 WHERE id = $1`, id, courierID, StatusAssigned)
	return err
}

func (r *repository) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time, smsSent bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, delivered_at = $3, sms_sent = $4 WHERE id = $1`,
		id, StatusDelivered, deliveredAt, smsSent)
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	return err
}

func (r *repository) GetCourier(ctx context.Context, companyID, courierID string) (*CourierInfo, error) {
	var info CourierInfo
	err := r.pool.QueryRow(ctx,
		`SELECT id, COALESCE(full_name, ''), is_active FROM users
		 WHERE id = $1 AND company_id = $2 AND role = $3`,
		courierID, companyID, auth.RoleCourier,
	).Scan(&info.ID, &info.FullName, &info.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &info, nil
}

var _ Repository = (*repository)(nil)
