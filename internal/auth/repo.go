package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetCompany(ctx context.Context, id string) (*Company, error)
	HasSuperAdmin(ctx context.Context) (bool, error)
	CreateUser(ctx context.Context, user User) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, username, password_hash, role, company_id, full_name, is_active, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role,
		&user.CompanyID, &user.FullName, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername fetches a user by username.
func (r *PGRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// GetCompany fetches a company by id.
func (r *PGRepository) GetCompany(ctx context.Context, id string) (*Company, error) {
	var company Company
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, is_active, created_at, total_deliveries, active_couriers FROM companies WHERE id = $1`, id,
	).Scan(&company.ID, &company.Name, &company.IsActive, &company.CreatedAt,
		&company.TotalDeliveries, &company.ActiveCouriers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

// HasSuperAdmin reports whether any super-admin account exists.
func (r *PGRepository) HasSuperAdmin(ctx context.Context) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE role = $1`, RoleSuperAdmin).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("auth: count super admins: %w", err)
	}
	return count > 0, nil
}

// CreateUser inserts a new user record.
func (r *PGRepository) CreateUser(ctx context.Context, user User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, role, company_id, full_name, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Username, user.PasswordHash, user.Role, user.CompanyID,
		user.FullName, user.IsActive, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("auth: create user: %w", err)
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
