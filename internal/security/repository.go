package security

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists per-user security records.
type Repository interface {
	// GetOrCreate returns the user's record, writing a fresh disabled one
	// on first access.
	GetOrCreate(ctx context.Context, userID string) (*Record, error)
	SavePIN(ctx context.Context, userID, pinHash string) error
	SetSMSEnabled(ctx context.Context, userID string, enabled bool) error
	SaveCredentials(ctx context.Context, userID string, credentials []Credential) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetOrCreate(ctx context.Context, userID string) (*Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, COALESCE(pin_hash, ''), pin_enabled, sms_enabled, credentials, created_at
		 FROM user_security WHERE user_id = $1`, userID,
	).Scan(&rec.UserID, &rec.PINHash, &rec.PINEnabled, &rec.SMSEnabled, &rec.Credentials, &rec.CreatedAt)
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	rec = Record{UserID: userID, Credentials: []Credential{}, CreatedAt: time.Now().UTC()}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO user_security (user_id, pin_hash, pin_enabled, sms_enabled, credentials, created_at)
		 VALUES ($1, NULL, FALSE, FALSE, $2, $3)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, rec.Credentials, rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) SavePIN(ctx context.Context, userID, pinHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE user_security SET pin_hash = $2, pin_enabled = TRUE WHERE user_id = $1`, userID, pinHash)
	return err
}

func (r *repository) SetSMSEnabled(ctx context.Context, userID string, enabled bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE user_security SET sms_enabled = $2 WHERE user_id = $1`, userID, enabled)
	return err
}

func (r *repository) SaveCredentials(ctx context.Context, userID string, credentials []Credential) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE user_security SET credentials = $2 WHERE user_id = $1`, userID, credentials)
	return err
}

var _ Repository = (*repository)(nil)
