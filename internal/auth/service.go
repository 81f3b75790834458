package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenIssuer
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenIssuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, logger: logger}
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        *User    `json:"user"`
	Company     *Company `json:"company,omitempty"`
}

// Login verifies credentials and issues a bearer token. Credential and
// account-state failures are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", httpx.ErrUnauthorized)
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{AccessToken: token, TokenType: "bearer", User: user}
	if user.CompanyID != nil {
		company, err := s.repo.GetCompany(ctx, *user.CompanyID)
		if err != nil && !errors.Is(err, httpx.ErrNotFound) {
			return nil, err
		}
		result.Company = company
	}
	return result, nil
}

// ResolveBearer verifies a token and re-reads the subject's account. A token
// dies as soon as its account is disabled or removed, regardless of expiry.
func (s *Service) ResolveBearer(ctx context.Context, token string) (*User, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: user not found", httpx.ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", httpx.ErrUnauthorized)
	}
	return user, nil
}

// EnsureSuperAdmin seeds the initial super-admin account if none exists.
func (s *Service) EnsureSuperAdmin(ctx context.Context, username, password string) error {
	exists, err := s.repo.HasSuperAdmin(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hash seed password: %w", err)
	}
	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         RoleSuperAdmin,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return err
	}
	s.logger.Info("seeded super admin account", slog.String("username", username))
	return nil
}
