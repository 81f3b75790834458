package couriers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Service implements courier account management for company admins. Every
// operation is scoped to the caller's company.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create adds a courier account to the company.
func (s *Service) Create(ctx context.Context, companyID string, req CreateCourierRequest) (*Courier, error) {
	taken, err := s.repo.UsernameTaken(ctx, req.Username, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: username already exists", httpx.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	courier := Courier{
		ID:        uuid.NewString(),
		Username:  req.Username,
		FullName:  req.FullName,
		CompanyID: companyID,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, courier, string(hash)); err != nil {
		return nil, err
	}
	s.logger.Info("courier created",
		slog.String("courier_id", courier.ID), slog.String("company_id", companyID))
	return &courier, nil
}

// List returns the company's couriers.
func (s *Service) List(ctx context.Context, companyID string) ([]Courier, error) {
	return s.repo.List(ctx, companyID)
}

// Update applies partial changes to a courier. Username collisions exclude
// the courier being updated.
func (s *Service) Update(ctx context.Context, companyID, id string, req UpdateCourierRequest) (*Courier, error) {
	courier, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.Username != nil && *req.Username != courier.Username {
		taken, err := s.repo.UsernameTaken(ctx, *req.Username, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: username already exists", httpx.ErrConflict)
		}
		courier.Username = *req.Username
	}
	if req.FullName != nil {
		courier.FullName = *req.FullName
	}
	if err := s.repo.UpdateProfile(ctx, id, courier.Username, courier.FullName); err != nil {
		return nil, err
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		if err := s.repo.SetPassword(ctx, id, string(hash)); err != nil {
			return nil, err
		}
	}
	return courier, nil
}

// Toggle flips a courier between active and disabled.
func (s *Service) Toggle(ctx context.Context, companyID, id string) (*Courier, error) {
	courier, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	courier.IsActive = !courier.IsActive
	if err := s.repo.SetActive(ctx, id, courier.IsActive); err != nil {
		return nil, err
	}
	return courier, nil
}

// Delete removes a courier. Refused while the courier still holds assigned
// or in-progress orders.
func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	if _, err := s.repo.Get(ctx, companyID, id); err != nil {
		return err
	}
	open, err := s.repo.CountOpenOrders(ctx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return fmt.Errorf("%w: courier has %d active deliveries", httpx.ErrConflict, open)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("courier deleted",
		slog.String("courier_id", id), slog.String("company_id", companyID))
	return nil
}
