package companies

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/Lucaamst/farmy/internal/auth"
	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Service implements company management for super admins.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create provisions a company together with its admin account in one
// transaction. Company names and usernames are globally unique.
func (s *Service) Create(ctx context.Context, req CreateCompanyRequest) (*Company, error) {
	taken, err := s.repo.NameTaken(ctx, req.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: company name already exists", httpx.ErrConflict)
	}
	taken, err = s.repo.UsernameTaken(ctx, req.AdminUsername)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: username already exists", httpx.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	company := Company{
		ID:        uuid.NewString(),
		Name:      req.Name,
		IsActive:  true,
		CreatedAt: now,
	}
	admin := auth.User{
		ID:           uuid.NewString(),
		Username:     req.AdminUsername,
		PasswordHash: string(hash),
		Role:         auth.RoleCompanyAdmin,
		CompanyID:    &company.ID,
		IsActive:     true,
		CreatedAt:    now,
	}
	if err := s.repo.CreateWithAdmin(ctx, company, admin); err != nil {
		return nil, err
	}
	s.logger.Info("company created",
		slog.String("company_id", company.ID),
		slog.String("admin_username", admin.Username))
	return &company, nil
}

// List returns all companies with their delivery and courier counters
// recomputed from the live data and persisted back.
func (s *Service) List(ctx context.Context) ([]Company, error) {
	companies, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range companies {
		c := &companies[i]
		g.Go(func() error {
			delivered, err := s.repo.CountDelivered(gctx, c.ID)
			if err != nil {
				return err
			}
			couriers, err := s.repo.CountActiveCouriers(gctx, c.ID)
			if err != nil {
				return err
			}
			c.TotalDeliveries = delivered
			c.ActiveCouriers = couriers
			return s.repo.SaveCounters(gctx, c.ID, delivered, couriers)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return companies, nil
}

// Rename changes a company's name, keeping names unique across tenants.
func (s *Service) Rename(ctx context.Context, id string, req UpdateCompanyRequest) (*Company, error) {
	company, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.repo.NameTaken(ctx, req.Name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: company name already exists", httpx.ErrConflict)
	}
	if err := s.repo.Rename(ctx, id, req.Name); err != nil {
		return nil, err
	}
	company.Name = req.Name
	return company, nil
}

// Delete removes a company and all its data. The caller must confirm with
// their own password.
func (s *Service) Delete(ctx context.Context, caller *auth.User, id, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(caller.PasswordHash), []byte(password)); err != nil {
		return fmt.Errorf("%w: password confirmation failed", httpx.ErrForbidden)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("company deleted", slog.String("company_id", id), slog.String("by", caller.Username))
	return nil
}

// Toggle flips a company between active and disabled.
func (s *Service) Toggle(ctx context.Context, id string) (*Company, error) {
	company, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	company.IsActive = !company.IsActive
	if err := s.repo.SetActive(ctx, id, company.IsActive); err != nil {
		return nil, err
	}
	return company, nil
}

// ResetAdminPassword replaces the password of the company's admin account.
func (s *Service) ResetAdminPassword(ctx context.Context, id, newPassword string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	admin, err := s.repo.GetAdmin(ctx, id)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.SetUserPassword(ctx, admin.ID, string(hash)); err != nil {
		return err
	}
	s.logger.Info("company admin password reset", slog.String("company_id", id))
	return nil
}
