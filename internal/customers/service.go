package customers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Service implements customer management for company admins.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create registers a customer. A non-empty phone must be unique within the
// company.
func (s *Service) Create(ctx context.Context, companyID string, req CreateCustomerRequest) (*Customer, error) {
	if req.Phone != "" {
		existing, err := s.repo.FindByPhone(ctx, companyID, req.Phone, "")
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: phone number already registered", httpx.ErrConflict)
		}
	}
	customer := Customer{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		Notes:     req.Notes,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns the company's customers with their order aggregates refreshed.
func (s *Service) List(ctx context.Context, companyID string) ([]Customer, error) {
	customers, err := s.repo.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.refreshAggregates(ctx, customers)
}

// Search filters the company's customers by name or phone substring.
func (s *Service) Search(ctx context.Context, companyID, query string) ([]Customer, error) {
	customers, err := s.repo.Search(ctx, companyID, query)
	if err != nil {
		return nil, err
	}
	return s.refreshAggregates(ctx, customers)
}

func (s *Service) refreshAggregates(ctx context.Context, customers []Customer) ([]Customer, error) {
	for i := range customers {
		total, last, err := s.repo.OrderAggregates(ctx, customers[i].ID)
		if err != nil {
			return nil, err
		}
		customers[i].TotalOrders = total
		customers[i].LastOrderDate = last
		if err := s.repo.SaveAggregates(ctx, customers[i].ID, total, last); err != nil {
			return nil, err
		}
	}
	return customers, nil
}

// Get returns one customer in the caller's company.
func (s *Service) Get(ctx context.Context, companyID, id string) (*Customer, error) {
	return s.repo.Get(ctx, companyID, id)
}

// Update applies partial changes. Phone uniqueness checks exclude the
// customer being updated.
func (s *Service) Update(ctx context.Context, companyID, id string, req UpdateCustomerRequest) (*Customer, error) {
	customer, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.Phone != nil && *req.Phone != "" && *req.Phone != customer.Phone {
		existing, err := s.repo.FindByPhone(ctx, companyID, *req.Phone, id)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: phone number already registered", httpx.ErrConflict)
		}
	}
	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}
	if err := s.repo.Update(ctx, *customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Delete removes a customer. Refused while orders still reference it.
func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	if _, err := s.repo.Get(ctx, companyID, id); err != nil {
		return err
	}
	orders, err := s.repo.CountOrders(ctx, id)
	if err != nil {
		return err
	}
	if orders > 0 {
		return fmt.Errorf("%w: customer has %d orders on record", httpx.ErrConflict, orders)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("customer deleted",
		slog.String("customer_id", id), slog.String("company_id", companyID))
	return nil
}
