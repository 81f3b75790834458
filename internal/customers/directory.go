package customers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Directory adapts the customer store for order intake, which only needs
// existence checks, exact phone matching and implicit creation.
type Directory struct {
	repo Repository
}

// NewDirectory constructs a Directory over the customer repository.
func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

// Exists reports whether the customer id belongs to the company.
func (d *Directory) Exists(ctx context.Context, companyID, customerID string) (bool, error) {
	_, err := d.repo.Get(ctx, companyID, customerID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MatchPhone returns the id of the company's customer with this exact
// phone, or "" when none matches.
func (d *Directory) MatchPhone(ctx context.Context, companyID, phone string) (string, error) {
	customer, err := d.repo.FindByPhone(ctx, companyID, phone, "")
	if err != nil {
		return "", err
	}
	if customer == nil {
		return "", nil
	}
	return customer.ID, nil
}

// CreateFromOrder registers a customer from order intake data.
func (d *Directory) CreateFromOrder(ctx context.Context, companyID, name, phone, address string) (string, error) {
	customer := Customer{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Name:      name,
		Phone:     phone,
		Address:   address,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.repo.Create(ctx, customer); err != nil {
		return "", err
	}
	return customer.ID, nil
}
