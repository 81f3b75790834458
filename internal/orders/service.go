package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// CustomerDirectory is the slice of customer management the order intake
// rule depends on. Implemented by the customers package.
type CustomerDirectory interface {
	// Exists reports whether the customer id belongs to the company.
	Exists(ctx context.Context, companyID, customerID string) (bool, error)
	// MatchPhone returns the id of the company's customer with this exact
	// phone, or "" when none matches.
	MatchPhone(ctx context.Context, companyID, phone string) (string, error)
	// CreateFromOrder registers a customer from order intake data and
	// returns its id.
	CreateFromOrder(ctx context.Context, companyID, name, phone, address string) (string, error)
}

// Notifier sends one SMS and records its outcome. Failures are the
// notifier's to log; callers only learn whether the attempt succeeded.
type Notifier interface {
	Send(ctx context.Context, phone, message, companyID string) error
}

// Service implements order management and the courier delivery flow.
type Service struct {
	repo      Repository
	customers CustomerDirectory
	notifier  Notifier
	logger    *slog.Logger
}

// NewService constructs a Service instance.
func NewService(repo Repository, customers CustomerDirectory, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, customers: customers, notifier: notifier, logger: logger}
}

// Create submits an order and resolves its customer linkage:
// an explicit customer_id wins and must belong to the company; without a
// phone the order stays unlinked; a phone matching an existing customer
// links to it without touching that record; otherwise a customer is created
// from the order data. Two concurrent intakes with the same new phone can
// each miss the other and produce duplicate customers; there is no unique
// constraint backing the pre-check, so the race degrades to a duplicate
// record rather than an error.
func (s *Service) Create(ctx context.Context, companyID string, req CreateOrderRequest) (*Order, error) {
	order := Order{
		ID:              uuid.NewString(),
		CompanyID:       companyID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		Reference:       req.Reference,
		Status:          StatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	switch {
	case req.CustomerID != nil && *req.CustomerID != "":
		ok, err := s.customers.Exists(ctx, companyID, *req.CustomerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: customer not found", httpx.ErrNotFound)
		}
		order.CustomerID = req.CustomerID
	case req.CustomerPhone == "":
		// unlinked
	default:
		matched, err := s.customers.MatchPhone(ctx, companyID, req.CustomerPhone)
		if err != nil {
			return nil, err
		}
		if matched == "" {
			matched, err = s.customers.CreateFromOrder(ctx, companyID,
				req.CustomerName, req.CustomerPhone, req.DeliveryAddress)
			if err != nil {
				return nil, err
			}
		}
		order.CustomerID = &matched
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns the company's orders, newest first.
func (s *Service) List(ctx context.Context, companyID string) ([]Order, error) {
	return s.repo.List(ctx, companyID)
}

// Search filters the company's orders. An inverted date range matches
// nothing rather than erroring.
func (s *Service) Search(ctx context.Context, companyID string, filter SearchFilter) ([]Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrUnprocessable, filter.Status)
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return []Order{}, nil
	}
	return s.repo.Search(ctx, companyID, filter)
}

// ListByCustomer returns the order history of one customer.
func (s *Service) ListByCustomer(ctx context.Context, companyID, customerID string) ([]Order, error) {
	ok, err := s.customers.Exists(ctx, companyID, customerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: customer not found", httpx.ErrNotFound)
	}
	return s.repo.ListByCustomer(ctx, companyID, customerID)
}

// Update edits the delivery snapshot of a pending or assigned order. When
// the address of an already-assigned order changes, the response flags that
// the courier assignment may want revisiting.
func (s *Service) Update(ctx context.Context, companyID, id string, req UpdateOrderRequest) (*UpdateOrderResponse, error) {
	order, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !order.CanEdit() {
		return nil, fmt.Errorf("%w: order is %s and can no longer be edited", httpx.ErrConflict, order.Status)
	}
	suggestReassignment := false
	if req.CustomerName != nil {
		order.CustomerName = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		order.CustomerPhone = *req.CustomerPhone
	}
	if req.DeliveryAddress != nil && *req.DeliveryAddress != order.DeliveryAddress {
		order.DeliveryAddress = *req.DeliveryAddress
		suggestReassignment = order.Status == StatusAssigned
	}
	if req.Reference != nil {
		order.Reference = *req.Reference
	}
	if err := s.repo.UpdateSnapshot(ctx, *order); err != nil {
		return nil, err
	}
	return &UpdateOrderResponse{Order: order, SuggestReassignment: suggestReassignment}, nil
}

// Assign routes an order to an active courier of the same company.
// Re-assignment is allowed any time before delivery.
func (s *Service) Assign(ctx context.Context, companyID string, req AssignOrderRequest) (*Order, error) {
	order, err := s.repo.Get(ctx, companyID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status == StatusDelivered {
		return nil, fmt.Errorf("%w: delivered orders cannot be reassigned", httpx.ErrConflict)
	}
	courier, err := s.repo.GetCourier(ctx, companyID, req.CourierID)
	if err != nil {
		return nil, err
	}
	if !courier.IsActive {
		return nil, fmt.Errorf("%w: courier is disabled", httpx.ErrConflict)
	}
	if err := s.repo.Assign(ctx, order.ID, courier.ID); err != nil {
		return nil, err
	}
	order.CourierID = &courier.ID
	order.Status = StatusAssigned
	return order, nil
}

// Delete removes an order unless it has been delivered.
func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	order, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return err
	}
	if order.Status == StatusDelivered {
		return fmt.Errorf("%w: delivered orders cannot be removed", httpx.ErrConflict)
	}
	return s.repo.Delete(ctx, id)
}

// Deliveries lists the calling courier's open orders.
func (s *Service) Deliveries(ctx context.Context, courierID string) ([]Order, error) {
	return s.repo.ListOpenForCourier(ctx, courierID)
}

// MarkDelivered completes a delivery held by the calling courier and fires
// at most one customer notification. A missing phone skips the SMS
// silently; a gateway failure is logged and the completion still succeeds.
func (s *Service) MarkDelivered(ctx context.Context, courierID string, req MarkDeliveredRequest) (*Order, error) {
	order, err := s.repo.GetForCourier(ctx, courierID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status == StatusDelivered {
		return nil, fmt.Errorf("%w: order already delivered", httpx.ErrConflict)
	}

	now := time.Now().UTC()
	smsSent := order.CustomerPhone != ""
	if err := s.repo.MarkDelivered(ctx, order.ID, now, smsSent); err != nil {
		return nil, err
	}
	order.Status = StatusDelivered
	order.DeliveredAt = &now
	order.SMSSent = smsSent

	if smsSent {
		message := fmt.Sprintf(
			"Ciao %s, la tua consegna è stata completata con successo all'indirizzo %s. Grazie!",
			order.CustomerName, order.DeliveryAddress)
		if err := s.notifier.Send(ctx, order.CustomerPhone, message, order.CompanyID); err != nil {
			s.logger.Warn("delivery notification failed",
				slog.String("order_id", order.ID), slog.String("error", err.Error()))
		}
	}
	return order, nil
}
