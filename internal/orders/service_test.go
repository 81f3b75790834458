package orders_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucaamst/farmy/internal/orders"
	"github.com/Lucaamst/farmy/internal/platform/httpx"
	_ "github.com/Lucaamst/farmy/testing"
)

type stubRepo struct {
	orders   map[string]*orders.Order
	couriers map[string]*orders.CourierInfo
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		orders:   map[string]*orders.Order{},
		couriers: map[string]*orders.CourierInfo{},
	}
}

func (s *stubRepo) Get(ctx context.Context, companyID, id string) (*orders.Order, error) {
	o, ok := s.orders[id]
	if !ok || o.CompanyID != companyID {
		return nil, httpx.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *stubRepo) List(ctx context.Context, companyID string) ([]orders.Order, error) {
	var out []orders.Order
	for _, o := range s.orders {
		if o.CompanyID == companyID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubRepo) Search(ctx context.Context, companyID string, filter orders.SearchFilter) ([]orders.Order, error) {
	return s.List(ctx, companyID)
}

func (s *stubRepo) ListByCustomer(ctx context.Context, companyID, customerID string) ([]orders.Order, error) {
	var out []orders.Order
	for _, o := range s.orders {
		if o.CompanyID == companyID && o.CustomerID != nil && *o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubRepo) ListOpenForCourier(ctx context.Context, courierID string) ([]orders.Order, error) {
	var out []orders.Order
	for _, o := range s.orders {
		if o.CourierID != nil && *o.CourierID == courierID &&
			(o.Status == orders.StatusAssigned || o.Status == orders.StatusInProgress) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubRepo) GetForCourier(ctx context.Context, courierID, id string) (*orders.Order, error) {
	o, ok := s.orders[id]
	if !ok || o.CourierID == nil || *o.CourierID != courierID {
		return nil, httpx.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *stubRepo) Create(ctx context.Context, order orders.Order) error {
	s.orders[order.ID] = &order
	return nil
}

func (s *stubRepo) UpdateSnapshot(ctx context.Context, order orders.Order) error {
	stored := s.orders[order.ID]
	stored.CustomerName = order.CustomerName
	stored.CustomerPhone = order.CustomerPhone
	stored.DeliveryAddress = order.DeliveryAddress
	stored.Reference = order.Reference
	return nil
}

func (s *stubRepo) Assign(ctx context.Context, id, courierID string) error {
	stored := s.orders[id]
	stored.CourierID = &courierID
	stored.Status = orders.StatusAssigned
	return nil
}

func (s *stubRepo) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time, smsSent bool) error {
	stored := s.orders[id]
	stored.Status = orders.StatusDelivered
	stored.DeliveredAt = &deliveredAt
	stored.SMSSent = smsSent
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id string) error {
	delete(s.orders, id)
	return nil
}

func (s *stubRepo) GetCourier(ctx context.Context, companyID, courierID string) (*orders.CourierInfo, error) {
	c, ok := s.couriers[courierID]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return c, nil
}

type stubDirectory struct {
	known   map[string]bool
	byPhone map[string]string
	created []string
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{known: map[string]bool{}, byPhone: map[string]string{}}
}

func (d *stubDirectory) Exists(ctx context.Context, companyID, customerID string) (bool, error) {
	return d.known[customerID], nil
}

func (d *stubDirectory) MatchPhone(ctx context.Context, companyID, phone string) (string, error) {
	return d.byPhone[phone], nil
}

func (d *stubDirectory) CreateFromOrder(ctx context.Context, companyID, name, phone, address string) (string, error) {
	id := "generated-" + phone
	d.known[id] = true
	d.byPhone[phone] = id
	d.created = append(d.created, id)
	return id, nil
}

type stubNotifier struct {
	sent []string
	err  error
}

func (n *stubNotifier) Send(ctx context.Context, phone, message, companyID string) error {
	n.sent = append(n.sent, phone)
	return n.err
}

func newTestService() (*orders.Service, *stubRepo, *stubDirectory, *stubNotifier) {
	repo := newStubRepo()
	dir := newStubDirectory()
	notifier := &stubNotifier{}
	svc := orders.NewService(repo, dir, notifier, slog.Default())
	return svc, repo, dir, notifier
}

func TestCreateLinksExplicitCustomer(t *testing.T) {
	svc, _, dir, _ := newTestService()
	dir.known["cust1"] = true
	id := "cust1"

	order, err := svc.Create(context.Background(), "c1", orders.CreateOrderRequest{
		CustomerName: "Mario", DeliveryAddress: "Via Roma 1", CustomerID: &id,
	})
	require.NoError(t, err)
	require.NotNil(t, order.CustomerID)
	assert.Equal(t, "cust1", *order.CustomerID)
}

func TestCreateUnknownExplicitCustomerFails(t *testing.T) {
	svc, _, _, _ := newTestService()
	id := "missing"

	_, err := svc.Create(context.Background(), "c1", orders.CreateOrderRequest{
		CustomerName: "Mario", DeliveryAddress: "Via Roma 1", CustomerID: &id,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestCreateWithoutPhoneStaysUnlinked(t *testing.T) {
	svc, _, dir, _ := newTestService()

	order, err := svc.Create(context.Background(), "c1", orders.CreateOrderRequest{
		CustomerName: "Mario", DeliveryAddress: "Via Roma 1",
	})
	require.NoError(t, err)
	assert.Nil(t, order.CustomerID)
	assert.Empty(t, dir.created)
}

func TestCreateReusesCustomerByPhone(t *testing.T) {
	svc, _, dir, _ := newTestService()

	first, err := svc.Create(context.Background(), "c1", orders.CreateOrderRequest{
		CustomerName: "Mario", DeliveryAddress: "Via Roma 1", CustomerPhone: "+391112223333",
	})
	require.NoError(t, err)
	require.NotNil(t, first.CustomerID)
	require.Len(t, dir.created, 1)

	// Same phone, different name: the existing customer is reused silently.
	second, err := svc.Create(context.Background(), "c1", orders.CreateOrderRequest{
		CustomerName: "Maria", DeliveryAddress: "Via Milano 2", CustomerPhone: "+391112223333",
	})
	require.NoError(t, err)
	require.NotNil(t, second.CustomerID)
	assert.Equal(t, *first.CustomerID, *second.CustomerID)
	assert.Len(t, dir.created, 1)
}

func TestUpdateDeliveredOrderRejected(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.orders["o1"] = &orders.Order{ID: "o1", CompanyID: "c1", Status: orders.StatusDelivered}

	name := "New Name"
	_, err := svc.Update(context.Background(), "c1", "o1", orders.UpdateOrderRequest{CustomerName: &name})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrConflict))
}

func TestUpdateAddressSuggestsReassignment(t *testing.T) {
	svc, repo, _, _ := newTestService()
	courier := "k1"
	repo.orders["o1"] = &orders.Order{
		ID: "o1", CompanyID: "c1", Status: orders.StatusAssigned,
		CourierID: &courier, DeliveryAddress: "Via Roma 1",
	}

	addr := "Via Milano 2"
	resp, err := svc.Update(context.Background(), "c1", "o1", orders.UpdateOrderRequest{DeliveryAddress: &addr})
	require.NoError(t, err)
	assert.True(t, resp.SuggestReassignment)

	// A pending order gets no hint even when the address changes.
	repo.orders["o2"] = &orders.Order{
		ID: "o2", CompanyID: "c1", Status: orders.StatusPending, DeliveryAddress: "Via Roma 1",
	}
	resp, err = svc.Update(context.Background(), "c1", "o2", orders.UpdateOrderRequest{DeliveryAddress: &addr})
	require.NoError(t, err)
	assert.False(t, resp.SuggestReassignment)
}

func TestAssignChecks(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.orders["o1"] = &orders.Order{ID: "o1", CompanyID: "c1", Status: orders.StatusPending}
	repo.orders["done"] = &orders.Order{ID: "done", CompanyID: "c1", Status: orders.StatusDelivered}
	repo.couriers["k1"] = &orders.CourierInfo{ID: "k1", IsActive: true}
	repo.couriers["k2"] = &orders.CourierInfo{ID: "k2", IsActive: false}

	order, err := svc.Assign(context.Background(), "c1", orders.AssignOrderRequest{OrderID: "o1", CourierID: "k1"})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusAssigned, order.Status)

	_, err = svc.Assign(context.Background(), "c1", orders.AssignOrderRequest{OrderID: "o1", CourierID: "k2"})
	assert.True(t, errors.Is(err, httpx.ErrConflict))

	_, err = svc.Assign(context.Background(), "c1", orders.AssignOrderRequest{OrderID: "done", CourierID: "k1"})
	assert.True(t, errors.Is(err, httpx.ErrConflict))
}

func TestDeleteDeliveredOrderRejected(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.orders["o1"] = &orders.Order{ID: "o1", CompanyID: "c1", Status: orders.StatusDelivered}

	err := svc.Delete(context.Background(), "c1", "o1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrConflict))
}

func TestMarkDeliveredSendsOneSMS(t *testing.T) {
	svc, repo, _, notifier := newTestService()
	courier := "k1"
	repo.orders["o1"] = &orders.Order{
		ID: "o1", CompanyID: "c1", Status: orders.StatusAssigned, CourierID: &courier,
		CustomerName: "Mario", CustomerPhone: "+391112223333", DeliveryAddress: "Via Roma 1",
	}

	order, err := svc.MarkDelivered(context.Background(), "k1", orders.MarkDeliveredRequest{OrderID: "o1"})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusDelivered, order.Status)
	assert.True(t, order.SMSSent)
	require.NotNil(t, order.DeliveredAt)
	assert.Equal(t, []string{"+391112223333"}, notifier.sent)

	// A second completion attempt is a conflict.
	_, err = svc.MarkDelivered(context.Background(), "k1", orders.MarkDeliveredRequest{OrderID: "o1"})
	assert.True(t, errors.Is(err, httpx.ErrConflict))
	assert.Len(t, notifier.sent, 1)
}

func TestMarkDeliveredSkipsSMSWithoutPhone(t *testing.T) {
	svc, repo, _, notifier := newTestService()
	courier := "k1"
	repo.orders["o1"] = &orders.Order{
		ID: "o1", CompanyID: "c1", Status: orders.StatusAssigned, CourierID: &courier,
		CustomerName: "Mario", DeliveryAddress: "Via Roma 1",
	}

	order, err := svc.MarkDelivered(context.Background(), "k1", orders.MarkDeliveredRequest{OrderID: "o1"})
	require.NoError(t, err)
	assert.False(t, order.SMSSent)
	assert.Empty(t, notifier.sent)
}

func TestMarkDeliveredSurvivesGatewayFailure(t *testing.T) {
	svc, repo, _, notifier := newTestService()
	notifier.err = errors.New("gateway down")
	courier := "k1"
	repo.orders["o1"] = &orders.Order{
		ID: "o1", CompanyID: "c1", Status: orders.StatusAssigned, CourierID: &courier,
		CustomerName: "Mario", CustomerPhone: "+391112223333", DeliveryAddress: "Via Roma 1",
	}

	order, err := svc.MarkDelivered(context.Background(), "k1", orders.MarkDeliveredRequest{OrderID: "o1"})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusDelivered, order.Status)
}

func TestMarkDeliveredRequiresOwnership(t *testing.T) {
	svc, repo, _, _ := newTestService()
	courier := "k1"
	repo.orders["o1"] = &orders.Order{
		ID: "o1", CompanyID: "c1", Status: orders.StatusAssigned, CourierID: &courier,
	}

	_, err := svc.MarkDelivered(context.Background(), "k2", orders.MarkDeliveredRequest{OrderID: "o1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestSearchInvertedRangeIsEmpty(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.orders["o1"] = &orders.Order{ID: "o1", CompanyID: "c1", Status: orders.StatusPending}

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-24 * time.Hour)
	result, err := svc.Search(context.Background(), "c1", orders.SearchFilter{DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestSearchUnknownStatusUnprocessable(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Search(context.Background(), "c1", orders.SearchFilter{Status: "shipped"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrUnprocessable))
}
