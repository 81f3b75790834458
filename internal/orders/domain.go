package orders

import "time"

// Status is the order lifecycle state. delivered is terminal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusDelivered  Status = "delivered"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusDelivered:
		return true
	}
	return false
}

// Order is a delivery task. The customer name/phone/address are a
// denormalized snapshot taken at creation and editable until delivery;
// CustomerID is the optional link resolved by the intake rule.
type Order struct {
	ID              string     `json:"id"`
	CompanyID       string     `json:"company_id"`
	CustomerName    string     `json:"customer_name"`
	CustomerPhone   string     `json:"customer_phone"`
	DeliveryAddress string     `json:"delivery_address"`
	Reference       string     `json:"reference_number"`
	CustomerID      *string    `json:"customer_id"`
	CourierID       *string    `json:"courier_id"`
	Status          Status     `json:"status"`
	SMSSent         bool       `json:"sms_sent"`
	CreatedAt       time.Time  `json:"created_at"`
	DeliveredAt     *time.Time `json:"delivered_at"`
}

// CanEdit reports whether the order may still be modified or removed.
// Delivered orders are immutable; in-progress ones are locked to the courier.
func (o Order) CanEdit() bool {
	return o.Status == StatusPending || o.Status == StatusAssigned
}
