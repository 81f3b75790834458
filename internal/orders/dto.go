package orders

import "time"

// CreateOrderRequest submits a new delivery. CustomerID takes precedence
// over phone matching when both are present.
type CreateOrderRequest struct {
	CustomerName    string  `json:"customer_name" validate:"required,max=200"`
	DeliveryAddress string  `json:"delivery_address" validate:"required,max=500"`
	CustomerPhone   string  `json:"customer_phone" validate:"max=50"`
	Reference       string  `json:"reference_number" validate:"max=100"`
	CustomerID      *string `json:"customer_id"`
}

// UpdateOrderRequest edits the delivery snapshot of a pending or assigned
// order. Omitted fields are left untouched.
type UpdateOrderRequest struct {
	CustomerName    *string `json:"customer_name" validate:"omitempty,max=200"`
	DeliveryAddress *string `json:"delivery_address" validate:"omitempty,max=500"`
	CustomerPhone   *string `json:"customer_phone" validate:"omitempty,max=50"`
	Reference       *string `json:"reference_number" validate:"omitempty,max=100"`
}

// UpdateOrderResponse carries the updated order plus a hint that the
// assigned courier may want re-routing after an address change.
type UpdateOrderResponse struct {
	Order               *Order `json:"order"`
	SuggestReassignment bool   `json:"suggest_reassignment"`
}

// AssignOrderRequest routes an order to a courier of the same company.
type AssignOrderRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	CourierID string `json:"courier_id" validate:"required"`
}

// MarkDeliveredRequest completes a delivery held by the calling courier.
type MarkDeliveredRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

// SearchFilter narrows order listings. Zero values mean "no constraint".
type SearchFilter struct {
	Query     string
	Status    Status
	CourierID string
	DateFrom  *time.Time
	DateTo    *time.Time
}
