package customers

import "time"

// Customer is a delivery recipient owned by one company. Phone numbers are
// unique within a company and drive order linking. TotalOrders and
// LastOrderDate are derived aggregates, refreshed when the customer is read
// through list or search.
type Customer struct {
	ID            string     `json:"id"`
	CompanyID     string     `json:"company_id"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	Notes         string     `json:"notes"`
	TotalOrders   int        `json:"total_orders"`
	LastOrderDate *time.Time `json:"last_order_date"`
	CreatedAt     time.Time  `json:"created_at"`
}
