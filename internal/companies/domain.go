package companies

import "time"

// Company is a tenant. The delivery and courier counters are derived values,
// recomputed and persisted whenever the list endpoint is read; they are not
// authoritative between reads.
type Company struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	TotalDeliveries int       `json:"total_deliveries"`
	ActiveCouriers  int       `json:"active_couriers"`
}
