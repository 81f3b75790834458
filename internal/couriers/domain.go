package couriers

import "time"

// Courier is a delivery account scoped to one company. It is a users row
// with the courier role, projected without the password hash.
type Courier struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	CompanyID string    `json:"company_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
