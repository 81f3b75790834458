package auth

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleCompanyAdmin Role = "company_admin"
	RoleCourier      Role = "courier"
)

// Valid reports whether the role is a known one.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleCourier:
		return true
	default:
		return false
	}
}

// User represents an account of any role. Super-admins have no company.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CompanyID    *string   `json:"company_id"`
	FullName     string    `json:"full_name"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Company is the slice of company state returned with a login response.
type Company struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	TotalDeliveries int       `json:"total_deliveries"`
	ActiveCouriers  int       `json:"active_couriers"`
}
