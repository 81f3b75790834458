package couriers

// CreateCourierRequest creates a courier account in the caller's company.
type CreateCourierRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"max=200"`
}

// UpdateCourierRequest changes a courier's username, display name or
// password. Omitted fields are left untouched.
type UpdateCourierRequest struct {
	Username *string `json:"username" validate:"omitempty,max=100"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	FullName *string `json:"full_name" validate:"omitempty,max=200"`
}
