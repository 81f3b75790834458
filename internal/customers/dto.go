package customers

// CreateCustomerRequest registers a customer explicitly, as opposed to the
// implicit creation that happens through order intake.
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
	Notes   string `json:"notes" validate:"max=1000"`
}

// UpdateCustomerRequest applies partial changes to a customer record.
type UpdateCustomerRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Notes   *string `json:"notes" validate:"omitempty,max=1000"`
}
