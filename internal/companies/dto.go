package companies

// CreateCompanyRequest creates a company together with its admin account.
type CreateCompanyRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	AdminUsername string `json:"admin_username" validate:"required,max=100"`
	AdminPassword string `json:"admin_password" validate:"required,min=6"`
}

// UpdateCompanyRequest renames a company.
type UpdateCompanyRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// DeleteCompanyRequest confirms deletion with the super-admin's own password.
type DeleteCompanyRequest struct {
	Password string `json:"password" validate:"required"`
}

// ResetPasswordRequest sets a new password on the company's admin account.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}
