package security

// StatusResponse summarizes the caller's configured factors.
type StatusResponse struct {
	PINEnabled          bool     `json:"pin_enabled"`
	SMSEnabled          bool     `json:"sms_enabled"`
	WebAuthnCredentials []string `json:"webauthn_credentials"`
}

// SetupPINRequest configures the numeric PIN factor.
type SetupPINRequest struct {
	PIN string `json:"pin" validate:"required"`
}

// VerifyPINRequest checks a PIN against the stored hash.
type VerifyPINRequest struct {
	PIN string `json:"pin" validate:"required"`
}

// SendSMSCodeRequest requests a one-time code to the given phone.
type SendSMSCodeRequest struct {
	Phone string `json:"phone" validate:"required,max=50"`
}

// VerifySMSCodeRequest consumes a one-time code.
type VerifySMSCodeRequest struct {
	Phone string `json:"phone" validate:"required,max=50"`
	Code  string `json:"code" validate:"required"`
}

// ChallengeResponse starts a WebAuthn ceremony.
type ChallengeResponse struct {
	Challenge        string   `json:"challenge"`
	AllowCredentials []string `json:"allow_credentials,omitempty"`
}

// FinishRegisterRequest completes authenticator registration.
type FinishRegisterRequest struct {
	Challenge    string `json:"challenge" validate:"required"`
	CredentialID string `json:"credential_id" validate:"required"`
	PublicKey    string `json:"public_key" validate:"required"`
}

// FinishLoginRequest completes a WebAuthn assertion.
type FinishLoginRequest struct {
	Challenge    string `json:"challenge" validate:"required"`
	CredentialID string `json:"credential_id" validate:"required"`
	SignCount    uint32 `json:"sign_count"`
}
