package security

import "time"

// Credential is one registered WebAuthn authenticator. SignCount must only
// ever grow; a regression means a cloned authenticator.
type Credential struct {
	ID        string    `json:"credential_id"`
	PublicKey string    `json:"public_key"`
	SignCount uint32    `json:"sign_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Record holds one user's optional security factors. Created lazily on
// first access with everything disabled.
type Record struct {
	UserID      string       `json:"user_id"`
	PINHash     string       `json:"-"`
	PINEnabled  bool         `json:"pin_enabled"`
	SMSEnabled  bool         `json:"sms_enabled"`
	Credentials []Credential `json:"webauthn_credentials"`
	CreatedAt   time.Time    `json:"created_at"`
}
