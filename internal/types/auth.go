package types

import "time"

// TokenRequest asks for an API token for a named client.
type TokenRequest struct {
	ClientID string `json:"client_id" validate:"required,min=3,max=64,printascii"`
}

// Validate checks the client identifier.
func (r *TokenRequest) Validate() error {
	return toValidationError(validate.Struct(r))
}

// TokenResponse carries a signed API token.
type TokenResponse struct {
	ClientID  string    `json:"client_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
