package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ConsoleTokenPayload captures the data available when minting a console token.
type ConsoleTokenPayload struct {
	SessionID string
	UserID    string
	Role      string
	// CredentialExpiresAt is the men4u credential expiry; the console token never outlives it.
	CredentialExpiresAt time.Time
}

// ConsoleTokenClaims represents the typed JWT handed to the dashboard.
type ConsoleTokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SessionID returns the session identifier carried as the token jti.
func (c *ConsoleTokenClaims) SessionID() string {
	if c == nil {
		return ""
	}
	return c.ID
}
