package auth

import (
	"time"

	"github.com/angelmondragon/men4u-admin/internal/session"
)

// OTPRequest asks for a one-time password.
type OTPRequest struct {
	Mobile string `json:"mobile" validate:"required"`
	Role   string `json:"role"`
}

// LoginRequest exchanges the one-time password for a console session.
type LoginRequest struct {
	Mobile string `json:"mobile" validate:"required"`
	OTP    string `json:"otp" validate:"required"`
	Role   string `json:"role"`
}

// LoginResponse carries the console token and the signed-in operator.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
	ExpiresIn   int64           `json:"expires_in"`
	Profile     session.Profile `json:"profile"`
}
