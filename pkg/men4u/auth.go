package men4u

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/types"
)

// OTPRequest asks the backend to send a one-time password to an operator.
type OTPRequest struct {
	Mobile    string `json:"mobile"`
	Role      string `json:"role,omitempty"`
	AppSource string `json:"app_source"`
}

// VerifyOTPRequest exchanges the one-time password for a credential.
type VerifyOTPRequest struct {
	Mobile    string `json:"mobile"`
	OTP       string `json:"otp"`
	Role      string `json:"role,omitempty"`
	AppSource string `json:"app_source"`
}

// LoginResult is the backend auth response: credential and actor profile together.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      types.ID  `json:"user_id"`
	Name        string    `json:"name"`
	Mobile      string    `json:"mobile"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
}

type loginResultWire struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   json.RawMessage `json:"expires_at"`
	UserID      types.ID        `json:"user_id"`
	Name        string          `json:"name"`
	Mobile      string          `json:"mobile"`
	Email       string          `json:"email"`
	Role        string          `json:"role"`
}

// RequestOTP sends the OTP for mobile. The call is public.
func (c *Client) RequestOTP(ctx context.Context, req OTPRequest) (*Ack, error) {
	if req.AppSource == "" {
		req.AppSource = c.appSource
	}
	var ack Ack
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   c.loginPath,
		public: true,
		body:   req,
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// VerifyOTP exchanges the OTP for a credential and profile. The call is public.
func (c *Client) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*LoginResult, error) {
	if req.AppSource == "" {
		req.AppSource = c.appSource
	}
	raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   c.verifyOTPPath,
		public: true,
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var wire loginResultWire
	if err := decodeObject(c.verifyOTPPath, raw, &wire); err != nil {
		return nil, err
	}
	if strings.TrimSpace(wire.AccessToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "login response carried no access token")
	}
	expiresAt, err := ParseTimestamp(wire.ExpiresAt)
	if err != nil {
		return nil, decodeError(c.verifyOTPPath, err)
	}
	tokenType := strings.TrimSpace(wire.TokenType)
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return &LoginResult{
		AccessToken: wire.AccessToken,
		TokenType:   tokenType,
		ExpiresAt:   expiresAt,
		UserID:      wire.UserID,
		Name:        wire.Name,
		Mobile:      wire.Mobile,
		Email:       wire.Email,
		Role:        wire.Role,
	}, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp reads expires_at as an RFC 3339 or naive ISO string (UTC), or
// as unix seconds.
func ParseTimestamp(raw json.RawMessage) (time.Time, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return time.Time{}, fmt.Errorf("expires_at is missing")
	}
	if trimmed[0] != '"' {
		if secs, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC(), nil
		}
		secs, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid expires_at %s", trimmed)
		}
		return time.Unix(0, int64(secs*float64(time.Second))).UTC(), nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return time.Time{}, fmt.Errorf("invalid expires_at %s", trimmed)
	}
	text = strings.TrimSpace(text)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid expires_at %q", text)
}
