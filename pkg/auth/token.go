package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/men4u-admin/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintConsoleToken issues a signed JWT whose jti is the console session id. The expiry is the
// earlier of the backend credential expiry and the configured maximum session length.
func MintConsoleToken(cfg config.ConsoleConfig, now time.Time, payload ConsoleTokenPayload) (string, time.Time, error) {
	if cfg.JWTSecret == "" {
		return "", time.Time{}, fmt.Errorf("jwt secret is required")
	}
	if cfg.JWTIssuer == "" {
		return "", time.Time{}, fmt.Errorf("jwt issuer is required")
	}
	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		return "", time.Time{}, fmt.Errorf("session id is required")
	}
	if !payload.CredentialExpiresAt.After(now) {
		return "", time.Time{}, fmt.Errorf("credential already expired at %s", payload.CredentialExpiresAt.Format(time.RFC3339))
	}

	expiresAt := payload.CredentialExpiresAt
	if max := cfg.MaxSession(); max > 0 && now.Add(max).Before(expiresAt) {
		expiresAt = now.Add(max)
	}

	claims := ConsoleTokenClaims{
		UserID: payload.UserID,
		Role:   payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWTIssuer,
			Subject:   payload.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        sessionID,
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing jwt: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseConsoleToken validates the JWT string and returns typed claims.
func ParseConsoleToken(cfg config.ConsoleConfig, tokenString string) (*ConsoleTokenClaims, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &ConsoleTokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.JWTIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("token has no session id")
	}

	return claims, nil
}
