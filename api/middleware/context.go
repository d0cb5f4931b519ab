package middleware

import (
	"context"

	"github.com/angelmondragon/men4u-admin/internal/session"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
)

// SessionFromContext returns the session placed by Auth.
func SessionFromContext(ctx context.Context) (*session.Session, error) {
	if ctx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	sess, ok := session.FromContext(ctx)
	if !ok || sess == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return sess, nil
}

// UserIDFromContext returns the signed-in operator id, or "".
func UserIDFromContext(ctx context.Context) string {
	sess, err := SessionFromContext(ctx)
	if err != nil {
		return ""
	}
	return sess.UserID().String()
}
