package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/men4u-admin/api/responses"
	"github.com/angelmondragon/men4u-admin/internal/session"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
)

// SessionVerifier resolves a console token to its live session.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*session.Session, error)
}

// Auth guards console routes. The token comes from the Authorization header or,
// failing that, the console cookie. An expired session is signed out by the verifier.
func Auth(verifier SessionVerifier, cookieName string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ConsoleToken(r, cookieName)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			sess, err := verifier.Verify(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := session.WithContext(r.Context(), sess)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sess.ID())
				if userID := sess.UserID(); !userID.IsZero() {
					ctx = logg.WithUserID(ctx, userID.String())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ConsoleToken extracts the raw console token from a request.
func ConsoleToken(r *http.Request, cookieName string) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw != "" {
		if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			raw = strings.TrimSpace(raw[7:])
		}
		return raw
	}
	if cookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}
