package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/men4u-admin/pkg/auth"
	"github.com/angelmondragon/men4u-admin/pkg/config"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
	"github.com/angelmondragon/men4u-admin/pkg/men4u"
	"github.com/google/uuid"
)

// Manager creates sessions, issues console tokens and resolves them back.
type Manager struct {
	store Store
	cfg   config.ConsoleConfig
	now   func() time.Time
	logg  *logger.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock injects the time source used for expiry checks.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logg *logger.Logger) ManagerOption {
	return func(m *Manager) {
		m.logg = logg
	}
}

// NewManager wires the store and console token settings.
func NewManager(store Store, cfg config.ConsoleConfig, opts ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store required")
	}
	m := &Manager{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Issued is the outcome of a successful login.
type Issued struct {
	Session   *Session
	Token     string
	ExpiresAt time.Time
}

// Login opens a fresh session from a backend auth response and mints its console token.
func (m *Manager) Login(ctx context.Context, result *men4u.LoginResult) (*Issued, error) {
	if result == nil || strings.TrimSpace(result.AccessToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login response carried no credential")
	}
	now := m.now()
	if !result.ExpiresAt.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "credential already expired")
	}

	sess := newSession(Record{ID: uuid.NewString()}, m.store, m.now)
	if err := sess.Login(ctx, *result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist session")
	}

	token, expiresAt, err := auth.MintConsoleToken(m.cfg, now, auth.ConsoleTokenPayload{
		SessionID:           sess.ID(),
		UserID:              result.UserID.String(),
		Role:                result.Role,
		CredentialExpiresAt: result.ExpiresAt,
	})
	if err != nil {
		_ = sess.Logout(ctx)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue console token")
	}

	return &Issued{Session: sess, Token: token, ExpiresAt: expiresAt}, nil
}

// Verify resolves a console token to its session. A session whose credential
// has expired is logged out and rejected.
func (m *Manager) Verify(ctx context.Context, token string) (*Session, error) {
	claims, err := auth.ParseConsoleToken(m.cfg, strings.TrimSpace(token))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid console token")
	}

	record, err := m.store.Load(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load session")
	}

	sess := newSession(*record, m.store, m.now)
	if !sess.IsAuthenticated() {
		if err := sess.Logout(ctx); err != nil && m.logg != nil {
			m.logg.Error(m.logg.WithSessionID(ctx, sess.ID()), "session.logout_expired_failed", err)
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
	}
	return sess, nil
}

// Open returns the session stored under id without validating it.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	record, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return newSession(*record, m.store, m.now), nil
}

// Detached returns a session that is never persisted, for tests and tooling.
func Detached(record Record, now func() time.Time) *Session {
	return newSession(record, nil, now)
}
