package session

import (
	"context"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/men4u"
	"github.com/angelmondragon/men4u-admin/pkg/types"
)

// Credential is the backend bearer credential.
type Credential struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Profile mirrors the signed-in operator.
type Profile struct {
	UserID types.ID `json:"user_id"`
	Name   string   `json:"name"`
	Mobile string   `json:"mobile"`
	Email  string   `json:"email"`
	Role   string   `json:"role"`
}

// ProfilePatch is a shallow partial update; nil fields are left untouched.
type ProfilePatch struct {
	Name   *string `json:"name,omitempty"`
	Mobile *string `json:"mobile,omitempty"`
	Email  *string `json:"email,omitempty"`
	Role   *string `json:"role,omitempty"`
}

// Record is everything persisted for one console session. Credential and
// profile are written together so neither can exist without the other being
// considered in the same write.
type Record struct {
	ID         string      `json:"id"`
	Credential *Credential `json:"credential,omitempty"`
	Profile    *Profile    `json:"profile,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (r Record) empty() bool {
	return r.Credential == nil && r.Profile == nil
}

func (r Record) clone() Record {
	out := r
	if r.Credential != nil {
		cred := *r.Credential
		out.Credential = &cred
	}
	if r.Profile != nil {
		profile := *r.Profile
		out.Profile = &profile
	}
	return out
}

// Session is the injectable handle every console operation receives.
type Session struct {
	mu     sync.RWMutex
	record Record
	store  Store
	now    func() time.Time
}

func newSession(record Record, store Store, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{record: record, store: store, now: now}
}

// ID returns the console session id.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.ID
}

// Login replaces credential and profile from one backend auth response and persists once.
func (s *Session) Login(ctx context.Context, result men4u.LoginResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.record.Credential = &Credential{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresAt:   result.ExpiresAt,
	}
	s.record.Profile = profileFrom(result)
	if s.record.CreatedAt.IsZero() {
		s.record.CreatedAt = now
	}
	s.record.UpdatedAt = now
	return s.persistLocked(ctx)
}

// Logout clears credential and profile and removes the persisted record.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.Credential = nil
	s.record.Profile = nil
	s.record.UpdatedAt = s.now()
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, s.record.ID)
}

// IsAuthenticated is true iff a credential exists and expires strictly after now.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred := s.record.Credential
	return cred != nil && cred.ExpiresAt.After(s.now())
}

// Token formats the Authorization value, or "" without a credential.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred := s.record.Credential
	if cred == nil {
		return ""
	}
	return cred.TokenType + " " + cred.AccessToken
}

// Credential returns a copy of the stored credential.
func (s *Session) Credential() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record.Credential == nil {
		return Credential{}, false
	}
	return *s.record.Credential, true
}

// Profile returns a copy of the stored profile.
func (s *Session) Profile() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record.Profile == nil {
		return Profile{}, false
	}
	return *s.record.Profile, true
}

// UserID is the actor id used to scope upstream requests.
func (s *Session) UserID() types.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record.Profile == nil {
		return ""
	}
	return s.record.Profile.UserID
}

// Actor returns what every upstream call needs: the Authorization value and
// the actor id. Without a credential the caller is unauthenticated.
func (s *Session) Actor() (string, types.ID, error) {
	token := s.Token()
	if token == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "No authentication token available")
	}
	return token, s.UserID(), nil
}

// SetProfile copies the profile fields of result, replacing any existing profile.
func (s *Session) SetProfile(ctx context.Context, result men4u.LoginResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.Profile = profileFrom(result)
	s.record.UpdatedAt = s.now()
	return s.persistLocked(ctx)
}

// ClearProfile removes the profile and re-persists.
func (s *Session) ClearProfile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.Profile = nil
	s.record.UpdatedAt = s.now()
	return s.persistLocked(ctx)
}

// UpdateProfile shallow-merges patch into the current profile.
func (s *Session) UpdateProfile(ctx context.Context, patch ProfilePatch) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.record.Profile == nil {
		return Profile{}, pkgerrors.New(pkgerrors.CodeConflict, "no profile to update")
	}
	updated := *s.record.Profile
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Mobile != nil {
		updated.Mobile = strings.TrimSpace(*patch.Mobile)
	}
	if patch.Email != nil {
		updated.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Role != nil {
		updated.Role = strings.TrimSpace(*patch.Role)
	}

	previous := s.record.Profile
	s.record.Profile = &updated
	s.record.UpdatedAt = s.now()
	if err := s.persistLocked(ctx); err != nil {
		s.record.Profile = previous
		return Profile{}, err
	}
	return updated, nil
}

// Snapshot returns a deep copy of the record.
func (s *Session) Snapshot() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.clone()
}

func (s *Session) persistLocked(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if s.record.empty() {
		return s.store.Delete(ctx, s.record.ID)
	}
	return s.store.Save(ctx, s.record.clone(), s.ttlLocked())
}

// ttlLocked keeps the persisted record exactly as long as the credential is valid.
func (s *Session) ttlLocked() time.Duration {
	if s.record.Credential == nil {
		return minRecordTTL
	}
	ttl := s.record.Credential.ExpiresAt.Sub(s.now())
	if ttl < minRecordTTL {
		return minRecordTTL
	}
	return ttl
}

const minRecordTTL = time.Second

func profileFrom(result men4u.LoginResult) *Profile {
	return &Profile{
		UserID: result.UserID,
		Name:   result.Name,
		Mobile: result.Mobile,
		Email:  result.Email,
		Role:   result.Role,
	}
}
