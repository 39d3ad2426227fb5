// Package session owns the client-side credential store: access/refresh
// tokens plus the active profile snapshot. The store is the single writer of
// persisted credentials; the API client and pages only go through it.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quizhub/internal/model"
)

// Credentials is the committed session state. At most one of User/Guest is
// non-nil: a registered session and a guest session are mutually exclusive.
type Credentials struct {
	Access  string      `json:"access_token"`
	Refresh string      `json:"refresh_token"`
	User    *model.User `json:"user,omitempty"`
	Guest   *model.User `json:"guest_user,omitempty"`
}

// Profile returns whichever profile kind is active, or nil.
func (c Credentials) Profile() *model.User {
	if c.User != nil {
		return c.User
	}
	return c.Guest
}

// Store is the injectable credential store. Implementations must keep the
// user/guest exclusivity invariant on every write.
type Store interface {
	// Load returns a snapshot of the committed state. A store with no
	// persisted session yields empty credentials, not an error.
	Load() (Credentials, error)
	// SetTokens replaces the access token, and the refresh token unless the
	// given refresh is empty (the refresh endpoint only rotates access).
	SetTokens(access, refresh string) error
	// SetUser installs a registered profile and drops any guest profile.
	SetUser(u *model.User) error
	// SetGuest installs a guest profile and drops any registered profile.
	SetGuest(u *model.User) error
	// UpdatePoints adds delta to the registered profile's points. Guest and
	// empty sessions are a no-op (guests hold no durable score).
	UpdatePoints(delta int) error
	// Clear drops all credentials and profiles.
	Clear() error
}

// MemStore is an in-memory Store for tests and ephemeral sessions.
type MemStore struct {
	mu    sync.Mutex
	creds Credentials
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore { return &MemStore{} }

func (s *MemStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, nil
}

func (s *MemStore) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds.Access = access
	if refresh != "" {
		s.creds.Refresh = refresh
	}
	return nil
}

func (s *MemStore) SetUser(u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds.User = u
	s.creds.Guest = nil
	return nil
}

func (s *MemStore) SetGuest(u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds.Guest = u
	s.creds.User = nil
	return nil
}

func (s *MemStore) UpdatePoints(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds.User != nil {
		s.creds.User.Points += delta
	}
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	return nil
}

// AccessTokenExpiry reads the exp claim of a JWT without validating the
// signature (the server validates; the client only schedules around it).
func AccessTokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
