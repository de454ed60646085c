// Package session holds the client's record of being authenticated. The
// sign-in flag and cached profile fields persist across restarts in the
// local store, and the flag is the sole gate for every protected view.
package session

import (
	"context"
	"strconv"
	"time"

	"github.com/inheir-ai/inheir-console/internal/store"
)

// Keys persisted in the local key-value store.
const (
	keyStatus    = "status"
	keyUsername  = "username"
	keyFullName  = "full_name"
	keyEmail     = "email"
	keyExpiresAt = "expires_at"

	statusSignedIn = "in"
)

// Profile is what the client knows about the signed-in user. ExpiresAt is
// the auth cookie's exp claim when the backend issues a JWT; zero means the
// session has no known client-side expiry.
type Profile struct {
	Username  string
	FullName  string
	Email     string
	ExpiresAt time.Time
}

// Store is the session contract the views depend on. It is injected into
// every page constructor so tests can substitute a fake.
type Store interface {
	SignedIn(ctx context.Context) bool
	SignIn(ctx context.Context, p Profile) error
	SignOut(ctx context.Context) error
	Profile(ctx context.Context) Profile
	Get(ctx context.Context, key string) string
}

// KVStore persists the session in the SQLite-backed key-value table.
type KVStore struct {
	kv *store.Store
}

// NewKVStore wraps the local store as a session store.
func NewKVStore(kv *store.Store) *KVStore {
	return &KVStore{kv: kv}
}

// SignedIn reports whether a session flag is present and, when an expiry is
// known, not yet past. An unreadable store counts as signed out.
func (s *KVStore) SignedIn(ctx context.Context) bool {
	status, err := s.kv.GetKV(ctx, keyStatus)
	if err != nil || status != statusSignedIn {
		return false
	}
	if exp := s.expiresAt(ctx); !exp.IsZero() && time.Now().After(exp) {
		return false
	}
	return true
}

// SignIn sets the flag and stores the profile fields.
func (s *KVStore) SignIn(ctx context.Context, p Profile) error {
	pairs := map[string]string{
		keyStatus:   statusSignedIn,
		keyUsername: p.Username,
		keyFullName: p.FullName,
		keyEmail:    p.Email,
	}
	if !p.ExpiresAt.IsZero() {
		pairs[keyExpiresAt] = strconv.FormatInt(p.ExpiresAt.Unix(), 10)
	}
	for key, value := range pairs {
		if err := s.kv.SetKV(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// SignOut clears every persisted field.
func (s *KVStore) SignOut(ctx context.Context) error {
	return s.kv.ClearKV(ctx)
}

// Profile returns the cached profile fields.
func (s *KVStore) Profile(ctx context.Context) Profile {
	return Profile{
		Username:  s.Get(ctx, keyUsername),
		FullName:  s.Get(ctx, keyFullName),
		Email:     s.Get(ctx, keyEmail),
		ExpiresAt: s.expiresAt(ctx),
	}
}

// Get returns a stored field by key, or "" when absent.
func (s *KVStore) Get(ctx context.Context, key string) string {
	value, err := s.kv.GetKV(ctx, key)
	if err != nil {
		return ""
	}
	return value
}

func (s *KVStore) expiresAt(ctx context.Context) time.Time {
	raw, err := s.kv.GetKV(ctx, keyExpiresAt)
	if err != nil || raw == "" {
		return time.Time{}
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}

// Memory is an in-memory session store for tests.
type Memory struct {
	signedIn bool
	profile  Profile
}

// NewMemory returns an empty in-memory session.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) SignedIn(ctx context.Context) bool {
	if m.signedIn && !m.profile.ExpiresAt.IsZero() && time.Now().After(m.profile.ExpiresAt) {
		return false
	}
	return m.signedIn
}

func (m *Memory) SignIn(ctx context.Context, p Profile) error {
	m.signedIn = true
	m.profile = p
	return nil
}

func (m *Memory) SignOut(ctx context.Context) error {
	m.signedIn = false
	m.profile = Profile{}
	return nil
}

func (m *Memory) Profile(ctx context.Context) Profile {
	return m.profile
}

func (m *Memory) Get(ctx context.Context, key string) string {
	switch key {
	case keyUsername:
		return m.profile.Username
	case keyFullName:
		return m.profile.FullName
	case keyEmail:
		return m.profile.Email
	default:
		return ""
	}
}

// Field keys exported for callers that read individual profile values.
const (
	KeyUsername = keyUsername
	KeyFullName = keyFullName
	KeyEmail    = keyEmail
)
