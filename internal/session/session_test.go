package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inheir-ai/inheir-console/internal/store"
)

func newTestSession(t *testing.T) *KVStore {
	t.Helper()
	st, err := store.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewKVStore(st)
}

func TestSignedOutByDefault(t *testing.T) {
	sess := newTestSession(t)
	assert.False(t, sess.SignedIn(context.Background()))
	assert.Empty(t, sess.Profile(context.Background()).Username)
}

func TestSignInPersistsProfile(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	require.NoError(t, sess.SignIn(ctx, Profile{
		Username:  "alice",
		FullName:  "Alice Smith",
		Email:     "alice@example.com",
		ExpiresAt: exp,
	}))

	assert.True(t, sess.SignedIn(ctx))
	p := sess.Profile(ctx)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "Alice Smith", p.FullName)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.Equal(t, exp.Unix(), p.ExpiresAt.Unix())
	assert.Equal(t, "alice", sess.Get(ctx, KeyUsername))
}

func TestExpiredSessionCountsAsSignedOut(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, sess.SignIn(ctx, Profile{
		Username:  "alice",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	assert.False(t, sess.SignedIn(ctx))
}

func TestNoExpiryMeansNoClientSideTimeout(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, sess.SignIn(ctx, Profile{Username: "alice"}))

	assert.True(t, sess.SignedIn(ctx))
}

func TestSignOutClearsEverything(t *testing.T) {
	sess := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, sess.SignIn(ctx, Profile{Username: "alice", Email: "alice@example.com"}))
	require.NoError(t, sess.SignOut(ctx))

	assert.False(t, sess.SignedIn(ctx))
	assert.Empty(t, sess.Get(ctx, KeyUsername))
	assert.Empty(t, sess.Get(ctx, KeyEmail))
}

func TestMemoryFakeMatchesContract(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	assert.False(t, m.SignedIn(ctx))
	require.NoError(t, m.SignIn(ctx, Profile{Username: "bob"}))
	assert.True(t, m.SignedIn(ctx))
	assert.Equal(t, "bob", m.Get(ctx, KeyUsername))
	require.NoError(t, m.SignOut(ctx))
	assert.False(t, m.SignedIn(ctx))
}
