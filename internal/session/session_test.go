package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(filepath.Join(t.TempDir(), "session.json"))
}

func TestCreateAndCurrent(t *testing.T) {
	m := newTestManager(t)

	created, err := m.Create(42, "alice", false, 24)
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.UserID)
	assert.Equal(t, "alice", created.Username)
	assert.NotEmpty(t, created.Token)
	assert.False(t, created.RememberMe)

	got, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, created.UserID, got.UserID)
	assert.Equal(t, created.Username, got.Username)
	assert.Equal(t, created.Token, got.Token)
}

func TestCreate_TokensAreUnique(t *testing.T) {
	m := newTestManager(t)

	first, err := m.Create(1, "alice", false, 24)
	require.NoError(t, err)
	second, err := m.Create(1, "alice", false, 24)
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestCreate_Overwrites(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Create(1, "alice", false, 24)
	require.NoError(t, err)
	_, err = m.Create(2, "bob", false, 24)
	require.NoError(t, err)

	got, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, int64(2), got.UserID)
	assert.Equal(t, "bob", got.Username)
}

func TestCreate_RememberMeExtendsExpiry(t *testing.T) {
	m := newTestManager(t)

	sess, err := m.Create(1, "alice", true, 24)
	require.NoError(t, err)

	lifetime := sess.ExpiresAt.Sub(sess.CreatedAt)
	assert.Equal(t, 30*24*time.Hour, lifetime)
	assert.True(t, sess.RememberMe)
}

func TestCurrent_ExpiredSessionClearsFile(t *testing.T) {
	m := newTestManager(t)

	// Zero hours expires immediately.
	_, err := m.Create(1, "alice", false, 0)
	require.NoError(t, err)

	_, ok := m.Current()
	assert.False(t, ok)

	_, err = os.Stat(m.path)
	assert.True(t, os.IsNotExist(err), "expired session file should be removed")
}

func TestCurrent_MissingFile(t *testing.T) {
	m := newTestManager(t)

	_, ok := m.Current()
	assert.False(t, ok)
}

func TestCurrent_CorruptFile(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.WriteFile(m.path, []byte("not json"), 0o600))

	_, ok := m.Current()
	assert.False(t, ok)
}

func TestClear_Idempotent(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Create(1, "alice", false, 24)
	require.NoError(t, err)

	require.NoError(t, m.Clear())
	require.NoError(t, m.Clear(), "clearing an absent session is not an error")

	_, ok := m.Current()
	assert.False(t, ok)
}

func TestExpired(t *testing.T) {
	now := time.Now()
	sess := Session{ExpiresAt: now}

	assert.True(t, sess.Expired(now), "expiry instant counts as expired")
	assert.True(t, sess.Expired(now.Add(time.Second)))
	assert.False(t, sess.Expired(now.Add(-time.Second)))
}
