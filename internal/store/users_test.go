package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_Defaults(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("alice", UserOptions{})
	require.NoError(t, err)

	assert.Positive(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.Email)
	assert.Empty(t, user.CredentialHash)
	assert.Equal(t, "👤", user.Avatar)
	assert.Zero(t, user.PostsCount)
	assert.Zero(t, user.ThreadsCount)
	assert.Zero(t, user.Reputation)
	assert.False(t, user.IsAdmin)
	assert.False(t, user.IsBanned)
	assert.False(t, user.CreatedAt.IsZero())
	assert.False(t, user.LastSeen.IsZero())
	assert.Nil(t, user.LockedUntil)
}

func TestCreateUser_Options(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("  admin  ", UserOptions{
		Email:   "admin@example.com",
		Bio:     "keeper of the forum",
		Avatar:  "🛡️",
		IsAdmin: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "admin", user.Username, "username is trimmed")
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Equal(t, "keeper of the forum", user.Bio)
	assert.Equal(t, "🛡️", user.Avatar)
	assert.True(t, user.IsAdmin)
}

func TestCreateUser_EmptyUsername(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateUser("   ", UserOptions{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateUser_UsernameLengthBounds(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateUser("ab", UserOptions{})
	require.ErrorIs(t, err, ErrConstraint, "two characters is below the minimum")

	_, err = s.CreateUser(strings.Repeat("x", 21), UserOptions{})
	require.ErrorIs(t, err, ErrConstraint, "twenty-one characters is above the maximum")

	_, err = s.CreateUser("abc", UserOptions{})
	require.NoError(t, err)
	_, err = s.CreateUser(strings.Repeat("y", 20), UserOptions{})
	require.NoError(t, err)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateUser("alice", UserOptions{})
	require.NoError(t, err)

	_, err = s.CreateUser("alice", UserOptions{})
	require.ErrorIs(t, err, ErrConstraint)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateUser("alice", UserOptions{Email: "shared@example.com"})
	require.NoError(t, err)

	_, err = s.CreateUser("bob", UserOptions{Email: "shared@example.com"})
	require.ErrorIs(t, err, ErrConstraint)

	// Absent emails do not collide with each other.
	_, err = s.CreateUser("carol", UserOptions{})
	require.NoError(t, err)
	_, err = s.CreateUser("dave", UserOptions{})
	require.NoError(t, err)
}

func TestCreateUser_BioTooLong(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateUser("alice", UserOptions{Bio: strings.Repeat("x", 501)})
	require.ErrorIs(t, err, ErrConstraint)

	_, err = s.CreateUser("alice", UserOptions{Bio: strings.Repeat("x", 500)})
	require.NoError(t, err, "nothing was written by the failed attempt")
}

func TestGetUser_Absent(t *testing.T) {
	s := newTestStore(t)

	_, ok := s.GetUser(9999)
	assert.False(t, ok)
	_, ok = s.GetUserByUsername("nobody")
	assert.False(t, ok)
}

func TestGetUserByUsername(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateUser("alice", UserOptions{})
	require.NoError(t, err)

	got, ok := s.GetUserByUsername("alice")
	require.True(t, ok)
	assert.Equal(t, created.ID, got.ID)
}

func TestSetUserCredential(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("alice", UserOptions{})
	require.NoError(t, err)

	require.NoError(t, s.SetUserCredential(user.ID, "salt$key"))
	got, ok := s.GetUser(user.ID)
	require.True(t, ok)
	assert.Equal(t, "salt$key", got.CredentialHash)

	// Clearing reverts to a passwordless account.
	require.NoError(t, s.SetUserCredential(user.ID, ""))
	got, ok = s.GetUser(user.ID)
	require.True(t, ok)
	assert.Empty(t, got.CredentialHash)
}

func TestSetUserCredential_AbsentUser(t *testing.T) {
	s := newTestStore(t)

	err := s.SetUserCredential(9999, "salt$key")
	require.Error(t, err)
}

func TestRecordLoginFailure_LocksAtThreshold(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("alice", UserOptions{})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.NoError(t, s.RecordLoginFailure(user.ID, 5, 15*time.Minute))
	}
	got, ok := s.GetUser(user.ID)
	require.True(t, ok)
	assert.Equal(t, 4, got.FailedLogins)
	assert.Nil(t, got.LockedUntil, "below the threshold there is no lockout")

	require.NoError(t, s.RecordLoginFailure(user.ID, 5, 15*time.Minute))
	got, ok = s.GetUser(user.ID)
	require.True(t, ok)
	assert.Equal(t, 5, got.FailedLogins)
	require.NotNil(t, got.LockedUntil)
	assert.True(t, got.IsLocked(time.Now()))
	assert.False(t, got.IsLocked(time.Now().Add(time.Hour)))
}

func TestResetLoginFailures(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("alice", UserOptions{})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordLoginFailure(user.ID, 5, 15*time.Minute))
	}
	require.NoError(t, s.ResetLoginFailures(user.ID))

	got, ok := s.GetUser(user.ID)
	require.True(t, ok)
	assert.Zero(t, got.FailedLogins)
	assert.Nil(t, got.LockedUntil)
	assert.False(t, got.IsLocked(time.Now()))
}

func TestTouchLastSeen(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("alice", UserOptions{})
	require.NoError(t, err)

	require.NoError(t, s.TouchLastSeen(user.ID))
	got, ok := s.GetUser(user.ID)
	require.True(t, ok)
	assert.False(t, got.LastSeen.IsZero())
	assert.False(t, got.LastSeen.Before(user.LastSeen))
}
