package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForumStats(t *testing.T) {
	s := newTestStore(t)
	user, category := seedUserAndCategory(t, s)

	thread, err := s.CreateThread("Stats Thread", "content", user.ID, category.ID, ThreadOptions{})
	require.NoError(t, err)
	_, err = s.CreatePost(thread.ID, user.ID, "reply one", PostOptions{})
	require.NoError(t, err)
	post, err := s.CreatePost(thread.ID, user.ID, "reply two", PostOptions{})
	require.NoError(t, err)

	stats, err := s.ForumStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Users)
	assert.Equal(t, 4, stats.Categories)
	assert.Equal(t, 1, stats.Threads)
	assert.Equal(t, 2, stats.Posts)
	assert.Equal(t, 3, stats.TotalContent)

	// Soft-deleted content drops out of the live aggregates.
	require.NoError(t, s.DeletePost(post.ID))
	stats, err = s.ForumStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Posts)
	assert.Equal(t, 2, stats.TotalContent)
}

func TestCheckCounters_ConsistentAfterWrites(t *testing.T) {
	s := newTestStore(t)
	user, category := seedUserAndCategory(t, s)
	other, err := s.CreateUser("bob", UserOptions{})
	require.NoError(t, err)

	thread, err := s.CreateThread("Busy Thread", "content", user.ID, category.ID, ThreadOptions{})
	require.NoError(t, err)
	doomedThread, err := s.CreateThread("Doomed Thread", "content", other.ID, category.ID, ThreadOptions{})
	require.NoError(t, err)

	first, err := s.CreatePost(thread.ID, other.ID, "reply", PostOptions{})
	require.NoError(t, err)
	_, err = s.CreatePost(thread.ID, user.ID, "nested", PostOptions{ParentPostID: &first.ID})
	require.NoError(t, err)
	doomedPost, err := s.CreatePost(thread.ID, user.ID, "doomed", PostOptions{})
	require.NoError(t, err)

	require.NoError(t, s.DeletePost(doomedPost.ID))
	require.NoError(t, s.DeleteThread(doomedThread.ID))

	mismatches, err := s.CheckCounters()
	require.NoError(t, err)
	assert.Empty(t, mismatches, "every write path maintains its counters")
}

func TestCheckCounters_DetectsDrift(t *testing.T) {
	s := newTestStore(t)
	user, category := seedUserAndCategory(t, s)

	_, err := s.CreateThread("Drift Thread", "content", user.ID, category.ID, ThreadOptions{})
	require.NoError(t, err)

	_, err = s.db.Exec(`UPDATE users SET threads_count = 42 WHERE id = ?;`, user.ID)
	require.NoError(t, err)

	mismatches, err := s.CheckCounters()
	require.NoError(t, err)
	require.Len(t, mismatches, 1)

	m := mismatches[0]
	assert.Equal(t, "users", m.Table)
	assert.Equal(t, user.ID, m.RowID)
	assert.Equal(t, "threads_count", m.Column)
	assert.Equal(t, 42, m.Stored)
	assert.Equal(t, 1, m.Actual)
	assert.Contains(t, m.String(), "users[")

	// The checker reports; it never repairs.
	again, err := s.CheckCounters()
	require.NoError(t, err)
	assert.Len(t, again, 1)
}
