package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "forum.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("   ", zap.NewNop())
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "forum.db")
	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestOpen_SeedsDefaultCategories(t *testing.T) {
	s := newTestStore(t)

	categories, err := s.ListCategories()
	require.NoError(t, err)
	require.Len(t, categories, 4)

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
		assert.Equal(t, i, c.Position)
		assert.Zero(t, c.ThreadsCount)
		assert.Zero(t, c.PostsCount)
	}
	assert.Equal(t, []string{"General", "Announcements", "Support", "Off-Topic"}, names)
}

func TestOpen_SeedIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forum.db")

	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	_, err = s.CreateCategory("Extra", CategoryOptions{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	categories, err := reopened.ListCategories()
	require.NoError(t, err)
	assert.Len(t, categories, 5, "reopening must not seed again")
}
