package replytree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termforum/internal/models"
)

func post(id int64, parent *int64, content string) models.Post {
	return models.Post{ID: id, ParentPostID: parent, Content: content}
}

func ptr(id int64) *int64 { return &id }

func TestFlatten_DepthFirstOrder(t *testing.T) {
	// A and C are top-level, B replies to A, D replies to B.
	posts := []models.Post{
		post(1, nil, "A"),
		post(2, ptr(1), "B"),
		post(3, nil, "C"),
		post(4, ptr(2), "D"),
	}

	entries, err := Flatten(posts)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	contents := make([]string, len(entries))
	depths := make([]int, len(entries))
	for i, e := range entries {
		contents[i] = e.Post.Content
		depths[i] = e.Depth
	}
	assert.Equal(t, []string{"A", "B", "D", "C"}, contents)
	assert.Equal(t, []int{0, 1, 2, 0}, depths)
}

func TestFlatten_SiblingsKeepInputOrder(t *testing.T) {
	posts := []models.Post{
		post(1, nil, "root"),
		post(2, ptr(1), "first reply"),
		post(3, ptr(1), "second reply"),
	}

	entries, err := Flatten(posts)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "first reply", entries[1].Post.Content)
	assert.Equal(t, "second reply", entries[2].Post.Content)
	assert.Equal(t, 1, entries[1].Depth)
	assert.Equal(t, 1, entries[2].Depth)
}

func TestFlatten_Empty(t *testing.T) {
	entries, err := Flatten(nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFlatten_SkipsDanglingParents(t *testing.T) {
	// Post 5 references a parent that is not in the list.
	posts := []models.Post{
		post(1, nil, "root"),
		post(5, ptr(99), "orphan"),
	}

	entries, err := Flatten(posts)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "root", entries[0].Post.Content)
}

func TestFlatten_SkipsOrphanCycle(t *testing.T) {
	// A mutual cycle with no path from any top-level post is dropped
	// rather than looping.
	posts := []models.Post{
		post(1, nil, "root"),
		post(2, ptr(3), "cycle a"),
		post(3, ptr(2), "cycle b"),
	}

	entries, err := Flatten(posts)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "root", entries[0].Post.Content)
}

func TestFlatten_CorruptGraph(t *testing.T) {
	// Duplicated row ids make a post reachable twice.
	posts := []models.Post{
		post(1, nil, "root"),
		post(2, ptr(1), "reply"),
		post(1, ptr(2), "duplicate id"),
	}

	_, err := Flatten(posts)
	require.ErrorIs(t, err, ErrCorruptReplyGraph)
}
