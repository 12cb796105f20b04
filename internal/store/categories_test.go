package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory_Defaults(t *testing.T) {
	s := newTestStore(t)

	category, err := s.CreateCategory("Show & Tell", CategoryOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Show & Tell", category.Name)
	assert.Equal(t, "show-tell", category.Slug, "slug derives from the name")
	assert.Equal(t, "📁", category.Icon)
	assert.Equal(t, "#3B82F6", category.Color)
	assert.Zero(t, category.ThreadsCount)
	assert.Zero(t, category.PostsCount)
}

func TestCreateCategory_ExplicitOptions(t *testing.T) {
	s := newTestStore(t)

	category, err := s.CreateCategory("Lounge", CategoryOptions{
		Slug:        "the-lounge",
		Description: "Kick back",
		Icon:        "🛋️",
		Color:       "#F59E0B",
		Position:    9,
	})
	require.NoError(t, err)

	assert.Equal(t, "the-lounge", category.Slug)
	assert.Equal(t, "Kick back", category.Description)
	assert.Equal(t, "🛋️", category.Icon)
	assert.Equal(t, "#F59E0B", category.Color)
	assert.Equal(t, 9, category.Position)
}

func TestCreateCategory_EmptyName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateCategory("  ", CategoryOptions{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateCategory("General", CategoryOptions{Slug: "general-2"})
	require.ErrorIs(t, err, ErrConstraint, "General is seeded")
}

func TestCreateCategory_DuplicateSlug(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateCategory("Another General", CategoryOptions{Slug: "general"})
	require.ErrorIs(t, err, ErrConstraint)
}

func TestListCategories_Order(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateCategory("First", CategoryOptions{Position: -1})
	require.NoError(t, err)

	categories, err := s.ListCategories()
	require.NoError(t, err)
	require.Len(t, categories, 5)
	assert.Equal(t, "First", categories[0].Name)
}

func TestGetCategory_Absent(t *testing.T) {
	s := newTestStore(t)

	_, ok := s.GetCategory(9999)
	assert.False(t, ok)
}
