package docstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoritePaths(t *testing.T) {
	assert.Equal(t, "users/7/favorites/3498", FavoritePath("7", 3498))
	assert.Equal(t, "users/7/favorites", FavoritesCollection("7"))
	assert.Equal(t, "users/7/", UserPrefix("7"))
	assert.True(t, IsCollection(FavoritesCollection("7")))
	assert.False(t, IsCollection(FavoritePath("7", 1)))
}

func TestSegments(t *testing.T) {
	parts, err := Segments("/users/1/favorites/")
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "1", "favorites"}, parts)

	for _, bad := range []string{"", "/", "users//1", "users/./1", "users/../1"} {
		_, err := Segments(bad)
		assert.True(t, errors.Is(err, ErrInvalidPath), "Segments(%q) = %v", bad, err)
	}
}

func TestSplitDocument(t *testing.T) {
	col, id, err := SplitDocument("users/1/favorites/42")
	require.NoError(t, err)
	assert.Equal(t, "users/1/favorites", col)
	assert.Equal(t, "42", id)

	_, _, err = SplitDocument("users/1/favorites")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = CleanCollection("users/1")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestParseGameID(t *testing.T) {
	id, ok := ParseGameID("3498")
	assert.True(t, ok)
	assert.Equal(t, int64(3498), id)

	for _, bad := range []string{"", "abc", "0", "-4", "1.5"} {
		_, ok := ParseGameID(bad)
		assert.False(t, ok, bad)
	}
}

func TestDocumentURLEscapes(t *testing.T) {
	assert.Equal(t, "/documents/users/1/favorites/a%20b", documentURL("users/1/favorites/a b", false))
	assert.Equal(t, "/documents/users/1/favorites/2?merge=true", documentURL("/users/1/favorites/2", true))
}
