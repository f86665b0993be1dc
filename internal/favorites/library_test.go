package favorites_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/theLastOfCats/gameshelf/internal/docstore"
	"github.com/theLastOfCats/gameshelf/internal/favorites"
	"github.com/theLastOfCats/gameshelf/internal/model"
	"github.com/theLastOfCats/gameshelf/internal/testutil"
)

func names(items []model.Favorite) []string {
	out := make([]string, 0, len(items))
	for _, f := range items {
		out = append(out, f.Name)
	}
	return out
}

func seedLibrary(store *testutil.MemoryStore, uid string) {
	for id, name := range map[int64]string{
		1: "gamma",
		2: "Beta",
		3: "alpha",
		4: "Élan",
		5: "zeta",
	} {
		store.Seed(docstore.FavoritePath(uid, id), map[string]any{
			favorites.FieldGameID:    id,
			favorites.FieldName:      name,
			favorites.FieldCreatedAt: int64(1700000000000),
		})
	}
}

func TestLibraryLoadSortsAndFilters(t *testing.T) {
	store := testutil.NewMemoryStore()
	seedLibrary(store, "u1")
	lib := favorites.NewLibrary(store, testutil.NewUsers("u1"), language.English)

	require.NoError(t, lib.Load(t.Context()))
	assert.False(t, lib.Loading())
	assert.Equal(t, []string{"alpha", "Beta", "Élan", "gamma", "zeta"}, names(lib.Items()))

	items := lib.Items()
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), items[0].CreatedAt)

	lib.Filter("ET")
	assert.Equal(t, []string{"Beta", "zeta"}, names(lib.Items()))

	lib.Filter("nothing matches")
	assert.NotNil(t, lib.Items())
	assert.Empty(t, lib.Items())

	lib.Filter("  ")
	assert.Len(t, lib.Items(), 5)
}

func TestLibraryWithoutUserIsEmpty(t *testing.T) {
	store := testutil.NewMemoryStore()
	seedLibrary(store, "u1")
	lib := favorites.NewLibrary(store, testutil.NewUsers(""), language.English)

	require.NoError(t, lib.Load(t.Context()))
	assert.Empty(t, lib.Items())
	assert.Zero(t, store.Lists())
}

func TestLibraryLoadFailure(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.FailLists(errors.New("down"))
	rec := &testutil.Recorder{}
	lib := favorites.NewLibrary(store, testutil.NewUsers("u1"), language.English, favorites.WithNotifier(rec))

	require.Error(t, lib.Load(t.Context()))
	assert.Equal(t, favorites.MsgLoadFailed, rec.Last())
}

func TestLibraryRemove(t *testing.T) {
	store := testutil.NewMemoryStore()
	seedLibrary(store, "u1")
	rec := &testutil.Recorder{}
	lib := favorites.NewLibrary(store, testutil.NewUsers("u1"), language.English, favorites.WithNotifier(rec))
	ctx := t.Context()
	require.NoError(t, lib.Load(ctx))

	started, release := store.HoldWrites()
	done := make(chan bool, 1)
	go func() {
		ok, err := lib.Remove(ctx, 2)
		assert.NoError(t, err)
		done <- ok
	}()
	<-started

	assert.True(t, lib.IsPending(2))
	ok, err := lib.Remove(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok, "second removal of the same id is ignored")
	assert.Equal(t, 1, store.Writes())

	release()
	assert.True(t, <-done)
	assert.False(t, lib.IsPending(2))
	assert.NotContains(t, names(lib.Items()), "Beta")
	assert.False(t, store.Has(docstore.FavoritePath("u1", 2)))
	assert.Equal(t, favorites.MsgRemoved, rec.Last())

	store.FailWrites(errors.New("down"))
	ok, err = lib.Remove(ctx, 1)
	assert.False(t, ok)
	var we *favorites.WriteError
	require.ErrorAs(t, err, &we)
	assert.Contains(t, names(lib.Items()), "gamma")
	assert.Equal(t, favorites.MsgRemoveFailed, rec.Last())
}

func TestLibraryRemoveRequiresUser(t *testing.T) {
	lib := favorites.NewLibrary(testutil.NewMemoryStore(), testutil.NewUsers(""), language.English)
	_, err := lib.Remove(t.Context(), 1)
	assert.ErrorIs(t, err, favorites.ErrAuthRequired)
}

func TestDecode(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	fav, ok := favorites.Decode(model.Document{
		ID:     "42",
		Fields: map[string]any{"name": "Hades", "background_image": "img", "createdAt": float64(now.UnixMilli())},
	})
	require.True(t, ok)
	assert.Equal(t, int64(42), fav.GameID)
	assert.Equal(t, "Hades", fav.Name)
	require.NotNil(t, fav.BackgroundImage)
	assert.Equal(t, "img", *fav.BackgroundImage)
	assert.Equal(t, now, fav.CreatedAt)

	// Missing timestamp falls back to the document creation time.
	fav, ok = favorites.Decode(model.Document{ID: "7", CreateTime: now, Fields: map[string]any{"background_image": nil}})
	require.True(t, ok)
	assert.Equal(t, now, fav.CreatedAt)
	assert.Nil(t, fav.BackgroundImage)

	// A non numeric id falls back to the gameId field.
	fav, ok = favorites.Decode(model.Document{ID: "legacy", Fields: map[string]any{"gameId": float64(9)}})
	require.True(t, ok)
	assert.Equal(t, int64(9), fav.GameID)

	_, ok = favorites.Decode(model.Document{ID: "legacy", Fields: map[string]any{}})
	assert.False(t, ok)
}

func TestPayload(t *testing.T) {
	w := favorites.Payload(model.Game{ID: 3, Name: "No image"})
	assert.Equal(t, int64(3), w.Fields[favorites.FieldGameID])
	assert.Nil(t, w.Fields[favorites.FieldBackgroundImage])
	assert.Equal(t, []string{favorites.FieldCreatedAt}, w.ServerTimestamps)
}
