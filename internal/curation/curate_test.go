package curation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theLastOfCats/gameshelf/internal/model"
)

func img(s string) *string { return &s }

func games(n int, withImage func(i int) bool) []model.Game {
	out := make([]model.Game, 0, n)
	for i := 0; i < n; i++ {
		g := model.Game{ID: int64(i + 1), Name: fmt.Sprintf("Game %d", i+1)}
		if withImage(i) {
			g.BackgroundImage = img(fmt.Sprintf("https://img/%d.jpg", i+1))
		}
		out = append(out, g)
	}
	return out
}

func TestCurateDropsImagelessAndTruncates(t *testing.T) {
	raw := &model.ListResponse{
		Count:   100,
		Results: games(25, func(i int) bool { return i%5 != 0 }), // 5 without image
	}

	res := Curate(raw, 0, 21)

	require.Len(t, res.Entries, 20)
	for _, g := range res.Entries {
		assert.True(t, g.HasImage(), "game %d has no image", g.ID)
	}
	assert.Equal(t, 100, res.Total)
	assert.Equal(t, 5, res.TotalPages)
	assert.Equal(t, 1, res.CurrentPage)
	assert.Equal(t, 21, res.Limit)
}

func TestCurateKeepsOrderAndLimit(t *testing.T) {
	raw := &model.ListResponse{Count: 25, Results: games(25, func(int) bool { return true })}

	res := Curate(raw, 21, 21)

	require.Len(t, res.Entries, 21)
	for i, g := range res.Entries {
		assert.Equal(t, int64(i+1), g.ID)
	}
	assert.Equal(t, 2, res.CurrentPage)
	assert.Equal(t, 2, res.TotalPages)
}

func TestCurateEmptyAndBlankImages(t *testing.T) {
	res := Curate(nil, 0, 21)
	assert.NotNil(t, res.Entries)
	assert.Empty(t, res.Entries)
	assert.Zero(t, res.TotalPages)

	raw := &model.ListResponse{Count: 2, Results: []model.Game{
		{ID: 1, BackgroundImage: img("")},
		{ID: 2, BackgroundImage: img("   ")},
	}}
	res = Curate(raw, 0, 21)
	assert.Empty(t, res.Entries)
	assert.Equal(t, 1, res.TotalPages)
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{0, 21, 0},
		{1, 21, 1},
		{21, 21, 1},
		{22, 21, 2},
		{100, 21, 5},
		{-5, 21, 0},
		{10, 0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TotalPages(tc.total, tc.limit), "TotalPages(%d, %d)", tc.total, tc.limit)
	}
}

func TestPageForOffset(t *testing.T) {
	assert.Equal(t, 1, PageForOffset(0, 21))
	assert.Equal(t, 1, PageForOffset(20, 21))
	assert.Equal(t, 2, PageForOffset(21, 21))
	assert.Equal(t, 3, PageForOffset(42, 21))
	assert.Equal(t, 1, PageForOffset(-1, 21))
}
