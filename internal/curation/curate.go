// Package curation shapes a raw catalog page for display.
//
// Entries without an image are dropped, the rest truncated to the display
// limit. Pagination is derived from the remote total rather than the curated
// count, so TotalPages over-counts when entries were dropped. Callers
// over-fetch to keep pages full; an under-filled page is still valid.
package curation

import "github.com/theLastOfCats/gameshelf/internal/model"

// DefaultLimit is the display page size.
const DefaultLimit = 21

// Curate filters and truncates raw to limit entries and fills in pagination
// for the page starting at offset.
func Curate(raw *model.ListResponse, offset, limit int) model.PageResult {
	if limit <= 0 {
		limit = DefaultLimit
	}

	res := model.PageResult{
		Entries:     []model.Game{},
		Limit:       limit,
		CurrentPage: PageForOffset(offset, limit),
	}
	if raw == nil {
		return res
	}

	for _, g := range raw.Results {
		if len(res.Entries) == limit {
			break
		}
		if !g.HasImage() {
			continue
		}
		res.Entries = append(res.Entries, g)
	}

	res.Total = raw.Count
	res.TotalPages = TotalPages(raw.Count, limit)
	res.Next = raw.Next
	res.Previous = raw.Previous
	return res
}

// TotalPages is ceil(total/limit). Negative totals count as zero.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// PageForOffset is the 1-based page that starts at offset.
func PageForOffset(offset, limit int) int {
	if limit <= 0 || offset < 0 {
		return 1
	}
	return offset/limit + 1
}
