package model

import (
	"strings"
	"time"
)

// Game is a catalog entry as returned by the games API.
type Game struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	BackgroundImage *string       `json:"background_image"`
	Released        string        `json:"released"`
	DescriptionRaw  string        `json:"description_raw"`
	Rating          float64       `json:"rating"`
	Genres          []Genre       `json:"genres,omitempty"`
	Platforms       []PlatformRef `json:"platforms,omitempty"`
	Developers      []Developer   `json:"developers,omitempty"`
	Website         string        `json:"website,omitempty"`
}

// HasImage reports whether the game carries a usable display asset.
func (g Game) HasImage() bool {
	return g.BackgroundImage != nil && strings.TrimSpace(*g.BackgroundImage) != ""
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type Platform struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// PlatformRef wraps a platform the way game payloads nest it.
type PlatformRef struct {
	Platform Platform `json:"platform"`
}

type Developer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListResponse is the raw paginated payload of a list endpoint.
type ListResponse struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Game  `json:"results"`
}

// QuerySpec describes one list request. Zero values mean "not set".
type QuerySpec struct {
	Page       int
	PageSize   int
	Search     string
	Year       int
	GenreID    int64
	PlatformID int64
	Ordering   string
}

// IsSearch reports whether the spec runs in search mode. A non-blank term
// always wins over discovery filters.
func (q QuerySpec) IsSearch() bool {
	return strings.TrimSpace(q.Search) != ""
}

// PageResult is a curated page ready for display.
type PageResult struct {
	Entries     []Game  `json:"entries"`
	Total       int     `json:"total"`
	Limit       int     `json:"limit"`
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"total_pages"`
	Next        *string `json:"next,omitempty"`
	Previous    *string `json:"previous,omitempty"`
}

// Identity is the authenticated user as seen by clients.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

// Document is a stored record addressed by a slash separated path.
type Document struct {
	Path       string         `json:"path"`
	ID         string         `json:"id"`
	Fields     map[string]any `json:"fields"`
	CreateTime time.Time      `json:"create_time"`
	UpdateTime time.Time      `json:"update_time"`
}

// Write is the body of an upsert. Fields named in ServerTimestamps are set
// to the store's clock, overriding anything in Fields.
type Write struct {
	Fields           map[string]any `json:"fields"`
	ServerTimestamps []string       `json:"server_timestamps,omitempty"`
}

// Favorite is the decoded form of a favorite document.
type Favorite struct {
	GameID          int64     `json:"gameId"`
	Name            string    `json:"name"`
	BackgroundImage *string   `json:"background_image"`
	CreatedAt       time.Time `json:"createdAt"`
}

type User struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	CreatedAt    int64  `json:"created_at" db:"created_at"`
}
