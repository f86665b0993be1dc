package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/theLastOfCats/gameshelf/internal/model"
)

const (
	GamesEndpoint     = "games"
	GenresEndpoint    = "genres"
	PlatformsEndpoint = "platforms"

	// DefaultPageSize is the base fetch size when the caller does not inflate it.
	DefaultPageSize = 21
	// LookupPageSize is used for the genre and platform pickers.
	LookupPageSize = 50

	PlaceholderImage = "assets/images/placeholder-game.png"
)

type Mode int

const (
	ModeDiscover Mode = iota
	ModeSearch
)

func (m Mode) String() string {
	if m == ModeSearch {
		return "search"
	}
	return "discover"
}

// YearRange renders the inclusive date range filter for a release year.
func YearRange(year int) string {
	return fmt.Sprintf("%04d-01-01,%04d-12-31", year, year)
}

// BuildParams turns a QuerySpec into request parameters. The api key is
// added by the transport. A non-blank search term selects search mode and
// drops genre, platform and year.
func BuildParams(spec model.QuerySpec) (Mode, url.Values) {
	params := url.Values{}

	page := spec.Page
	if page < 1 {
		page = 1
	}
	size := spec.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(size))
	if spec.Ordering != "" {
		params.Set("ordering", spec.Ordering)
	}

	if spec.IsSearch() {
		params.Set("search", strings.TrimSpace(spec.Search))
		return ModeSearch, params
	}

	if spec.GenreID > 0 {
		params.Set("genres", strconv.FormatInt(spec.GenreID, 10))
	}
	if spec.PlatformID > 0 {
		params.Set("platforms", strconv.FormatInt(spec.PlatformID, 10))
	}
	if spec.Year > 0 {
		params.Set("dates", YearRange(spec.Year))
	}
	return ModeDiscover, params
}

// Service issues catalog queries. It keeps no state between calls.
type Service struct {
	transport Transport
}

func NewService(t Transport) *Service {
	return &Service{transport: t}
}

// Query fetches the raw page described by spec.
func (s *Service) Query(ctx context.Context, spec model.QuerySpec) (*model.ListResponse, error) {
	_, params := BuildParams(spec)
	return s.transport.FetchList(ctx, GamesEndpoint, params)
}

// Game fetches the detail view of one game.
func (s *Service) Game(ctx context.Context, id int64) (*model.Game, error) {
	var g model.Game
	if err := s.transport.FetchOne(ctx, GamesEndpoint, id, url.Values{}, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

type genreList struct {
	Results []model.Genre `json:"results"`
}

type platformList struct {
	Results []model.Platform `json:"results"`
}

func (s *Service) Genres(ctx context.Context) ([]model.Genre, error) {
	var res genreList
	if err := s.lookup(ctx, GenresEndpoint, &res); err != nil {
		return nil, err
	}
	return res.Results, nil
}

func (s *Service) Platforms(ctx context.Context) ([]model.Platform, error) {
	var res platformList
	if err := s.lookup(ctx, PlatformsEndpoint, &res); err != nil {
		return nil, err
	}
	return res.Results, nil
}

func (s *Service) lookup(ctx context.Context, endpoint string, target any) error {
	params := url.Values{}
	params.Set("page_size", strconv.Itoa(LookupPageSize))
	return s.transport.Fetch(ctx, endpoint, params, target)
}

// ImageOrPlaceholder returns the game's image or the bundled placeholder.
func ImageOrPlaceholder(g model.Game) string {
	if g.HasImage() {
		return *g.BackgroundImage
	}
	return PlaceholderImage
}
