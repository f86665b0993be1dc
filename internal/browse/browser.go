// Package browse is the game list screen: filter, search and page state on
// top of the catalog, curation and favorites.
package browse

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/theLastOfCats/gameshelf/internal/catalog"
	"github.com/theLastOfCats/gameshelf/internal/curation"
	"github.com/theLastOfCats/gameshelf/internal/favorites"
	"github.com/theLastOfCats/gameshelf/internal/logging"
	"github.com/theLastOfCats/gameshelf/internal/model"
)

const (
	// Limit is the number of cards on a page.
	Limit = curation.DefaultLimit
	// DiscoverFetchSize over-fetches so pages stay full after curation.
	DiscoverFetchSize = 25

	MsgSearchFailed = "Search failed"
	MsgFilterFailed = "Could not filter games"
)

// Catalog is the query side used by the browser.
type Catalog interface {
	Query(ctx context.Context, spec model.QuerySpec) (*model.ListResponse, error)
	Genres(ctx context.Context) ([]model.Genre, error)
	Platforms(ctx context.Context) ([]model.Platform, error)
}

// Membership answers favorite questions for the cards on screen.
type Membership interface {
	IsFavorite(id int64) bool
	IsPending(id int64) bool
	LoadAll(ctx context.Context) error
	Toggle(ctx context.Context, game model.Game) (favorites.Outcome, error)
}

// Filters is the user's filter selection. Zero values mean unset.
type Filters struct {
	Search     string `json:"search,omitempty"`
	Year       int    `json:"year,omitempty"`
	GenreID    int64  `json:"genre_id,omitempty"`
	PlatformID int64  `json:"platform_id,omitempty"`
}

// Card is one game on screen with its favorite state.
type Card struct {
	Game     model.Game `json:"game"`
	Image    string     `json:"image"`
	Favorite bool       `json:"favorite"`
	Pending  bool       `json:"pending"`
}

// View is what the presentation layer renders.
type View struct {
	Cards       []Card           `json:"cards"`
	Loading     bool             `json:"loading"`
	Filters     Filters          `json:"filters"`
	CurrentPage int              `json:"current_page"`
	TotalPages  int              `json:"total_pages"`
	Total       int              `json:"total"`
	Genres      []model.Genre    `json:"genres,omitempty"`
	Platforms   []model.Platform `json:"platforms,omitempty"`
}

type Browser struct {
	catalog    Catalog
	membership Membership
	notifier   favorites.Notifier
	logger     *slog.Logger

	mu        sync.Mutex
	filters   Filters
	offset    int
	loading   bool
	page      model.PageResult
	genres    []model.Genre
	platforms []model.Platform
	seq       uint64
	closed    bool
}

type Option func(*Browser)

func WithLogger(l *slog.Logger) Option {
	return func(b *Browser) { b.logger = l }
}

func WithNotifier(n favorites.Notifier) Option {
	return func(b *Browser) { b.notifier = n }
}

func New(c Catalog, m Membership, opts ...Option) *Browser {
	b := &Browser{
		catalog:    c,
		membership: m,
		logger:     logging.Discard(),
		page:       model.PageResult{Limit: Limit, CurrentPage: 1},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mount loads the genre and platform pickers concurrently, then the first
// page. Picker failures are logged and leave the picker empty.
func (b *Browser) Mount(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		genres, err := b.catalog.Genres(gctx)
		if err != nil {
			b.logger.Warn("load genres", logging.Err(err))
			return nil
		}
		b.mu.Lock()
		b.genres = genres
		b.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		platforms, err := b.catalog.Platforms(gctx)
		if err != nil {
			b.logger.Warn("load platforms", logging.Err(err))
			return nil
		}
		b.mu.Lock()
		b.platforms = platforms
		b.mu.Unlock()
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return b.Load(ctx)
}

// Close drops every response that arrives afterwards.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Spec returns the query for the current state.
func (b *Browser) Spec() model.QuerySpec {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.specLocked()
}

func (b *Browser) specLocked() model.QuerySpec {
	spec := model.QuerySpec{Page: curation.PageForOffset(b.offset, Limit)}
	if strings.TrimSpace(b.filters.Search) != "" {
		spec.Search = b.filters.Search
		spec.PageSize = Limit
		return spec
	}
	spec.PageSize = DiscoverFetchSize
	spec.Year = b.filters.Year
	spec.GenreID = b.filters.GenreID
	spec.PlatformID = b.filters.PlatformID
	return spec
}

// Load queries the catalog for the current state. Only the newest load may
// update the page; older responses are discarded.
func (b *Browser) Load(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.seq++
	seq := b.seq
	b.loading = true
	spec := b.specLocked()
	offset := b.offset
	b.mu.Unlock()

	raw, err := b.catalog.Query(ctx, spec)

	b.mu.Lock()
	if b.closed || seq != b.seq {
		b.mu.Unlock()
		return nil
	}
	b.loading = false
	if err != nil {
		b.mu.Unlock()
		msg := MsgFilterFailed
		if spec.IsSearch() {
			msg = MsgSearchFailed
		}
		b.logger.Error("load games", slog.String("mode", modeOf(spec)), logging.Err(err))
		b.show(msg)
		return err
	}
	b.page = curation.Curate(raw, offset, Limit)
	b.mu.Unlock()

	if err := b.membership.LoadAll(ctx); err != nil {
		b.logger.Warn("refresh favorites", logging.Err(err))
	}
	return nil
}

func modeOf(spec model.QuerySpec) string {
	mode, _ := catalog.BuildParams(spec)
	return mode.String()
}

// Search sets the search term and reloads from the first page.
func (b *Browser) Search(ctx context.Context, term string) error {
	return b.update(ctx, func(f *Filters) { f.Search = term })
}

func (b *Browser) SetYear(ctx context.Context, year int) error {
	return b.update(ctx, func(f *Filters) { f.Year = year })
}

func (b *Browser) SetGenre(ctx context.Context, id int64) error {
	return b.update(ctx, func(f *Filters) { f.GenreID = id })
}

func (b *Browser) SetPlatform(ctx context.Context, id int64) error {
	return b.update(ctx, func(f *Filters) { f.PlatformID = id })
}

// ClearFilters resets every filter and the search term.
func (b *Browser) ClearFilters(ctx context.Context) error {
	return b.update(ctx, func(f *Filters) { *f = Filters{} })
}

// Apply replaces all filters at once.
func (b *Browser) Apply(ctx context.Context, f Filters) error {
	return b.update(ctx, func(cur *Filters) { *cur = f })
}

func (b *Browser) update(ctx context.Context, fn func(*Filters)) error {
	b.mu.Lock()
	fn(&b.filters)
	b.offset = 0
	b.mu.Unlock()
	return b.Load(ctx)
}

// GoTo jumps to a 1-based page.
func (b *Browser) GoTo(ctx context.Context, page int) error {
	b.mu.Lock()
	b.offset = offsetFor(page)
	b.mu.Unlock()
	return b.Load(ctx)
}

// Open sets filters and page together and issues a single load.
func (b *Browser) Open(ctx context.Context, f Filters, page int) error {
	b.mu.Lock()
	b.filters = f
	b.offset = offsetFor(page)
	b.mu.Unlock()
	return b.Load(ctx)
}

func offsetFor(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * Limit
}

// NextPage advances unless the last page is shown or already requested.
func (b *Browser) NextPage(ctx context.Context) error {
	b.mu.Lock()
	if curation.PageForOffset(b.offset, Limit) >= b.page.TotalPages {
		b.mu.Unlock()
		return nil
	}
	b.offset += Limit
	b.mu.Unlock()
	return b.Load(ctx)
}

// PrevPage goes back unless the first page is shown.
func (b *Browser) PrevPage(ctx context.Context) error {
	b.mu.Lock()
	if b.offset == 0 {
		b.mu.Unlock()
		return nil
	}
	b.offset -= Limit
	if b.offset < 0 {
		b.offset = 0
	}
	b.mu.Unlock()
	return b.Load(ctx)
}

// Toggle flips the favorite state of a card.
func (b *Browser) Toggle(ctx context.Context, game model.Game) (favorites.Outcome, error) {
	return b.membership.Toggle(ctx, game)
}

// Snapshot returns the current state for rendering. It never waits on I/O.
func (b *Browser) Snapshot() View {
	b.mu.Lock()
	page := b.page
	v := View{
		Loading:     b.loading,
		Filters:     b.filters,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		Total:       page.Total,
		Genres:      b.genres,
		Platforms:   b.platforms,
	}
	b.mu.Unlock()

	v.Cards = make([]Card, 0, len(page.Entries))
	for _, g := range page.Entries {
		v.Cards = append(v.Cards, Card{
			Game:     g,
			Image:    catalog.ImageOrPlaceholder(g),
			Favorite: b.membership.IsFavorite(g.ID),
			Pending:  b.membership.IsPending(g.ID),
		})
	}
	return v
}

func (b *Browser) show(msg string) {
	if b.notifier != nil {
		b.notifier.Show(msg)
	}
}
