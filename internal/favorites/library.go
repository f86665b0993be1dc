package favorites

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/theLastOfCats/gameshelf/internal/docstore"
	"github.com/theLastOfCats/gameshelf/internal/logging"
	"github.com/theLastOfCats/gameshelf/internal/model"
)

const (
	MsgLoadFailed   = "Could not load favorites"
	MsgRemoveFailed = "Could not remove game"
)

// Library is the favorites page: the user's saved games sorted by name,
// narrowed by a local name filter.
type Library struct {
	store    Store
	users    Identities
	notifier Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	collator *collate.Collator
	items    []model.Favorite
	term     string
	pending  map[int64]empty
	loading  bool
}

func NewLibrary(store Store, users Identities, tag language.Tag, opts ...Option) *Library {
	st := applyOptions(opts)
	return &Library{
		store:    store,
		users:    users,
		notifier: st.notifier,
		logger:   st.logger,
		collator: collate.New(tag, collate.IgnoreCase),
		pending:  map[int64]empty{},
	}
}

// Load fetches the user's favorites. Without a user the list is empty.
func (l *Library) Load(ctx context.Context) error {
	user := l.users.CurrentUser()
	if user == nil {
		l.mu.Lock()
		l.items = nil
		l.mu.Unlock()
		return nil
	}

	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.loading = false
		l.mu.Unlock()
	}()

	docs, err := l.store.List(ctx, docstore.FavoritesCollection(user.UID))
	if err != nil {
		l.logger.Error("load favorites page", slog.String("uid", user.UID), logging.Err(err))
		l.show(MsgLoadFailed)
		return fmt.Errorf("load favorites: %w", err)
	}

	items := make([]model.Favorite, 0, len(docs))
	for _, doc := range docs {
		if fav, ok := Decode(doc); ok {
			items = append(items, fav)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	slices.SortStableFunc(items, func(a, b model.Favorite) int {
		return l.collator.CompareString(a.Name, b.Name)
	})
	l.items = items
	return nil
}

// Filter sets the case-insensitive name filter.
func (l *Library) Filter(term string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.term = term
}

// Items returns the favorites that match the current filter.
func (l *Library) Items() []model.Favorite {
	l.mu.Lock()
	defer l.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(l.term))
	if term == "" {
		return slices.Clone(l.items)
	}
	out := []model.Favorite{}
	for _, fav := range l.items {
		if strings.Contains(strings.ToLower(fav.Name), term) {
			out = append(out, fav)
		}
	}
	return out
}

func (l *Library) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *Library) IsPending(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pending[id]
	return ok
}

// Remove deletes one favorite. It reports false without error when a removal
// of the same id is already running.
func (l *Library) Remove(ctx context.Context, id int64) (bool, error) {
	user := l.users.CurrentUser()
	if user == nil {
		l.show(MsgLoginRequired)
		return false, ErrAuthRequired
	}

	l.mu.Lock()
	if _, busy := l.pending[id]; busy {
		l.mu.Unlock()
		return false, nil
	}
	l.pending[id] = empty{}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.pending, id)
		l.mu.Unlock()
	}()

	if err := l.store.Delete(ctx, docstore.FavoritePath(user.UID, id)); err != nil {
		l.logger.Error("remove favorite", slog.Int64("game_id", id), logging.Err(err))
		l.show(MsgRemoveFailed)
		return false, &WriteError{Op: "remove", GameID: id, Err: err}
	}

	l.mu.Lock()
	l.items = slices.DeleteFunc(l.items, func(f model.Favorite) bool { return f.GameID == id })
	l.mu.Unlock()
	l.show(MsgRemoved)
	return true, nil
}

func (l *Library) show(msg string) {
	if l.notifier != nil {
		l.notifier.Show(msg)
	}
}
