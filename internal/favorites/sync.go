package favorites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/theLastOfCats/gameshelf/internal/docstore"
	"github.com/theLastOfCats/gameshelf/internal/logging"
	"github.com/theLastOfCats/gameshelf/internal/model"
)

// Store is the remote per-user document store holding favorites.
type Store interface {
	Upsert(ctx context.Context, path string, w model.Write, merge bool) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, collection string) ([]model.Document, error)
}

// Identities exposes the signed in user and its changes.
type Identities interface {
	CurrentUser() *model.Identity
	Subscribe(fn func(*model.Identity)) (unsubscribe func())
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Show(msg string)
}

var ErrAuthRequired = errors.New("login required to use favorites")

// WriteError is a failed remote add or remove. Local membership is left as
// it was before the call.
type WriteError struct {
	Op     string
	GameID int64
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("favorite %s %d: %v", e.Op, e.GameID, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Outcome is what a Toggle did.
type Outcome int

const (
	// OutcomeNone: nothing changed, because the id was already in flight,
	// the call failed or the synchronizer was closed.
	OutcomeNone Outcome = iota
	OutcomeAdded
	OutcomeRemoved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeRemoved:
		return "removed"
	default:
		return "none"
	}
}

// Messages shown through the Notifier.
const (
	MsgLoginRequired = "Log in to use favorites"
	MsgAdded         = "Added to favorites"
	MsgRemoved       = "Removed from favorites"
	MsgToggleFailed  = "Could not update favorite"
)

type empty struct{}

// Synchronizer tracks which games the current user marked as favorite.
// Membership only changes after the store confirms a write. At most one
// toggle per game id is in flight; different ids never wait on each other.
type Synchronizer struct {
	store    Store
	users    Identities
	notifier Notifier
	logger   *slog.Logger

	mu        sync.Mutex
	uid       string
	gen       uint64
	favorites map[int64]empty
	pending   map[int64]empty
	// settled holds toggle results confirmed while a load of the same
	// generation was in flight, so the load cannot undo them.
	settled     map[int64]bool
	closed      bool
	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelFunc
	loads       sync.WaitGroup
}

type settings struct {
	notifier Notifier
	logger   *slog.Logger
}

type Option func(*settings)

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func WithNotifier(n Notifier) Option {
	return func(s *settings) { s.notifier = n }
}

func applyOptions(opts []Option) settings {
	st := settings{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&st)
	}
	return st
}

func New(store Store, users Identities, opts ...Option) *Synchronizer {
	st := applyOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())
	return &Synchronizer{
		store:     store,
		users:     users,
		notifier:  st.notifier,
		logger:    st.logger,
		favorites: map[int64]empty{},
		pending:   map[int64]empty{},
		settled:   map[int64]bool{},
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start loads the current user's favorites and reloads them on every
// identity change. A sign out clears the set before the callback returns.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.unsubscribe != nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	unsubscribe := s.users.Subscribe(func(u *model.Identity) {
		if u == nil {
			s.clear()
			return
		}
		s.loads.Add(1)
		go func() {
			defer s.loads.Done()
			if err := s.LoadAll(s.ctx); err != nil {
				s.logger.Warn("reload favorites after identity change", logging.Err(err))
			}
		}()
	})

	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	return s.LoadAll(ctx)
}

// Close stops listening for identity changes. Results of calls still in
// flight are discarded without error.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.cancel()
}

// Wait blocks until background reloads started by identity changes finish.
func (s *Synchronizer) Wait() {
	s.loads.Wait()
}

func (s *Synchronizer) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.gen++
	s.uid = ""
	s.favorites = map[int64]empty{}
	s.settled = map[int64]bool{}
}

// LoadAll replaces the favorite set with the store's view for the current
// user. Without a user the set is emptied and the store is not called.
func (s *Synchronizer) LoadAll(ctx context.Context) error {
	user := s.users.CurrentUser()
	if user == nil {
		s.clear()
		return nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.gen++
	gen := s.gen
	if s.uid != user.UID {
		s.uid = user.UID
		s.favorites = map[int64]empty{}
	}
	s.settled = map[int64]bool{}
	s.mu.Unlock()

	docs, err := s.store.List(ctx, docstore.FavoritesCollection(user.UID))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen || s.uid != user.UID {
		return nil
	}
	if err != nil {
		s.favorites = map[int64]empty{}
		s.logger.Error("load favorites", slog.String("uid", user.UID), logging.Err(err))
		return fmt.Errorf("load favorites: %w", err)
	}

	set := make(map[int64]empty, len(docs))
	for _, doc := range docs {
		if id, ok := docstore.ParseGameID(doc.ID); ok {
			set[id] = empty{}
		}
	}
	for id, member := range s.settled {
		if member {
			set[id] = empty{}
		} else {
			delete(set, id)
		}
	}
	s.favorites = set
	s.logger.Debug("favorites loaded", slog.String("uid", user.UID), slog.Int("count", len(set)))
	return nil
}

// Toggle adds game to the favorites if it is absent and removes it if it is
// present. A toggle on an id already in flight returns OutcomeNone and no
// error. Without a signed in user it returns ErrAuthRequired.
func (s *Synchronizer) Toggle(ctx context.Context, game model.Game) (Outcome, error) {
	user := s.users.CurrentUser()
	if user == nil {
		s.show(MsgLoginRequired)
		return OutcomeNone, ErrAuthRequired
	}
	id := game.ID

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return OutcomeNone, nil
	}
	if _, busy := s.pending[id]; busy {
		s.mu.Unlock()
		return OutcomeNone, nil
	}
	if s.uid != user.UID {
		// Loads started for the previous user must not land.
		s.gen++
		s.uid = user.UID
		s.favorites = map[int64]empty{}
		s.settled = map[int64]bool{}
	}
	s.pending[id] = empty{}
	_, member := s.favorites[id]
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	path := docstore.FavoritePath(user.UID, id)
	log := s.logger.With(slog.String("uid", user.UID), slog.Int64("game_id", id))

	if member {
		if err := s.store.Delete(ctx, path); err != nil {
			log.Error("remove favorite", logging.Err(err))
			s.showUnlessClosed(MsgToggleFailed)
			return OutcomeNone, &WriteError{Op: "remove", GameID: id, Err: err}
		}
		if !s.settle(user.UID, id, false) {
			return OutcomeNone, nil
		}
		log.Info("favorite removed")
		s.show(MsgRemoved)
		return OutcomeRemoved, nil
	}

	if err := s.store.Upsert(ctx, path, Payload(game), true); err != nil {
		log.Error("add favorite", logging.Err(err))
		s.showUnlessClosed(MsgToggleFailed)
		return OutcomeNone, &WriteError{Op: "add", GameID: id, Err: err}
	}
	if !s.settle(user.UID, id, true) {
		return OutcomeNone, nil
	}
	log.Info("favorite added")
	s.show(MsgAdded)
	return OutcomeAdded, nil
}

// settle records a confirmed write. It reports false when the result is
// stale: the synchronizer was closed or the user changed meanwhile.
func (s *Synchronizer) settle(uid string, id int64, member bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.uid != uid {
		return false
	}
	if member {
		s.favorites[id] = empty{}
	} else {
		delete(s.favorites, id)
	}
	s.settled[id] = member
	return true
}

// IsFavorite is a constant time membership check.
func (s *Synchronizer) IsFavorite(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favorites[id]
	return ok
}

// IsPending reports whether a toggle for id is in flight.
func (s *Synchronizer) IsPending(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	return ok
}

// Favorites returns the favorite ids in ascending order.
func (s *Synchronizer) Favorites() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedIDs(s.favorites)
}

// Pending returns the ids currently in flight in ascending order.
func (s *Synchronizer) Pending() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedIDs(s.pending)
}

func (s *Synchronizer) show(msg string) {
	if s.notifier != nil {
		s.notifier.Show(msg)
	}
}

func (s *Synchronizer) showUnlessClosed(msg string) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if !closed {
		s.show(msg)
	}
}

func sortedIDs(m map[int64]empty) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
