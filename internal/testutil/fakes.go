package testutil

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/theLastOfCats/gameshelf/internal/model"
	"github.com/theLastOfCats/gameshelf/internal/pubsub"
)

// MemoryStore is an in-process document store with the same write
// semantics as the server: merge upserts, server timestamps and a stable
// creation time.
type MemoryStore struct {
	mu        sync.Mutex
	docs      map[string]model.Document
	writeErr  error
	listErr   error
	hold      chan struct{}
	started   chan string
	writes    int
	lists     int
	listDelay chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string]model.Document{}}
}

// FailWrites makes every following Upsert and Delete return err. nil heals.
func (s *MemoryStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// FailLists makes every following List return err. nil heals.
func (s *MemoryStore) FailLists(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

// HoldWrites parks every following write until release is called. The path
// of each parked write is sent on started.
func (s *MemoryStore) HoldWrites() (started <-chan string, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hold := make(chan struct{})
	ch := make(chan string, 64)
	s.hold = hold
	s.started = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			if s.hold == hold {
				s.hold = nil
			}
			s.mu.Unlock()
			close(hold)
		})
	}
}

// HoldLists parks every following List until release is called.
func (s *MemoryStore) HoldLists() (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate := make(chan struct{})
	s.listDelay = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.listDelay == gate {
				s.listDelay = nil
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Writes counts completed and attempted Upsert and Delete calls.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *MemoryStore) Lists() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists
}

// Seed stores a document directly.
func (s *MemoryStore) Seed(path string, fields map[string]any) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = model.Document{Path: path, ID: lastSegment(path), Fields: fields, CreateTime: now, UpdateTime: now}
}

func (s *MemoryStore) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[path]
	return ok
}

func (s *MemoryStore) Doc(path string) (model.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[path]
	return d, ok
}

func (s *MemoryStore) beginWrite(ctx context.Context, path string) error {
	s.mu.Lock()
	s.writes++
	hold, started := s.hold, s.started
	s.mu.Unlock()

	if hold != nil {
		started <- path
		select {
		case <-hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeErr
}

func (s *MemoryStore) Upsert(ctx context.Context, path string, w model.Write, merge bool) error {
	if err := s.beginWrite(ctx, path); err != nil {
		return err
	}

	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.docs[path]
	fields := map[string]any{}
	if exists && merge {
		maps.Copy(fields, prev.Fields)
	}
	maps.Copy(fields, w.Fields)
	for _, name := range w.ServerTimestamps {
		fields[name] = now.UnixMilli()
	}

	created := now
	if exists {
		created = prev.CreateTime
	}
	s.docs[path] = model.Document{Path: path, ID: lastSegment(path), Fields: fields, CreateTime: created, UpdateTime: now}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	if err := s.beginWrite(ctx, path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, path)
	return nil
}

// List answers from the state at call time, even when held by HoldLists.
func (s *MemoryStore) List(ctx context.Context, collection string) ([]model.Document, error) {
	s.mu.Lock()
	s.lists++
	gate := s.listDelay
	err := s.listErr
	prefix := strings.Trim(collection, "/") + "/"
	out := []model.Document{}
	for path, d := range s.docs {
		rest, ok := strings.CutPrefix(path, prefix)
		if ok && rest != "" && !strings.Contains(rest, "/") {
			out = append(out, d)
		}
	}
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b model.Document) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

func lastSegment(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Users is a settable identity provider.
type Users struct {
	mu      sync.Mutex
	current *model.Identity
	changes pubsub.Topic[*model.Identity]
}

// NewUsers starts signed in as uid, or signed out when uid is empty.
func NewUsers(uid string) *Users {
	u := &Users{}
	if uid != "" {
		u.current = &model.Identity{UID: uid, Email: uid + "@example.com", Token: "token-" + uid}
	}
	return u
}

func (u *Users) CurrentUser() *model.Identity {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.current == nil {
		return nil
	}
	id := *u.current
	return &id
}

func (u *Users) Subscribe(fn func(*model.Identity)) func() {
	return u.changes.Subscribe(fn)
}

// SignIn switches to uid and notifies subscribers.
func (u *Users) SignIn(uid string) {
	id := &model.Identity{UID: uid, Email: uid + "@example.com", Token: "token-" + uid}
	u.mu.Lock()
	u.current = id
	u.mu.Unlock()
	cp := *id
	u.changes.Publish(&cp)
}

// SignOut clears the identity and notifies subscribers.
func (u *Users) SignOut() {
	u.mu.Lock()
	u.current = nil
	u.mu.Unlock()
	u.changes.Publish(nil)
}

// Recorder captures notifications.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Show(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.messages)
}

func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}
