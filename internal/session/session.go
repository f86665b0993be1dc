// Package session is the client side auth provider: who is signed in, and a
// stream of changes to that.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/theLastOfCats/gameshelf/internal/logging"
	"github.com/theLastOfCats/gameshelf/internal/model"
	"github.com/theLastOfCats/gameshelf/internal/pubsub"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingCredentials = errors.New("email and password are required")
)

// Authenticator checks credentials against the backend.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.Identity, error)
	Register(ctx context.Context, email, password string) (*model.Identity, error)
}

type Session struct {
	auth   Authenticator
	logger *slog.Logger

	mu      sync.RWMutex
	current *model.Identity
	changes pubsub.Topic[*model.Identity]
}

func New(auth Authenticator, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{auth: auth, logger: logger}
}

// CurrentUser returns a copy of the signed in identity, or nil.
func (s *Session) CurrentUser() *model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	id := *s.current
	return &id
}

// Token returns the bearer token of the signed in user, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Subscribe registers fn for future identity changes. nil means signed out.
func (s *Session) Subscribe(fn func(*model.Identity)) func() {
	return s.changes.Subscribe(fn)
}

func (s *Session) Login(ctx context.Context, email, password string) (*model.Identity, error) {
	return s.signIn(ctx, "login", email, password, s.auth.Login)
}

func (s *Session) Register(ctx context.Context, email, password string) (*model.Identity, error) {
	return s.signIn(ctx, "register", email, password, s.auth.Register)
}

func (s *Session) signIn(ctx context.Context, op, email, password string, fn func(context.Context, string, string) (*model.Identity, error)) (*model.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	id, err := fn(ctx, email, password)
	if err != nil {
		s.logger.Warn("sign in failed", slog.String("op", op), slog.String("email", email), logging.Err(err))
		return nil, err
	}

	s.set(id)
	s.logger.Info("signed in", slog.String("op", op), slog.String("uid", id.UID))
	return s.CurrentUser(), nil
}

// Logout forgets the current identity. Signing out twice publishes once.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	was := s.current
	s.current = nil
	s.mu.Unlock()

	if was != nil {
		s.logger.Info("signed out", slog.String("uid", was.UID))
		s.changes.Publish(nil)
	}
	return nil
}

func (s *Session) set(id *model.Identity) {
	cp := *id
	s.mu.Lock()
	s.current = &cp
	s.mu.Unlock()

	pub := cp
	s.changes.Publish(&pub)
}
