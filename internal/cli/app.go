package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/theLastOfCats/gameshelf/internal/catalog"
	"github.com/theLastOfCats/gameshelf/internal/config"
	"github.com/theLastOfCats/gameshelf/internal/docstore"
	"github.com/theLastOfCats/gameshelf/internal/favorites"
	"github.com/theLastOfCats/gameshelf/internal/logging"
	"github.com/theLastOfCats/gameshelf/internal/notify"
	"github.com/theLastOfCats/gameshelf/internal/session"
)

// app is the client side object graph shared by the commands.
type app struct {
	cfg      *config.Client
	opts     *RootOptions
	out      *OutputFormatter
	logger   *slog.Logger
	catalog  *catalog.Service
	store    *docstore.Client
	session  *session.Session
	notifier *notify.Notifier

	unsubscribe func()
}

func newApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	logger := logging.New(logging.Config{Writer: cmd.ErrOrStderr(), Level: level})

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	transport := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogAPIKey,
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.CatalogTimeout}),
		catalog.WithRateLimit(cfg.CatalogRPS),
	)

	store := docstore.NewClient(cfg.ServerURL, nil)
	sess := session.New(store, logger)
	store.SetTokenSource(sess)

	notifier := notify.New(notify.DefaultDuration)
	a := &app{
		cfg:      cfg,
		opts:     opts,
		out:      out,
		logger:   logger,
		catalog:  catalog.NewService(transport),
		store:    store,
		session:  sess,
		notifier: notifier,
	}
	a.unsubscribe = notifier.Subscribe(out.Notice)
	return a, nil
}

func (a *app) close() {
	a.unsubscribe()
	a.notifier.Stop()
}

func (a *app) credentials() (string, string) {
	email, password := a.opts.Email, a.opts.Password
	if email == "" {
		email = a.cfg.Email
	}
	if password == "" {
		password = a.cfg.Password
	}
	return email, password
}

// signIn logs in with the configured credentials. Without credentials it
// stays signed out and reports false.
func (a *app) signIn(ctx context.Context) (bool, error) {
	email, password := a.credentials()
	if email == "" && password == "" {
		return false, nil
	}
	if _, err := a.session.Login(ctx, email, password); err != nil {
		return false, fmt.Errorf("login: %w", err)
	}
	a.out.VerboseLog("signed in as %s", email)
	return true, nil
}

// requireUser signs in or fails.
func (a *app) requireUser(ctx context.Context) error {
	ok, err := a.signIn(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return favorites.ErrAuthRequired
	}
	return nil
}

func (a *app) favoriteOptions() []favorites.Option {
	return []favorites.Option{favorites.WithLogger(a.logger), favorites.WithNotifier(a.notifier)}
}

func (a *app) synchronizer() *favorites.Synchronizer {
	return favorites.New(a.store, a.session, a.favoriteOptions()...)
}

func (a *app) library() (*favorites.Library, error) {
	tag, err := language.Parse(a.opts.Lang)
	if err != nil {
		return nil, fmt.Errorf("invalid --lang %q: %w", a.opts.Lang, err)
	}
	return favorites.NewLibrary(a.store, a.session, tag, a.favoriteOptions()...), nil
}

// withApp builds the app for one command run and tears it down afterwards.
func withApp(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(cmd.Context(), a)
}
