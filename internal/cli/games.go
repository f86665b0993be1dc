package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theLastOfCats/gameshelf/internal/browse"
	"github.com/theLastOfCats/gameshelf/internal/catalog"
	"github.com/theLastOfCats/gameshelf/internal/docstore"
	"github.com/theLastOfCats/gameshelf/internal/model"
)

type gamesOptions struct {
	filters browse.Filters
	page    int
}

// NewGamesCommand creates the games command.
func NewGamesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &gamesOptions{}

	cmd := &cobra.Command{
		Use:   "games",
		Short: "List catalog games",
		Long: `List one page of catalog games.

A search term switches to search mode and ignores --genre, --platform and
--year. Games without an image are left out of the page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				return runGames(ctx, a, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.filters.Search, "search", "s", "", "search term")
	cmd.Flags().Int64Var(&opts.filters.GenreID, "genre", 0, "genre id")
	cmd.Flags().Int64Var(&opts.filters.PlatformID, "platform", 0, "platform id")
	cmd.Flags().IntVar(&opts.filters.Year, "year", 0, "release year")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "page number")

	return cmd
}

func runGames(ctx context.Context, a *app, opts *gamesOptions) error {
	if _, err := a.signIn(ctx); err != nil {
		return err
	}

	syncer := a.synchronizer()
	defer syncer.Close()

	b := browse.New(a.catalog, syncer, browse.WithLogger(a.logger), browse.WithNotifier(a.notifier))
	defer b.Close()

	if err := b.Open(ctx, opts.filters, opts.page); err != nil {
		return err
	}
	a.out.VerboseLog("query %+v", b.Spec())
	view := b.Snapshot()

	return a.out.Emit(view, func(w io.Writer) error {
		rows := make([][]string, 0, len(view.Cards))
		for _, c := range view.Cards {
			rows = append(rows, []string{
				strconv.FormatInt(c.Game.ID, 10),
				c.Game.Name,
				c.Game.Released,
				strconv.FormatFloat(c.Game.Rating, 'f', 2, 64),
				favoriteMark(c.Favorite),
			})
		}
		if err := a.out.Table([]string{"ID", "NAME", "RELEASED", "RATING", "FAV"}, rows); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\npage %d of %d (%d games)\n", view.CurrentPage, view.TotalPages, view.Total)
		return err
	})
}

func favoriteMark(fav bool) string {
	if fav {
		return "*"
	}
	return ""
}

// NewGameCommand creates the game command.
func NewGameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "game <id>",
		Short: "Show one game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGameID(args[0])
			if err != nil {
				return err
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				g, err := a.catalog.Game(ctx, id)
				if err != nil {
					return err
				}
				detail := gameDetail{Game: g}
				signedIn, err := a.signIn(ctx)
				if err != nil {
					return err
				}
				if signedIn {
					fav, err := a.store.Exists(ctx, docstore.FavoritePath(a.session.CurrentUser().UID, id))
					if err != nil {
						return err
					}
					detail.Favorite = &fav
				}
				return a.out.Emit(detail, func(w io.Writer) error {
					return writeGame(w, detail)
				})
			})
		},
	}
}

// gameDetail is a catalog game plus, when signed in, its favorite state.
type gameDetail struct {
	*model.Game
	Favorite *bool `json:"favorite,omitempty"`
}

func writeGame(w io.Writer, d gameDetail) error {
	g := d.Game
	genres := make([]string, 0, len(g.Genres))
	for _, x := range g.Genres {
		genres = append(genres, x.Name)
	}
	platforms := make([]string, 0, len(g.Platforms))
	for _, x := range g.Platforms {
		platforms = append(platforms, x.Platform.Name)
	}
	developers := make([]string, 0, len(g.Developers))
	for _, x := range g.Developers {
		developers = append(developers, x.Name)
	}

	fmt.Fprintf(w, "%s (#%d)\n", g.Name, g.ID)
	fmt.Fprintf(w, "Released:   %s\n", g.Released)
	fmt.Fprintf(w, "Rating:     %.2f\n", g.Rating)
	fmt.Fprintf(w, "Genres:     %s\n", strings.Join(genres, ", "))
	fmt.Fprintf(w, "Platforms:  %s\n", strings.Join(platforms, ", "))
	fmt.Fprintf(w, "Developers: %s\n", strings.Join(developers, ", "))
	fmt.Fprintf(w, "Image:      %s\n", catalog.ImageOrPlaceholder(*g))
	if d.Favorite != nil {
		fmt.Fprintf(w, "Favorite:   %s\n", yesNo(*d.Favorite))
	}
	if g.Website != "" {
		fmt.Fprintf(w, "Website:    %s\n", g.Website)
	}
	if g.DescriptionRaw != "" {
		fmt.Fprintf(w, "\n%s\n", g.DescriptionRaw)
	}
	return nil
}

// NewGenresCommand creates the genres command.
func NewGenresCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List genres usable with games --genre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				genres, err := a.catalog.Genres(ctx)
				if err != nil {
					return err
				}
				return a.out.Emit(genres, func(io.Writer) error {
					rows := make([][]string, 0, len(genres))
					for _, g := range genres {
						rows = append(rows, []string{strconv.FormatInt(g.ID, 10), g.Name})
					}
					return a.out.Table([]string{"ID", "NAME"}, rows)
				})
			})
		},
	}
}

// NewPlatformsCommand creates the platforms command.
func NewPlatformsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List platforms usable with games --platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				platforms, err := a.catalog.Platforms(ctx)
				if err != nil {
					return err
				}
				return a.out.Emit(platforms, func(io.Writer) error {
					rows := make([][]string, 0, len(platforms))
					for _, p := range platforms {
						rows = append(rows, []string{strconv.FormatInt(p.ID, 10), p.Name})
					}
					return a.out.Table([]string{"ID", "NAME"}, rows)
				})
			})
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func parseGameID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid game id %q", s)
	}
	return id, nil
}
