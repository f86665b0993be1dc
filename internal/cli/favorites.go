package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theLastOfCats/gameshelf/internal/favorites"
	"github.com/theLastOfCats/gameshelf/internal/logging"
	"github.com/theLastOfCats/gameshelf/internal/model"
)

// NewFavoritesCommand creates the favorites command.
func NewFavoritesCommand(rootOpts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List the signed in user's favorite games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if err := a.requireUser(ctx); err != nil {
					return err
				}
				lib, err := a.library()
				if err != nil {
					return err
				}
				if err := lib.Load(ctx); err != nil {
					return err
				}
				lib.Filter(filter)
				items := lib.Items()

				return a.out.Emit(items, func(w io.Writer) error {
					if len(items) == 0 {
						_, err := fmt.Fprintln(w, "No favorites yet.")
						return err
					}
					rows := make([][]string, 0, len(items))
					for _, f := range items {
						rows = append(rows, []string{
							strconv.FormatInt(f.GameID, 10),
							f.Name,
							f.CreatedAt.Local().Format("2006-01-02 15:04"),
						})
					}
					return a.out.Table([]string{"ID", "NAME", "ADDED"}, rows)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only show names containing this text")
	return cmd
}

type toggleResult struct {
	GameID  int64  `json:"game_id"`
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
}

// NewToggleCommand creates the toggle command.
func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Add a game to favorites, or remove it if already there",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGameID(args[0])
			if err != nil {
				return err
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				return runToggle(ctx, a, id)
			})
		},
	}
}

func runToggle(ctx context.Context, a *app, id int64) error {
	if err := a.requireUser(ctx); err != nil {
		return err
	}

	game, err := a.catalog.Game(ctx, id)
	if err != nil {
		a.logger.Warn("game lookup failed, storing id only", slog.Int64("game_id", id), logging.Err(err))
		game = &model.Game{ID: id}
	}

	syncer := a.synchronizer()
	defer syncer.Close()
	if err := syncer.Start(ctx); err != nil {
		return err
	}

	outcome, err := syncer.Toggle(ctx, *game)
	if err != nil {
		return err
	}

	res := toggleResult{GameID: id, Name: game.Name, Outcome: outcome.String()}
	return a.out.Emit(res, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s: %s\n", displayName(game), outcome)
		return err
	})
}

func displayName(g *model.Game) string {
	if g.Name != "" {
		return g.Name
	}
	return "#" + strconv.FormatInt(g.ID, 10)
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a game from favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGameID(args[0])
			if err != nil {
				return err
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if err := a.requireUser(ctx); err != nil {
					return err
				}
				lib, err := a.library()
				if err != nil {
					return err
				}
				removed, err := lib.Remove(ctx, id)
				if err != nil {
					var we *favorites.WriteError
					if errors.As(err, &we) {
						return fmt.Errorf("remove %d: %w", id, we.Err)
					}
					return err
				}
				return a.out.Emit(map[string]any{"game_id": id, "removed": removed}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "removed #%d\n", id)
					return err
				})
			})
		},
	}
}
