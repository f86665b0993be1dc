package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Email    string
	Password string
	Lang     string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the shelf CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shelf",
		Short: "Browse the game catalog and keep a favorites shelf",
		Long: `shelf queries a RAWG compatible game catalog and keeps the signed in
user's favorite games in a gameshelf server.

Credentials come from --email/--password or SHELF_EMAIL/SHELF_PASSWORD.
Without them every catalog command still works; favorites need a user.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Email, "email", "", "account email (overrides SHELF_EMAIL)")
	cmd.PersistentFlags().StringVar(&opts.Password, "password", "", "account password (overrides SHELF_PASSWORD)")
	cmd.PersistentFlags().StringVar(&opts.Lang, "lang", "en", "language used to sort favorites")

	// Add subcommands
	cmd.AddCommand(NewGamesCommand(opts))
	cmd.AddCommand(NewGameCommand(opts))
	cmd.AddCommand(NewGenresCommand(opts))
	cmd.AddCommand(NewPlatformsCommand(opts))
	cmd.AddCommand(NewFavoritesCommand(opts))
	cmd.AddCommand(NewToggleCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))

	return cmd
}
