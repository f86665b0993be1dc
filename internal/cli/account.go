package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/theLastOfCats/gameshelf/internal/model"
	"github.com/theLastOfCats/gameshelf/internal/session"
)

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account on the gameshelf server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				return runSignIn(ctx, a, a.session.Register)
			})
		},
	}
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Check credentials and print a bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				return runSignIn(ctx, a, a.session.Login)
			})
		},
	}
}

func runSignIn(ctx context.Context, a *app, fn func(context.Context, string, string) (*model.Identity, error)) error {
	email, password := a.credentials()
	if email == "" || password == "" {
		return session.ErrMissingCredentials
	}
	id, err := fn(ctx, email, password)
	if err != nil {
		return err
	}
	return a.out.Emit(id, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "uid:   %s\nemail: %s\ntoken: %s\n", id.UID, id.Email, id.Token)
		return err
	})
}
