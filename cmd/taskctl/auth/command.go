package auth

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/taskmanager-client/internal/cmdutils"
	"github.com/openkcm/taskmanager-client/pkg/apiclient"
	"github.com/openkcm/taskmanager-client/pkg/session"
)

// passwordEnv is read when --password is not given.
const passwordEnv = "TASKCTL_PASSWORD"

func LoginCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	var creds apiclient.Credentials

	cmd := cmdutils.ClientCommand(
		"login",
		"Log in to the Task Manager",
		"Log in with a username and password and store the issued tokens.",
		buildInfo,
		cobra.NoArgs,
		func(ctx context.Context, c *apiclient.Client, _ []string) error {
			if creds.Password == "" {
				creds.Password = os.Getenv(passwordEnv)
			}

			if _, err := c.Login(ctx, creds); err != nil {
				return err
			}

			printer.Message("Logged in as %s", creds.Username)

			return nil
		},
	)

	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "password, defaults to $"+passwordEnv)

	return cmd
}

func RegisterCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	var reg apiclient.Registration

	cmd := cmdutils.ClientCommand(
		"register",
		"Create a Task Manager account",
		"Create a new account. Log in afterwards to obtain tokens.",
		buildInfo,
		cobra.NoArgs,
		func(ctx context.Context, c *apiclient.Client, _ []string) error {
			if reg.Password == "" {
				reg.Password = os.Getenv(passwordEnv)
			}

			msg, err := c.Register(ctx, reg)
			if err != nil {
				return err
			}

			if msg.Message == "" {
				msg.Message = "Registration successful"
			}

			return printer.Print(msg)
		},
	)

	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&reg.Email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "password, defaults to $"+passwordEnv)

	return cmd
}

func LogoutCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	return cmdutils.ClientCommand(
		"logout",
		"Log out of the Task Manager",
		"Remove the stored tokens.",
		buildInfo,
		cobra.NoArgs,
		func(ctx context.Context, c *apiclient.Client, _ []string) error {
			if err := c.Logout(ctx); err != nil {
				return err
			}

			printer.Message("Logged out")

			return nil
		},
	)
}

type whoami struct {
	LoggedIn    bool            `json:"logged_in" yaml:"logged_in"`
	IsSuperuser bool            `json:"is_superuser" yaml:"is_superuser"`
	Expired     bool            `json:"expired" yaml:"expired"`
	Claims      *session.Claims `json:"claims,omitempty" yaml:"claims,omitempty"`
}

// describeSession reports the login state and the access token claims. Tokens
// that are not JWTs are still usable, they just have no claims to show.
func describeSession(ctx context.Context, sess *session.Session, now time.Time) (whoami, error) {
	loggedIn, err := sess.LoggedIn(ctx)
	if err != nil || !loggedIn {
		return whoami{}, err
	}

	out := whoami{LoggedIn: true}

	claims, err := sess.Claims(ctx)
	if err != nil {
		slogctx.Debug(ctx, "Access token claims unavailable", "error", err)
		return out, nil
	}
	out.Claims = &claims
	out.Expired = claims.Expired(now)

	return out, nil
}

func WhoamiCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	return cmdutils.ClientCommand(
		"whoami",
		"Show the current session",
		"Show the claims of the stored access token and whether the user is a superuser.",
		buildInfo,
		cobra.NoArgs,
		func(ctx context.Context, c *apiclient.Client, _ []string) error {
			out, err := describeSession(ctx, c.Session(), time.Now())
			if err != nil {
				return err
			}
			if !out.LoggedIn {
				return printer.Print(out)
			}

			out.IsSuperuser, err = c.IsSuperuser(ctx)
			if err != nil {
				return err
			}

			return printer.Print(out)
		},
	)
}
