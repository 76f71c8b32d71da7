package profile

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openkcm/taskmanager-client/internal/cmdutils"
	"github.com/openkcm/taskmanager-client/pkg/apiclient"
)

func Cmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the user profile",
	}

	cmd.AddCommand(getCmd(buildInfo, printer), updateCmd(buildInfo, printer))

	return cmd
}

func getCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	return cmdutils.ClientCommand(
		"get",
		"Show the user profile",
		"Show the profile of the logged-in user.",
		buildInfo,
		cobra.NoArgs,
		func(ctx context.Context, c *apiclient.Client, _ []string) error {
			p, err := c.Profile(ctx)
			if err != nil {
				return err
			}

			return printer.Print(p)
		},
	)
}

func updateCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	var (
		cmd        *cobra.Command
		phone, bio string
	)

	cmd = cmdutils.ClientCommand(
		"update",
		"Update the user profile",
		"Update the phone number or the bio of the logged-in user. Only the given flags are changed.",
		buildInfo,
		cobra.NoArgs,
		func(ctx context.Context, c *apiclient.Client, _ []string) error {
			var upd apiclient.ProfileUpdate
			if cmd.Flags().Changed("phone") {
				upd.Phone = &phone
			}
			if cmd.Flags().Changed("bio") {
				upd.Bio = &bio
			}

			p, err := c.UpdateProfile(ctx, upd)
			if err != nil {
				return err
			}

			return printer.Print(p)
		},
	)

	cmd.Flags().StringVar(&phone, "phone", "", "phone number, at least 10 digits")
	cmd.Flags().StringVar(&bio, "bio", "", "short biography")

	return cmd
}
