package logs

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openkcm/taskmanager-client/internal/cmdutils"
	"github.com/openkcm/taskmanager-client/pkg/apiclient"
)

func Cmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	return cmdutils.ClientCommand(
		"logs",
		"Show the activity log",
		"Show the activity log of all users. Only superusers may read it.",
		buildInfo,
		cobra.NoArgs,
		func(ctx context.Context, c *apiclient.Client, _ []string) error {
			entries, err := c.ListLogs(ctx)
			if err != nil {
				return err
			}

			return printer.Print(entries)
		},
	)
}
