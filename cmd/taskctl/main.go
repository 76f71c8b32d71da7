package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/openkcm/common-sdk/pkg/utils"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/taskmanager-client/cmd/taskctl/auth"
	"github.com/openkcm/taskmanager-client/cmd/taskctl/logs"
	"github.com/openkcm/taskmanager-client/cmd/taskctl/profile"
	"github.com/openkcm/taskmanager-client/cmd/taskctl/tasks"
	"github.com/openkcm/taskmanager-client/cmd/taskctl/teams"
	"github.com/openkcm/taskmanager-client/internal/cmdutils"
	"github.com/openkcm/taskmanager-client/pkg/apiclient"
)

var (
	// BuildInfo will be set by the build system
	BuildInfo = "{}"

	isVersionCmd     bool
	gracefulShutdown time.Duration
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Task Manager CLI Version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		isVersionCmd = true

		value, err := utils.ExtractFromComplexValue(BuildInfo)
		if err != nil {
			return err
		}

		slog.InfoContext(cmd.Context(), value)

		return nil
	},
}

func rootCmd(printer *cmdutils.Printer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "Task Manager CLI",
		Long:          "Command line client of the Task Manager API: personal tasks, teams and the activity log.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().DurationVar(&gracefulShutdown, "graceful-shutdown", 0, "graceful shutdown")
	cmd.PersistentFlags().StringVarP(&printer.Format, "output", "o", cmdutils.FormatYAML, "output format, yaml or json")

	cmd.AddCommand(
		versionCmd,
		auth.LoginCmd(BuildInfo, printer),
		auth.RegisterCmd(BuildInfo, printer),
		auth.LogoutCmd(BuildInfo, printer),
		auth.WhoamiCmd(BuildInfo, printer),
		profile.Cmd(BuildInfo, printer),
		tasks.Cmd(BuildInfo, printer),
		teams.Cmd(BuildInfo, printer),
		logs.Cmd(BuildInfo, printer),
	)

	return cmd
}

func execute() error {
	ctx, cancelOnSignal := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelOnSignal()

	if err := rootCmd(cmdutils.NewPrinter(os.Stdout)).ExecuteContext(ctx); err != nil {
		slogctx.Debug(ctx, "command failed", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, "Error:", describeError(err))

		return err
	}

	if !isVersionCmd && gracefulShutdown > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "Graceful shutdown in %s\n", gracefulShutdown)
		time.Sleep(gracefulShutdown)
	}

	return nil
}

func describeError(err error) string {
	var authErr *apiclient.AuthError
	if errors.As(err, &authErr) {
		if authErr.Reason == apiclient.ReasonNoRefreshToken {
			return "not logged in, run 'taskctl login' first"
		}

		return "your session has expired, run 'taskctl login' again"
	}

	return apiclient.FormatFieldErrors(apiclient.NormalizeErrors(err))
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
