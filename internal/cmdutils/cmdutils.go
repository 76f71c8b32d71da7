package cmdutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/openkcm/common-sdk/pkg/otlp"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/taskmanager-client/internal/business"
	"github.com/openkcm/taskmanager-client/internal/config"
	"github.com/openkcm/taskmanager-client/pkg/apiclient"
)

type BusinessFunc func(context.Context, *config.Config) error

type WrapperFunc func(context.Context, BusinessFunc, *config.Config) error

// ClientFunc runs a command against the API. args are the positional
// arguments of the command.
type ClientFunc func(ctx context.Context, c *apiclient.Client, args []string) error

func CobraCommand(
	use, short, long, buildInfo string,
	wrapperFunc WrapperFunc,
	businesFunc BusinessFunc,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			err = wrapperFunc(cmd.Context(), businesFunc, cfg)
			if err != nil {
				return fmt.Errorf("running %s: %w", cmd.Name(), err)
			}

			return nil
		},
	}
}

// ClientCommand builds a command that runs fn as a job with an API client
// built from the configuration.
func ClientCommand(use, short, long, buildInfo string, args cobra.PositionalArgs, fn ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return RunAsJob(cmd.Context(), func(ctx context.Context, cfg *config.Config) error {
				return business.WithClient(ctx, cfg, func(ctx context.Context, c *apiclient.Client) error {
					return fn(ctx, c, args)
				})
			}, cfg)
		},
	}
}

// RunAsService runs a long-lived command with telemetry.
func RunAsService(ctx context.Context, fn BusinessFunc, cfg *config.Config) error {
	return run(ctx, true, fn, cfg)
}

func RunAsJob(ctx context.Context, fn BusinessFunc, cfg *config.Config) error {
	return run(ctx, false, fn, cfg)
}

func run(ctx context.Context, withTelemetry bool, fn BusinessFunc, cfg *config.Config) error {
	// LoggerConfig
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}
	slogctx.Debug(ctx, "Starting the command", slog.Any("config", cfg))

	// OpenTelemetry
	if withTelemetry {
		err = otlp.Init(ctx, &cfg.Application, &cfg.Telemetry, &cfg.Logger)
		if err != nil {
			return oops.In("main").Wrapf(err, "Failed to load the telemetry")
		}
	}

	// Business Logic
	err = fn(ctx, cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "Command failed")
	}

	return nil
}

func loadConfig(buildInfo string) (*config.Config, error) {
	defaultValues := map[string]any{}
	cfg := &config.Config{}

	err := commoncfg.LoadConfig(
		cfg,
		defaultValues,
		"/etc/taskctl",
		"$HOME/.taskctl",
		".",
	)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	// Update Version
	err = commoncfg.UpdateConfigVersion(
		&cfg.BaseConfig,
		buildInfo,
	)
	if err != nil {
		return nil, fmt.Errorf("updating the version configuration: %w", err)
	}

	return cfg, nil
}
