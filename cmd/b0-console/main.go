package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/mujhtech/b0-console/pkg/api"
	"github.com/mujhtech/b0-console/pkg/auth"
	"github.com/mujhtech/b0-console/pkg/config"
	"github.com/mujhtech/b0-console/pkg/log"
	"github.com/mujhtech/b0-console/pkg/otelhelper"
)

func main() {
	cmd := &cli.Command{
		Name:                  "b0-console",
		EnableShellCompletion: true,
		Usage:                 "Terminal client for the b0 backend builder",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the config file",
				Value:   config.DefaultPath(),
				Sources: cli.EnvVars("B0_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "b0 API origin (overrides config)",
				Sources: cli.EnvVars(config.EnvBaseURL),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "API bearer token (overrides config)",
				Sources: cli.EnvVars(config.EnvToken),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars(config.EnvLogLevel),
			},
		},
		Commands: []*cli.Command{
			projectsCommand(),
			endpointsCommand(),
			editCommand(),
			watchCommand(),
			actionCommand(),
			chatCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup resolves configuration, installs the logger and builds the API
// client shared by every subcommand.
func setup(ctx context.Context, command *cli.Command, module string) (*config.Config, *api.Client, *slog.Logger, error) {
	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return nil, nil, nil, err
	}

	if v := command.String("base-url"); v != "" {
		cfg.BaseURL = v
	}

	if v := command.String("token"); v != "" {
		cfg.Token = v
	}

	if v := command.String("log-level"); v != "" {
		cfg.LogLevel = v
	}

	log.Setup(cfg.LogLevel)
	logger := log.WithModule(module)

	if cfg.OtelEndpoint != "" {
		os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OtelEndpoint)

		if _, err := otelhelper.NewTracer(ctx, "b0-console"); err != nil {
			logger.Warn("trace export disabled", "error", err)
		}
	}

	if cfg.Token != "" {
		token := auth.Token(cfg.Token)
		if token.ExpiresWithin(24 * time.Hour) {
			logger.Warn("API token expires within 24h, consider re-authenticating")
		}
	}

	client := api.NewClient(api.Config{
		BaseURL: cfg.BaseURL,
		Token:   cfg.Token,
		Logger:  logger,
	})

	return cfg, client, logger, nil
}
