package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/bz-cogs/aiuser-rag/pkg/cli/config"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/errutil"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/logging"
)

func Run(ctx context.Context, args []string, version string) error {
	// Local development convenience; a missing .env is not an error
	_ = godotenv.Load()

	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	app := &cli.Command{
		Name:    "aiuser-rag",
		Usage:   "Retrieval-augmented memory pipeline for chat bots",
		Version: version,
		Flags:   append(loggerCfg.Flags(), sentryCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logClose, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, logClose)

			sentryClose, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, sentryClose)

			logging.Default().Info("Starting aiuser-rag", "logger", &loggerCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdIngest(),
			cmdQuery(),
			cmdPurge(),
			cmdExport(),
			cmdStats(),
			cmdHealth(),
			cmdSnapshot(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		return errutil.Handle(ctx, err, "failed to run app")
	}

	return nil
}
