package cli

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/cli/config"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	defaultEnvFile = ".env"
	envFileVar     = "TALENTBRIDGE_ENV_FILE"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	if err := loadEnvFile(); err != nil {
		logging.Default().Error("failed to load env file", "error", err)
		return err
	}

	flags := loggerCfg.Flags()
	flags = append(flags, sentryCfg.Flags()...)

	app := &cli.Command{
		Name:    "talentbridge",
		Usage:   "Applicant tracking with CRM synchronization",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, f)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			logging.Default().Info("Starting talentbridge", "version", version, "logger", loggerCfg, "sentry", sentryCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(version),
			cmdSync(),
			cmdMigrate(),
			cmdValidate(),
			cmdSecret(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}

// loadEnvFile fills the environment from a dotenv file before flags are
// parsed. Variables already set in the environment take precedence. The
// default file is optional; an explicitly named one must exist.
func loadEnvFile() error {
	path := os.Getenv(envFileVar)
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return goerr.Wrap(err, "env file is not readable", goerr.V(config.PathKey, path))
	}

	if err := godotenv.Load(path); err != nil {
		return goerr.Wrap(err, "failed to parse env file", goerr.V(config.PathKey, path))
	}
	return nil
}
