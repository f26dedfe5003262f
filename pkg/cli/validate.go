package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/cli/config"
	"github.com/secmon-lab/talentbridge/pkg/usecase"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
	"github.com/secmon-lab/talentbridge/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var settingsCfg config.Settings
	var dataSourceCfg config.DataSource
	var repoCfg config.Repository
	var checkDB bool

	var flags []cli.Flag
	flags = append(flags, settingsCfg.Flags()...)
	flags = append(flags, dataSourceCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "check-db",
		Usage:       "Also check consistency of stored boards and CRM links",
		Destination: &checkDB,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate configuration files and optionally check DB consistency",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			// Step 1: Load and validate configuration files
			settings, err := settingsCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "settings validation failed")
			}
			logger.Info("Settings validation passed", "settings", settings)

			source, err := dataSourceCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "data source validation failed")
			}
			if source != nil {
				logger.Info("Data source validation passed", "data_source", dataSourceCfg)
			}

			// Step 2: Optionally check the stored data
			if !checkDB {
				logger.Info("DB consistency check skipped")
				return nil
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo, usecase.WithSettings(settings))
			validationResult, err := uc.ValidateDB(ctx)
			if err != nil {
				return goerr.Wrap(err, "DB consistency check failed")
			}

			if validationResult.HasIssues() {
				for _, issue := range validationResult.Issues {
					logger.Warn("DB consistency issue found",
						"job_id", issue.JobID,
						"candidate_id", issue.CandidateID,
						"message", issue.Message,
					)
				}

				return fmt.Errorf("DB consistency check found %d issue(s)", len(validationResult.Issues))
			}

			logger.Info("DB consistency check passed")
			return nil
		},
	}
}
