package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

var errSyncIncomplete = goerr.New("some records failed to sync")

func cmdSync() *cli.Command {
	var tenantID string
	var entity string
	var app appConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "tenant",
			Aliases:     []string{"t"},
			Usage:       "Tenant (CRM portal) ID to push to",
			Sources:     cli.EnvVars("TALENTBRIDGE_TENANT"),
			Destination: &tenantID,
		},
		&cli.StringFlag{
			Name:        "entity",
			Aliases:     []string{"e"},
			Usage:       "What to push (candidates, jobs, all)",
			Value:       "all",
			Destination: &entity,
		},
	}
	flags = append(flags, app.Flags()...)

	return &cli.Command{
		Name:  "sync",
		Usage: "Push local candidates and jobs to the CRM once",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var pushCandidates, pushJobs bool
			switch entity {
			case "candidates":
				pushCandidates = true
			case "jobs":
				pushJobs = true
			case "all":
				pushCandidates, pushJobs = true, true
			default:
				return goerr.New("invalid entity, must be candidates, jobs or all", goerr.V("entity", entity))
			}

			built, err := app.build(ctx, nil)
			if err != nil {
				return err
			}
			defer built.close()

			remote := built.uc.Remote
			if remote == nil {
				return goerr.New("neither a CRM nor a data source is configured")
			}

			w := c.Root().Writer
			tenant := types.TenantID(tenantID)
			failed := 0

			if pushCandidates {
				results, err := remote.PushCandidates(ctx, tenant, nil)
				if err != nil {
					return err
				}
				failed += printSyncResults(w, "candidates", remote.Source(), results)
			}
			if pushJobs {
				results, err := remote.PushJobs(ctx, tenant, nil)
				if err != nil {
					return err
				}
				failed += printSyncResults(w, "jobs", remote.Source(), results)
			}

			if failed > 0 {
				return goerr.Wrap(errSyncIncomplete, "sync finished with failures", goerr.V("failed", failed))
			}
			return nil
		},
	}
}

// printSyncResults writes one line per record and a summary. It returns the
// number of failed records.
func printSyncResults(w io.Writer, entity, source string, results []*model.SyncResult) int {
	ok := color.New(color.FgGreen).SprintFunc()
	ng := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	_, _ = fmt.Fprintf(w, "%s %s via %s\n", color.New(color.Bold).Sprint("Sync"), entity, source)

	failed := 0
	for _, r := range results {
		if r.Success {
			_, _ = fmt.Fprintf(w, "  %s %s %s\n", ok("✔"), r.EntityName, dim("→ "+r.RemoteID))
			continue
		}
		failed++
		_, _ = fmt.Fprintf(w, "  %s %s: %s\n", ng("✘"), r.EntityName, r.Error)
	}

	summary := fmt.Sprintf("%d/%d succeeded", len(results)-failed, len(results))
	if failed > 0 {
		_, _ = fmt.Fprintf(w, "  %s\n", ng(summary))
	} else {
		_, _ = fmt.Fprintf(w, "  %s\n", ok(summary))
	}
	return failed
}
