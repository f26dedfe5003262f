package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/talentbridge/pkg/cli"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/repository/sqlite"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestRun_ValidateCommand_ValidFiles(t *testing.T) {
	settingsPath := writeFile(t, "settings.toml", `
company_name = "Acme Recruiting"
sync_enabled = true

[sync]
concurrency = 4
timeout = "15s"

[pipeline]
closed_deal_stage = "closedwon"
`)
	fixturePath := writeFile(t, "fixture.yaml", `
candidates:
  - name: Sarah Johnson
    email: sarah@example.com
    skills: [Go, Kubernetes]
jobs:
  - title: Backend Engineer
    company: Acme
`)

	err := cli.Run(context.Background(), []string{
		"talentbridge", "validate",
		"--settings", settingsPath,
		"--data-source", "fixture",
		"--fixture-path", fixturePath,
	}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_InvalidSettings(t *testing.T) {
	settingsPath := writeFile(t, "settings.toml", `
[sync]
concurrency = 0
`)

	err := cli.Run(context.Background(), []string{"talentbridge", "validate", "--settings", settingsPath}, "test")
	gt.Error(t, err)
}

func TestRun_ValidateCommand_InvalidFixture(t *testing.T) {
	fixturePath := writeFile(t, "fixture.yaml", `
jobs:
  - company: Acme
`)

	err := cli.Run(context.Background(), []string{
		"talentbridge", "validate",
		"--data-source", "fixture",
		"--fixture-path", fixturePath,
	}, "test")
	gt.Error(t, err)
}

func TestRun_ValidateCommand_CheckDB(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "talentbridge.db")

	repo, err := sqlite.New(ctx, dbPath)
	gt.NoError(t, err).Required()
	_, err = repo.Candidate().Create(ctx, &model.Candidate{Name: "A", Email: "a@example.com", RemoteID: "501"})
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Close()).Required()

	args := []string{"talentbridge", "validate", "--check-db", "--repository-backend", "sqlite", "--sqlite-path", dbPath}
	gt.NoError(t, cli.Run(ctx, args, "test"))

	repo, err = sqlite.New(ctx, dbPath)
	gt.NoError(t, err).Required()
	_, err = repo.Candidate().Create(ctx, &model.Candidate{Name: "B", Email: "b@example.com", RemoteID: "501"})
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Close()).Required()

	gt.Error(t, cli.Run(ctx, args, "test"))
}

func TestRun_SyncCommand_FixtureSource(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "talentbridge.db")

	repo, err := sqlite.New(ctx, dbPath)
	gt.NoError(t, err).Required()
	created, err := repo.Candidate().Create(ctx, &model.Candidate{Name: "Sarah Johnson", Email: "sarah@example.com", Skills: []string{}})
	gt.NoError(t, err).Required()
	job, err := repo.Job().Create(ctx, &model.Job{Title: "Backend Engineer"})
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Close()).Required()

	args := []string{
		"talentbridge", "sync",
		"--repository-backend", "sqlite",
		"--sqlite-path", dbPath,
		"--data-source", "fixture",
	}
	gt.NoError(t, cli.Run(ctx, args, "test")).Required()

	repo, err = sqlite.New(ctx, dbPath)
	gt.NoError(t, err).Required()
	defer func() { _ = repo.Close() }()

	c, err := repo.Candidate().Get(ctx, created.ID)
	gt.NoError(t, err).Required()
	gt.String(t, c.RemoteID).NotEqual("")

	j, err := repo.Job().Get(ctx, job.ID)
	gt.NoError(t, err).Required()
	gt.String(t, j.RemoteID).NotEqual("")
}

func TestRun_SyncCommand_ReportsFailures(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "talentbridge.db")

	repo, err := sqlite.New(ctx, dbPath)
	gt.NoError(t, err).Required()
	_, err = repo.Candidate().Create(ctx, &model.Candidate{Name: "No Email", Skills: []string{}})
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Close()).Required()

	err = cli.Run(ctx, []string{
		"talentbridge", "sync",
		"--entity", "candidates",
		"--repository-backend", "sqlite",
		"--sqlite-path", dbPath,
		"--data-source", "fixture",
	}, "test")
	gt.Error(t, err)
}

func TestRun_SyncCommand_InvalidEntity(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"talentbridge", "sync", "--entity", "deals", "--repository-backend", "memory",
	}, "test")
	gt.Error(t, err)
}

func TestRun_EnvFile(t *testing.T) {
	settingsPath := writeFile(t, "settings.toml", `
[sync]
concurrency = 0
`)
	envPath := writeFile(t, "test.env", "TALENTBRIDGE_SETTINGS="+settingsPath+"\n")

	t.Run("env file supplies flag values", func(t *testing.T) {
		t.Setenv("TALENTBRIDGE_ENV_FILE", envPath)
		os.Unsetenv("TALENTBRIDGE_SETTINGS")
		t.Cleanup(func() { os.Unsetenv("TALENTBRIDGE_SETTINGS") })

		err := cli.Run(context.Background(), []string{"talentbridge", "validate"}, "test")
		gt.Error(t, err)
	})

	t.Run("missing explicit env file fails", func(t *testing.T) {
		t.Setenv("TALENTBRIDGE_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

		err := cli.Run(context.Background(), []string{"talentbridge", "validate"}, "test")
		gt.Error(t, err)
	})
}
