package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/talentbridge/pkg/cli/config"
	domainConfig "github.com/secmon-lab/talentbridge/pkg/domain/model/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeFile(t, "settings.toml", `
company_name = "Acme Talent"
sync_enabled = false
email_notifications = false
default_company = "Acme"

[sync]
concurrency = 8
timeout = "30s"
rate_per_second = 2.5

[pipeline]
open_deal_stage = "appointmentscheduled"
closed_deal_stage = "closedlost"
`)

	s, err := config.LoadSettings(path)
	gt.NoError(t, err).Required()
	gt.Value(t, s.CompanyName).Equal("Acme Talent")
	gt.B(t, s.SyncEnabled).False()
	gt.B(t, s.EmailNotifications).False()
	gt.Value(t, s.DefaultCompany).Equal("Acme")
	gt.Value(t, s.Sync.Concurrency).Equal(8)
	gt.Value(t, s.Sync.Timeout).Equal(30 * time.Second)
	gt.Value(t, s.Sync.RatePerSecond).Equal(2.5)
	gt.Value(t, s.Pipeline.OpenDealStage).Equal("appointmentscheduled")
	gt.Value(t, s.Pipeline.ClosedDealStage).Equal("closedlost")
}

func TestLoadSettingsPartial(t *testing.T) {
	path := writeFile(t, "settings.toml", `
company_name = "Acme Talent"

[sync]
concurrency = 2
`)

	s, err := config.LoadSettings(path)
	gt.NoError(t, err).Required()
	defaults := domainConfig.DefaultSettings()
	gt.Value(t, s.CompanyName).Equal("Acme Talent")
	gt.Value(t, s.Sync.Concurrency).Equal(2)
	gt.Value(t, s.Sync.Timeout).Equal(defaults.Sync.Timeout)
	gt.B(t, s.SyncEnabled).True()
	gt.Value(t, s.Pipeline).Equal(defaults.Pipeline)
}

func TestLoadSettingsErrors(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		path := writeFile(t, "settings.toml", "company_name = \"x\"\nsync_enabeld = true\n")
		_, err := config.LoadSettings(path)
		gt.Error(t, err).Is(config.ErrInvalidSettings)
	})

	t.Run("unknown table key", func(t *testing.T) {
		path := writeFile(t, "settings.toml", "[sync]\nworkers = 3\n")
		_, err := config.LoadSettings(path)
		gt.Error(t, err).Is(config.ErrInvalidSettings)
	})

	t.Run("bad duration", func(t *testing.T) {
		path := writeFile(t, "settings.toml", "[sync]\ntimeout = \"soon\"\n")
		_, err := config.LoadSettings(path)
		gt.Error(t, err).Is(config.ErrInvalidSettings)
	})

	t.Run("concurrency out of range", func(t *testing.T) {
		path := writeFile(t, "settings.toml", "[sync]\nconcurrency = 64\n")
		_, err := config.LoadSettings(path)
		gt.Error(t, err).Is(domainConfig.ErrInvalidSettings)
	})

	t.Run("timeout out of range", func(t *testing.T) {
		path := writeFile(t, "settings.toml", "[sync]\ntimeout = \"5m\"\n")
		_, err := config.LoadSettings(path)
		gt.Error(t, err).Is(domainConfig.ErrInvalidSettings)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadSettings(filepath.Join(t.TempDir(), "absent.toml"))
		gt.Value(t, err).NotNil()
	})
}

func TestSettingsConfigureDefaults(t *testing.T) {
	s, err := config.NewSettingsForTest("").Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, s).Equal(domainConfig.DefaultSettings())
}
