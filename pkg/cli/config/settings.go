package config

import (
	"bytes"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/talentbridge/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

// settingsFile is the TOML schema of the settings file. Absent keys keep
// their defaults.
type settingsFile struct {
	CompanyName        *string `toml:"company_name"`
	SyncEnabled        *bool   `toml:"sync_enabled"`
	EmailNotifications *bool   `toml:"email_notifications"`
	DefaultCompany     *string `toml:"default_company"`

	Sync struct {
		Concurrency   *int     `toml:"concurrency"`
		Timeout       *string  `toml:"timeout"`
		RatePerSecond *float64 `toml:"rate_per_second"`
	} `toml:"sync"`

	Pipeline struct {
		OpenDealStage   *string `toml:"open_deal_stage"`
		ClosedDealStage *string `toml:"closed_deal_stage"`
	} `toml:"pipeline"`
}

func (f *settingsFile) apply(s *domainConfig.Settings) error {
	if f.CompanyName != nil {
		s.CompanyName = *f.CompanyName
	}
	if f.SyncEnabled != nil {
		s.SyncEnabled = *f.SyncEnabled
	}
	if f.EmailNotifications != nil {
		s.EmailNotifications = *f.EmailNotifications
	}
	if f.DefaultCompany != nil {
		s.DefaultCompany = *f.DefaultCompany
	}
	if f.Sync.Concurrency != nil {
		s.Sync.Concurrency = *f.Sync.Concurrency
	}
	if f.Sync.Timeout != nil {
		d, err := time.ParseDuration(*f.Sync.Timeout)
		if err != nil {
			return goerr.Wrap(ErrInvalidSettings, "sync.timeout is not a duration",
				goerr.V("timeout", *f.Sync.Timeout), goerr.V("error", err.Error()))
		}
		s.Sync.Timeout = d
	}
	if f.Sync.RatePerSecond != nil {
		s.Sync.RatePerSecond = *f.Sync.RatePerSecond
	}
	if f.Pipeline.OpenDealStage != nil {
		s.Pipeline.OpenDealStage = *f.Pipeline.OpenDealStage
	}
	if f.Pipeline.ClosedDealStage != nil {
		s.Pipeline.ClosedDealStage = *f.Pipeline.ClosedDealStage
	}
	return nil
}

// LoadSettings reads a TOML settings file on top of the defaults. Unknown
// keys are rejected.
func LoadSettings(path string) (*domainConfig.Settings, error) {
	// #nosec G304 - path is provided by CLI flag
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read settings file", goerr.V(PathKey, path))
	}

	var file settingsFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, goerr.Wrap(ErrInvalidSettings, "failed to parse settings file",
			goerr.V(PathKey, path), goerr.V("error", err.Error()))
	}

	settings := domainConfig.DefaultSettings()
	if err := file.apply(settings); err != nil {
		return nil, goerr.Wrap(err, "invalid settings file", goerr.V(PathKey, path))
	}
	if err := settings.Validate(); err != nil {
		return nil, goerr.Wrap(err, "settings validation failed", goerr.V(PathKey, path))
	}
	return settings, nil
}

// Settings selects the application settings file
type Settings struct {
	path string
}

func (x *Settings) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "settings",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML settings file; defaults apply when empty",
			Sources:     cli.EnvVars("TALENTBRIDGE_SETTINGS"),
			Destination: &x.path,
		},
	}
}

func (x Settings) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure loads the settings once. The result must not be mutated.
func (x *Settings) Configure() (*domainConfig.Settings, error) {
	if x.path == "" {
		return domainConfig.DefaultSettings(), nil
	}
	return LoadSettings(x.path)
}
