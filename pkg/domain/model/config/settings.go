package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultCompanyName     = "NOBA Experts"
	DefaultSyncConcurrency = 4
	DefaultSyncTimeout     = 15 * time.Second
	DefaultRatePerSecond   = 10.0
	DefaultOpenDealStage   = "qualifiedtobuy"
	DefaultClosedDealStage = "closedwon"

	MaxSyncConcurrency = 16
	MinSyncTimeout     = time.Second
	MaxSyncTimeout     = 60 * time.Second
)

// ErrInvalidSettings is returned when a settings value is out of range
var ErrInvalidSettings = goerr.New("invalid settings")

// SyncSettings controls outbound CRM traffic
type SyncSettings struct {
	Concurrency   int           `json:"concurrency"`
	Timeout       time.Duration `json:"timeout"`
	RatePerSecond float64       `json:"ratePerSecond"`
}

// PipelineSettings maps job status onto CRM deal stages
type PipelineSettings struct {
	OpenDealStage   string `json:"openDealStage"`
	ClosedDealStage string `json:"closedDealStage"`
}

// Settings is the immutable application settings schema
type Settings struct {
	CompanyName        string           `json:"companyName"`
	SyncEnabled        bool             `json:"syncEnabled"`
	EmailNotifications bool             `json:"emailNotifications"`
	DefaultCompany     string           `json:"defaultCompany"`
	Sync               SyncSettings     `json:"sync"`
	Pipeline           PipelineSettings `json:"pipeline"`
}

// DefaultSettings returns the settings used when no file is given
func DefaultSettings() *Settings {
	return &Settings{
		CompanyName:        DefaultCompanyName,
		SyncEnabled:        true,
		EmailNotifications: true,
		DefaultCompany:     DefaultCompanyName,
		Sync: SyncSettings{
			Concurrency:   DefaultSyncConcurrency,
			Timeout:       DefaultSyncTimeout,
			RatePerSecond: DefaultRatePerSecond,
		},
		Pipeline: PipelineSettings{
			OpenDealStage:   DefaultOpenDealStage,
			ClosedDealStage: DefaultClosedDealStage,
		},
	}
}

func (s *Settings) Validate() error {
	if s.Sync.Concurrency < 1 || s.Sync.Concurrency > MaxSyncConcurrency {
		return goerr.Wrap(ErrInvalidSettings, "sync concurrency out of range",
			goerr.V("concurrency", s.Sync.Concurrency))
	}
	if s.Sync.Timeout < MinSyncTimeout || s.Sync.Timeout > MaxSyncTimeout {
		return goerr.Wrap(ErrInvalidSettings, "sync timeout out of range",
			goerr.V("timeout", s.Sync.Timeout.String()))
	}
	if s.Sync.RatePerSecond <= 0 {
		return goerr.Wrap(ErrInvalidSettings, "rate per second must be positive",
			goerr.V("rate_per_second", s.Sync.RatePerSecond))
	}
	if s.Pipeline.OpenDealStage == "" || s.Pipeline.ClosedDealStage == "" {
		return goerr.Wrap(ErrInvalidSettings, "deal stages are required")
	}
	return nil
}
