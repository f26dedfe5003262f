package usecase

import (
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/domain/model/config"
)

type UseCases struct {
	repo      interfaces.Repository
	settings  *config.Settings
	provider  interfaces.OAuthProvider
	crm       interfaces.CRM
	source    interfaces.DataSource
	emitter   interfaces.ActivityEmitter
	oauthOpts []OAuthOption

	Candidate *CandidateUseCase
	Job       *JobUseCase
	Pipeline  *PipelineUseCase
	// OAuth and Sync are nil when no CRM is configured
	OAuth *OAuthUseCase
	Sync  *SyncUseCase
	// Remote is nil when there is neither a data source nor a CRM
	Remote *RemoteUseCase
}

type Option func(*UseCases)

func WithSettings(settings *config.Settings) Option {
	return func(uc *UseCases) {
		uc.settings = settings
	}
}

// WithCRM enables the OAuth flow and CRM sync
func WithCRM(provider interfaces.OAuthProvider, client interfaces.CRM, opts ...OAuthOption) Option {
	return func(uc *UseCases) {
		uc.provider = provider
		uc.crm = client
		uc.oauthOpts = opts
	}
}

// WithDataSource overrides the data source. Without it the CRM is used
// when configured.
func WithDataSource(source interfaces.DataSource) Option {
	return func(uc *UseCases) {
		uc.source = source
	}
}

func WithActivityEmitter(emitter interfaces.ActivityEmitter) Option {
	return func(uc *UseCases) {
		uc.emitter = emitter
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.settings == nil {
		uc.settings = config.DefaultSettings()
	}

	uc.Candidate = NewCandidateUseCase(repo)
	uc.Job = NewJobUseCase(repo, uc.settings)
	uc.Pipeline = NewPipelineUseCase(repo, uc.emitter)

	if uc.provider != nil && uc.crm != nil {
		uc.OAuth = NewOAuthUseCase(repo, uc.provider, uc.oauthOpts...)
		uc.Sync = NewSyncUseCase(repo, uc.OAuth, uc.crm, uc.settings)
	}

	source := uc.source
	if source == nil && uc.Sync != nil {
		source = uc.Sync
	}
	if source != nil {
		uc.Remote = NewRemoteUseCase(repo, source, uc.settings)
	}

	return uc
}

// Settings returns the effective settings
func (uc *UseCases) Settings() *config.Settings {
	return uc.settings
}
