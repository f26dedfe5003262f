package cli

import (
	"context"

	"github.com/secmon-lab/talentbridge/pkg/cli/config"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/service/activity"
	"github.com/secmon-lab/talentbridge/pkg/usecase"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
	"github.com/secmon-lab/talentbridge/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// appConfig gathers the flags shared by commands that run use cases
type appConfig struct {
	repo       config.Repository
	settings   config.Settings
	crm        config.CRM
	slack      config.Slack
	dataSource config.DataSource
}

func (x *appConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.settings.Flags()...)
	flags = append(flags, x.crm.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	flags = append(flags, x.dataSource.Flags()...)
	return flags
}

type builtApp struct {
	uc   *usecase.UseCases
	repo interfaces.Repository
}

func (b *builtApp) close() {
	safe.Close(context.Background(), b.repo)
}

// build wires the use cases. hub may be nil when nothing streams events.
func (x *appConfig) build(ctx context.Context, hub *activity.Hub) (*builtApp, error) {
	settings, err := x.settings.Configure()
	if err != nil {
		return nil, err
	}

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, err
	}

	opts := []usecase.Option{usecase.WithSettings(settings)}

	var emitters activity.Fanout
	if hub != nil {
		emitters = append(emitters, hub)
	}
	notifier, err := x.slack.Configure(repo)
	if err != nil {
		safe.Close(ctx, repo)
		return nil, err
	}
	if notifier != nil {
		emitters = append(emitters, notifier)
	}
	if len(emitters) > 0 {
		opts = append(opts, usecase.WithActivityEmitter(emitters))
	}

	if x.crm.IsConfigured() {
		client, provider, err := x.crm.Configure(settings)
		if err != nil {
			safe.Close(ctx, repo)
			return nil, err
		}
		opts = append(opts, usecase.WithCRM(provider, client, x.crm.OAuthOptions()...))
	} else {
		logging.From(ctx).Info("CRM integration disabled")
	}

	source, err := x.dataSource.Configure()
	if err != nil {
		safe.Close(ctx, repo)
		return nil, err
	}
	if source != nil {
		opts = append(opts, usecase.WithDataSource(source))
	}

	return &builtApp{
		uc:   usecase.New(repo, opts...),
		repo: repo,
	}, nil
}
