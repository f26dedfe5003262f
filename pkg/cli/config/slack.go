package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/service/activity"
	"github.com/secmon-lab/talentbridge/pkg/service/slack"
	"github.com/secmon-lab/talentbridge/pkg/usecase"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Slack configures the optional channel notifier for pipeline moves
type Slack struct {
	botToken  string
	channelID string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for stage change notifications",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("TALENTBRIDGE_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID receiving stage change notifications",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("TALENTBRIDGE_SLACK_CHANNEL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel", x.channelID),
	)
}

// IsConfigured returns true when both token and channel are set
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.channelID != ""
}

// Configure returns the Slack notifier, or nil when Slack is not configured
func (x *Slack) Configure(repo interfaces.Repository) (interfaces.ActivityEmitter, error) {
	if !x.IsConfigured() {
		if x.botToken != "" || x.channelID != "" {
			return nil, goerr.Wrap(ErrMissingFlag, "both slack-bot-token and slack-channel are required")
		}
		return nil, nil
	}

	svc, err := slack.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}

	logging.Default().Info("Slack notifications enabled", "channel", x.channelID)
	return activity.NewSlackNotifier(svc, x.channelID, usecase.NewNameLookup(repo)), nil
}
