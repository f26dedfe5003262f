package slack

import (
	"context"

	"github.com/slack-go/slack"
)

// Service is the subset of the Slack Web API used for activity notifications
type Service interface {
	// PostMessage posts blocks (with text as the notification fallback) and
	// returns the message timestamp
	PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error)
}
