package activity

import (
	"context"
	"fmt"

	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	slacksvc "github.com/secmon-lab/talentbridge/pkg/service/slack"
	"github.com/secmon-lab/talentbridge/pkg/utils/async"
	"github.com/slack-go/slack"
)

// NameResolver turns ids into display names for notifications. Missing
// names fall back to the id.
type NameResolver interface {
	CandidateName(ctx context.Context, id string) string
	JobTitle(ctx context.Context, id string) string
}

// SlackNotifier posts each stage change to a Slack channel. Posting runs
// in the background so the pipeline move never waits on Slack.
type SlackNotifier struct {
	svc       slacksvc.Service
	channelID string
	names     NameResolver
}

var _ interfaces.ActivityEmitter = &SlackNotifier{}

func NewSlackNotifier(svc slacksvc.Service, channelID string, names NameResolver) *SlackNotifier {
	return &SlackNotifier{svc: svc, channelID: channelID, names: names}
}

func (n *SlackNotifier) Emit(ctx context.Context, event *model.StageChangeEvent) {
	async.Dispatch(ctx, "slack_notify", func(ctx context.Context) error {
		text, blocks := n.render(ctx, event)
		_, err := n.svc.PostMessage(ctx, n.channelID, blocks, text)
		return err
	})
}

func (n *SlackNotifier) render(ctx context.Context, event *model.StageChangeEvent) (string, []slack.Block) {
	candidate := event.CandidateID.String()
	job := event.JobID.String()
	if n.names != nil {
		candidate = n.names.CandidateName(ctx, candidate)
		job = n.names.JobTitle(ctx, job)
	}

	text := fmt.Sprintf("%s moved from %s to %s for %s", candidate, event.From, event.To, job)
	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("*%s* moved from *%s* to *%s*\n%s", candidate, event.From, event.To, job), false, false),
			nil, nil,
		),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("by %s at %s", event.Actor, event.At.Format("2006-01-02 15:04 MST")), false, false),
		),
	}
	return text, blocks
}
