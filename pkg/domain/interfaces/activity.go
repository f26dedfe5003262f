package interfaces

import (
	"context"

	"github.com/secmon-lab/talentbridge/pkg/domain/model"
)

// ActivityEmitter receives pipeline events for the activity feed. Emit must
// not block the caller for long.
type ActivityEmitter interface {
	Emit(ctx context.Context, event *model.StageChangeEvent)
}
