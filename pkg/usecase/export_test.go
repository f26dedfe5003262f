package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/talentbridge/pkg/domain/model"
)

// RunBatch is exported for testing
func RunBatch(ctx context.Context, results []*model.SyncResult, limit int, work func(ctx context.Context, i int, r *model.SyncResult)) {
	runBatch(ctx, results, limit, work)
}

// SetClock replaces the time source of use cases that stamp records
func (uc *UseCases) SetClock(now func() time.Time) {
	uc.Candidate.now = now
	uc.Job.now = now
	uc.Pipeline.now = now
	if uc.Sync != nil {
		uc.Sync.now = now
	}
}
