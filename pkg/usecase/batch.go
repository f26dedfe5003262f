package usecase

import (
	"context"

	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"golang.org/x/sync/errgroup"
)

const errNotStarted = "sync cancelled before this item started"

// runBatch calls work for every result slot with at most limit calls in
// flight. Once ctx is done no further items start; items already started
// run to completion on a context detached from ctx so a remote write is
// never cut off halfway. Slots never started keep a failed result.
func runBatch(ctx context.Context, results []*model.SyncResult, limit int, work func(ctx context.Context, i int, r *model.SyncResult)) {
	if limit < 1 {
		limit = 1
	}
	for _, r := range results {
		r.Success = false
		r.Error = errNotStarted
	}

	detached := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(limit)
	for i := range results {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i].Error = ""
			work(detached, i, results[i])
			return nil
		})
	}
	_ = g.Wait()
}
