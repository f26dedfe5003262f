package usecase_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/usecase"
)

func newResults(n int) []*model.SyncResult {
	results := make([]*model.SyncResult, n)
	for i := range results {
		results[i] = &model.SyncResult{}
	}
	return results
}

func TestRunBatchLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	results := newResults(12)

	usecase.RunBatch(context.Background(), results, 3, func(ctx context.Context, i int, r *model.SyncResult) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		r.Success = true
	})

	gt.B(t, peak.Load() <= 3).True()
	for _, r := range results {
		gt.B(t, r.Success).True()
		gt.Value(t, r.Error).Equal("")
	}
}

func TestRunBatchStopsStartingAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var started []int
	results := newResults(6)

	usecase.RunBatch(ctx, results, 1, func(workCtx context.Context, i int, r *model.SyncResult) {
		mu.Lock()
		started = append(started, i)
		mu.Unlock()
		if i == 1 {
			cancel()
		}
		// in-flight work keeps a live context after the caller cancels
		gt.NoError(t, workCtx.Err())
		r.Success = true
	})

	gt.Array(t, started).Length(2).Required()
	gt.B(t, results[0].Success).True()
	gt.B(t, results[1].Success).True()
	for _, r := range results[2:] {
		gt.B(t, r.Success).False()
		gt.String(t, r.Error).NotEqual("")
	}
}
