package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/talentbridge/pkg/utils/async"
)

func TestDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int32
	async.Dispatch(ctx, "ok", func(ctx context.Context) error {
		gt.NoError(t, ctx.Err())
		ran.Add(1)
		return nil
	})
	async.Dispatch(ctx, "fails", func(ctx context.Context) error {
		ran.Add(1)
		return errors.New("boom")
	})
	async.Dispatch(ctx, "panics", func(ctx context.Context) error {
		ran.Add(1)
		panic("boom")
	})

	waitCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	gt.NoError(t, async.Wait(waitCtx)).Required()
	gt.Number(t, ran.Load()).Equal(3)
}
