package async

import (
	"context"
	"fmt"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/utils/errutil"
)

var inflight sync.WaitGroup

// Dispatch runs handler in a new goroutine. The handler keeps the caller's
// context values, including its logger, but not its cancellation. Errors
// and panics are logged and reported under task.
func Dispatch(ctx context.Context, task string, handler func(ctx context.Context) error) {
	detached := context.WithoutCancel(ctx)

	inflight.Add(1)
	go func() {
		defer inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(detached, goerr.New(fmt.Sprintf("panic: %v", r), goerr.V("task", task)), "panic in async handler")
			}
		}()

		if err := handler(detached); err != nil {
			_ = errutil.Handle(detached, goerr.Wrap(err, "async handler failed", goerr.V("task", task)), "async handler failed")
		}
	}()
}

// Wait blocks until every dispatched handler has returned or ctx is done
func Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
