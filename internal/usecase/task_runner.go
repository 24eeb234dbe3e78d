package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"civiq/pkg/logger"
)

// TaskRunner runs side effects after the primary write has committed. Each
// task gets a context detached from the request (values kept, cancellation
// dropped) and its own timeout; failures are logged and never reach the
// caller.
type TaskRunner struct {
	wg  sync.WaitGroup
	log logger.Logger
}

func NewTaskRunner(log logger.Logger) *TaskRunner {
	return &TaskRunner{log: log}
}

func (r *TaskRunner) Go(parent context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("background task panicked", "task", name, "panic", fmt.Sprint(rec))
			}
		}()

		ctx := context.WithoutCancel(parent)
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if err := fn(ctx); err != nil {
			r.log.Error("background task failed", "task", name, "error", err)
		}
	}()
}

// Wait blocks until every spawned task has returned.
func (r *TaskRunner) Wait() {
	r.wg.Wait()
}
