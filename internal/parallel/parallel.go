package parallel

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/23skdu/alignedvec/internal/config"
	"github.com/23skdu/alignedvec/internal/logging"
	"github.com/23skdu/alignedvec/internal/metrics"
)

// The worker budget is shared by every bulk operation in the process, so a
// storm of concurrent operations on distinct vectors cannot oversubscribe
// the machine. Chunks that cannot get a slot run inline on the caller.
var (
	poolOnce sync.Once
	pool     *semaphore.Weighted
)

func budget() *semaphore.Weighted {
	poolOnce.Do(func() {
		n := config.Default().Workers()
		pool = semaphore.NewWeighted(int64(n))
		logging.Default().Debug("parallel worker budget initialized", zap.Int("workers", n))
	})
	return pool
}

// panicError carries a recovered subrange panic across the join barrier.
type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprintf("subrange panic: %v\n%s", p.value, p.stack)
}

// For applies fn to disjoint subranges covering [0, n) and returns once all
// of them have completed (fork-join). Ranges shorter than grain run inline
// on the calling goroutine; longer ranges are split into grain-sized chunks
// distributed over the shared worker budget. Subranges are index-disjoint,
// their execution order is unspecified, and every index is processed exactly
// once before For returns.
//
// A panic inside fn is re-raised on the calling goroutine after all other
// subranges have finished.
func For(n, grain int, fn func(begin, end int)) {
	if n < 0 || grain <= 0 {
		panic(fmt.Sprintf("parallel: malformed range (n=%d, grain=%d)", n, grain))
	}
	if n == 0 {
		return
	}
	if n < grain {
		fn(0, n)
		return
	}

	sem := budget()
	var g errgroup.Group
	var inlineErr error
	for begin := 0; begin < n; begin += grain {
		end := min(begin+grain, n)
		if sem.TryAcquire(1) {
			metrics.ParallelChunksTotal.Inc()
			g.Go(func() error {
				defer sem.Release(1)
				return protect(begin, end, fn)
			})
		} else if err := protect(begin, end, fn); err != nil && inlineErr == nil {
			inlineErr = err
		}
	}

	err := g.Wait()
	if err == nil {
		err = inlineErr
	}
	var pe *panicError
	if errors.As(err, &pe) {
		panic(pe.value)
	}
}

func protect(begin, end int, fn func(begin, end int)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()
	fn(begin, end)
	return nil
}
