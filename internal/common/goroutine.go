package common

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/ternarybob/arbor"
)

// goroutineCounter tracks spawned goroutines for diagnostics
var goroutineCounter int64

// GetGoroutineCount returns the number of goroutines spawned via SafeGo
func GetGoroutineCount() int64 {
	return atomic.LoadInt64(&goroutineCounter)
}

// SafeGo runs fn in a goroutine with panic recovery. A panic is logged and
// reported through done as an error; done may be nil. The goroutine does not
// start when ctx is already cancelled.
//
//	done := make(chan error, 1)
//	common.SafeGo(ctx, logger, "analyze:AAPL", func() error { ... }, done)
func SafeGo(ctx context.Context, logger arbor.ILogger, name string, fn func() error, done chan<- error) {
	atomic.AddInt64(&goroutineCounter, 1)

	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				logger.Error().
					Str("goroutine", name).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(buf[:n])).
					Msg("Recovered from panic in goroutine")
				err = fmt.Errorf("%s panicked: %v", name, r)
			}
			if done != nil {
				done <- err
			}
		}()

		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Debug().Str("goroutine", name).Msg("Goroutine cancelled before start")
			err = ctxErr
			return
		}
		err = fn()
	}()
}
