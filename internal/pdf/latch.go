package pdf

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Latch runs an initialization function until it first succeeds. Concurrent
// callers share the single in-flight attempt instead of starting their own.
// A failed attempt leaves the latch open so a later, explicit call can try again.
type Latch struct {
	done  atomic.Bool
	group singleflight.Group
	init  func(ctx context.Context) error
}

// NewLatch creates a latch around init.
func NewLatch(init func(ctx context.Context) error) *Latch {
	return &Latch{init: init}
}

// Ensure returns nil once initialization has succeeded. The shared attempt
// runs detached from any single caller's cancellation; a caller whose ctx
// ends stops waiting and gets ctx.Err() while the attempt carries on.
func (l *Latch) Ensure(ctx context.Context) error {
	if l.done.Load() {
		return nil
	}

	ch := l.group.DoChan("init", func() (interface{}, error) {
		if l.done.Load() {
			return nil, nil
		}
		if err := l.init(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}
		l.done.Store(true)
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether initialization has completed.
func (l *Latch) Ready() bool {
	return l.done.Load()
}
