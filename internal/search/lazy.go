package search

import (
	"context"
	"sync"
	"sync/atomic"
)

// lazy holds a value built on first use. The builder runs at most once, even under concurrent
// callers; its result, including a failure, is returned to every later caller.
type lazy[T any] struct {
	once  sync.Once
	done  atomic.Bool
	build func(ctx context.Context) (T, error)
	val   T
	err   error
}

func newLazy[T any](build func(ctx context.Context) (T, error)) *lazy[T] {
	return &lazy[T]{build: build}
}

// get builds the value on the first call. The builder gets a context that is not canceled with
// ctx, so an aborted first caller does not leave a cached cancellation error behind.
func (l *lazy[T]) get(ctx context.Context) (T, error) {
	l.once.Do(func() {
		l.val, l.err = l.build(context.WithoutCancel(ctx))
		l.done.Store(true)
	})
	return l.val, l.err
}

// loaded returns the value if it was built successfully.
func (l *lazy[T]) loaded() (T, bool) {
	if !l.done.Load() || l.err != nil {
		var zero T
		return zero, false
	}
	return l.val, true
}
