// Package gate provides a single-assignment completion cell.
//
// A Gate is resolved at most once. The first Resolve delivers its value to
// every waiter; later calls, from any goroutine, are dropped and report false.
package gate

import (
	"context"
	"sync"
)

type Gate[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
}

func New[T any]() *Gate[T] {
	return &Gate[T]{done: make(chan struct{})}
}

// Resolve stores v if the gate is still open. It reports whether v was the
// delivered value.
func (g *Gate[T]) Resolve(v T) bool {
	won := false
	g.once.Do(func() {
		g.value = v
		won = true
		close(g.done)
	})
	return won
}

// Done is closed once the gate has a value.
func (g *Gate[T]) Done() <-chan struct{} {
	return g.done
}

// Value returns the delivered value, if any, without blocking.
func (g *Gate[T]) Value() (T, bool) {
	select {
	case <-g.done:
		return g.value, true
	default:
		var zero T
		return zero, false
	}
}

// Wait blocks until the gate resolves or ctx ends.
func (g *Gate[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-g.done:
		return g.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
