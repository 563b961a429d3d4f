package reconcile

import "context"

// Executor runs fn on the goroutine that owns the list and waits for it.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, fn func()) error

func (f ExecutorFunc) Do(ctx context.Context, fn func()) error { return f(ctx, fn) }

// Inline runs fn on the calling goroutine. It suits a list that is only ever
// touched from the queue goroutine, such as in tests or headless replays.
var Inline Executor = ExecutorFunc(func(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn()
	return nil
})

// Loop is an Executor backed by a dedicated goroutine that serializes every
// call.
type Loop struct {
	calls chan call
}

type call struct {
	fn   func()
	done chan struct{}
}

// NewLoop starts the loop goroutine. It stops when ctx is done.
func NewLoop(ctx context.Context) *Loop {
	l := &Loop{calls: make(chan call)}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case c := <-l.calls:
				c.fn()
				close(c.done)
			}
		}
	}()
	return l
}

func (l *Loop) Do(ctx context.Context, fn func()) error {
	c := call{fn: fn, done: make(chan struct{})}
	select {
	case l.calls <- c:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
