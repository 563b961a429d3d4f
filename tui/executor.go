package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// applyMsg carries list work onto the Bubble Tea goroutine.
type applyMsg struct {
	fn   func()
	done chan struct{}
}

// ProgramExecutor runs list work inside the program's Update loop, so the
// list is only ever touched from the goroutine that renders it. It
// implements reconcile.Executor.
type ProgramExecutor struct {
	once  sync.Once
	ready chan struct{}
	send  func(tea.Msg)
}

func NewProgramExecutor() *ProgramExecutor {
	return &ProgramExecutor{ready: make(chan struct{})}
}

// Attach connects the executor to a program. Calls made before Attach wait
// for it.
func (e *ProgramExecutor) Attach(p *tea.Program) {
	e.attach(p.Send)
}

func (e *ProgramExecutor) attach(send func(tea.Msg)) {
	e.once.Do(func() {
		e.send = send
		close(e.ready)
	})
}

func (e *ProgramExecutor) Do(ctx context.Context, fn func()) error {
	select {
	case <-e.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	msg := applyMsg{fn: fn, done: make(chan struct{})}
	e.send(msg)
	select {
	case <-msg.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
