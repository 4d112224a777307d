// Package tasks runs background work bound to the lifetime of an owner such
// as an editing session, so closing the owner cancels what it started.
package tasks

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrClosed = errors.New("tracker is closed")

type Tracker struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
	active map[string]int
}

func NewTracker(parent context.Context, logger *zap.Logger) *Tracker {
	ctx, cancel := context.WithCancel(parent)
	return &Tracker{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		active: make(map[string]int),
	}
}

// Context is cancelled when the tracker closes.
func (t *Tracker) Context() context.Context { return t.ctx }

// Run executes fn synchronously under a context that is cancelled either by
// ctx or by Close, whichever comes first.
func (t *Tracker) Run(ctx context.Context, name string, fn func(context.Context) error) error {
	if !t.begin(name) {
		return ErrClosed
	}
	defer t.end(name)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(t.ctx, cancel)
	defer stop()

	return fn(runCtx)
}

// Go runs fn in the background under the tracker's context.
func (t *Tracker) Go(name string, fn func(context.Context) error) error {
	if !t.begin(name) {
		return ErrClosed
	}
	go func() {
		defer t.end(name)
		if err := fn(t.ctx); err != nil && !errors.Is(err, context.Canceled) {
			t.logger.Warn("background task failed", zap.String("task", name), zap.Error(err))
		}
	}()
	return nil
}

// Active returns how many tasks with the given name are running.
func (t *Tracker) Active(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active[name]
}

// Close cancels all running tasks and waits for them to return.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
}

func (t *Tracker) begin(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.wg.Add(1)
	t.active[name]++
	return true
}

func (t *Tracker) end(name string) {
	t.mu.Lock()
	t.active[name]--
	if t.active[name] == 0 {
		delete(t.active, name)
	}
	t.mu.Unlock()
	t.wg.Done()
}
