package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestCloseCancelsBackgroundTasks(t *testing.T) {
	defer goleak.VerifyNone(t)

	tr := NewTracker(context.Background(), zap.NewNop())
	started := make(chan struct{})
	done := make(chan error, 1)

	require.NoError(t, tr.Go("upload", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		done <- ctx.Err()
		return ctx.Err()
	}))
	<-started
	assert.Equal(t, 1, tr.Active("upload"))

	tr.Close()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 0, tr.Active("upload"))
}

func TestCloseCancelsSynchronousRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	tr := NewTracker(context.Background(), zap.NewNop())
	started := make(chan struct{})
	result := make(chan error, 1)

	go func() {
		result <- tr.Run(context.Background(), "persist", func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
	}()
	<-started
	tr.Close()

	select {
	case err := <-result:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("run was not cancelled")
	}
}

func TestRunAfterCloseFails(t *testing.T) {
	tr := NewTracker(context.Background(), zap.NewNop())
	tr.Close()
	tr.Close()

	err := tr.Run(context.Background(), "persist", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, tr.Go("upload", func(context.Context) error { return nil }), ErrClosed)
}

func TestRunReturnsTaskResult(t *testing.T) {
	tr := NewTracker(context.Background(), zap.NewNop())
	defer tr.Close()

	err := tr.Run(context.Background(), "persist", func(ctx context.Context) error {
		assert.NoError(t, ctx.Err())
		return nil
	})
	assert.NoError(t, err)
}
