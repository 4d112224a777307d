package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingCloser struct {
	closed  int
	maxIdle time.Duration
}

func (c *countingCloser) CloseIdle(maxIdle time.Duration) int {
	c.maxIdle = maxIdle
	return c.closed
}

func TestSweepIdleBoards(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	closer := &countingCloser{}
	job := NewBoardSweepJob(closer, 2*time.Hour, zap.New(core))

	job.SweepIdleBoards()
	assert.Equal(t, 2*time.Hour, closer.maxIdle)
	assert.Zero(t, logs.Len())

	closer.closed = 3
	job.SweepIdleBoards()
	entries := logs.FilterMessage("closed idle boards").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, int64(3), entries[0].ContextMap()["count"])
	}
}
