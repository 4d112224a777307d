package job

import (
	"time"

	"go.uber.org/zap"
)

// IdleCloser closes editing sessions nobody has touched for maxIdle.
type IdleCloser interface {
	CloseIdle(maxIdle time.Duration) int
}

// BoardSweepJob releases boards abandoned by their users, together with
// their previews and any task still running for them.
type BoardSweepJob struct {
	boards  IdleCloser
	maxIdle time.Duration
	logger  *zap.Logger
}

func NewBoardSweepJob(boards IdleCloser, maxIdle time.Duration, logger *zap.Logger) *BoardSweepJob {
	return &BoardSweepJob{boards: boards, maxIdle: maxIdle, logger: logger}
}

func (j *BoardSweepJob) SweepIdleBoards() {
	if n := j.boards.CloseIdle(j.maxIdle); n > 0 {
		j.logger.Info("closed idle boards", zap.Int("count", n), zap.Duration("max_idle", j.maxIdle))
	}
}
