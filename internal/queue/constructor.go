package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const publishMaxRetry = 3

// PublishQueue enqueues one publish task per carousel, timed at its
// scheduled instant.
type PublishQueue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
	logger    *zap.Logger
}

func NewPublishQueue(client *asynq.Client, inspector *asynq.Inspector, logger *zap.Logger) *PublishQueue {
	return &PublishQueue{client: client, inspector: inspector, queue: "default", logger: logger}
}

// Enqueue replaces any pending publish task for the carousel.
func (q *PublishQueue) Enqueue(ctx context.Context, carouselID uuid.UUID, userID int64, at time.Time) error {
	payload, err := json.Marshal(PublishCarouselPayload{
		CarouselID:  carouselID,
		UserID:      userID,
		ScheduledAt: at.Unix(),
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishCarousel, payload)
	opts := []asynq.Option{
		asynq.TaskID(taskID(carouselID)),
		asynq.ProcessAt(at),
		asynq.MaxRetry(publishMaxRetry),
		asynq.Queue(q.queue),
	}

	_, err = q.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		if err := q.Cancel(ctx, carouselID); err != nil {
			return err
		}
		_, err = q.client.EnqueueContext(ctx, task, opts...)
	}
	if err != nil {
		return fmt.Errorf("enqueue publish task: %w", err)
	}

	q.logger.Info("publish task scheduled",
		zap.String("carousel_id", carouselID.String()),
		zap.Time("process_at", at))
	return nil
}

// Cancel deletes the carousel's pending publish task, if any.
func (q *PublishQueue) Cancel(ctx context.Context, carouselID uuid.UUID) error {
	err := q.inspector.DeleteTask(q.queue, taskID(carouselID))
	if err == nil || errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return fmt.Errorf("delete publish task: %w", err)
}
