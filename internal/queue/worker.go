package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
	"github.com/maheshrc27/carousel-scheduler/internal/schedule"
	"github.com/maheshrc27/carousel-scheduler/internal/workflow"
	"go.uber.org/zap"
)

var errNoSlides = errors.New("carousel has no slides")

func (q *Queue) HandlePublishCarouselTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishCarouselPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	err := q.PublishCarousel(ctx, payload)
	if err == nil {
		return nil
	}

	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if errors.Is(err, asynq.SkipRetry) || !ok || retried >= maxRetry {
		q.markFailed(payload, err)
	}
	return err
}

// PublishCarousel posts the carousel if it is still scheduled for the
// instant recorded in the payload. Rescheduled or unscheduled carousels are
// skipped.
func (q *Queue) PublishCarousel(ctx context.Context, payload PublishCarouselPayload) error {
	carousel, err := q.cr.GetByID(ctx, payload.CarouselID)
	if err != nil {
		return err
	}
	if carousel == nil || carousel.UserID != payload.UserID {
		q.logger.Info("publish skipped, carousel gone", zap.String("carousel_id", payload.CarouselID.String()))
		return nil
	}
	if carousel.Status != models.CarouselStatusScheduled ||
		!carousel.ScheduledAt.Valid || carousel.ScheduledAt.Time.Unix() != payload.ScheduledAt {
		q.logger.Info("publish skipped, schedule changed",
			zap.String("carousel_id", carousel.ID.String()),
			zap.String("status", carousel.Status))
		return nil
	}

	slides, err := q.cs.ListByCarouselID(ctx, carousel.ID)
	if err != nil {
		return err
	}
	if len(slides) == 0 {
		return fmt.Errorf("%w: %w", errNoSlides, asynq.SkipRetry)
	}

	urls := make([]string, 0, len(slides))
	for _, s := range slides {
		url, err := q.thumbs.ForPublish(ctx, s.MediaID, carousel.Aspect)
		if err != nil {
			return fmt.Errorf("sign slide %d: %w", s.Position, err)
		}
		urls = append(urls, url)
	}

	resp, err := q.pub.Publish(ctx, workflow.PublishRequest{
		CarouselID: carousel.ID,
		Caption:    carousel.Caption.String,
		Aspect:     carousel.Aspect,
		ImageURLs:  urls,
	})
	if err != nil {
		q.logger.Warn("publish failed",
			zap.String("carousel_id", carousel.ID.String()),
			zap.Error(err))
		return err
	}

	if err := q.cr.UpdateStatus(ctx, nil, carousel.ID, models.CarouselStatusPosted); err != nil {
		return err
	}
	q.logger.Info("carousel posted",
		zap.String("carousel_id", carousel.ID.String()),
		zap.String("permalink", resp.Permalink))
	q.notifier.Notify(carousel.UserID, schedule.LevelInfo, fmt.Sprintf("%q was posted.", carousel.Title))
	return nil
}

func (q *Queue) markFailed(payload PublishCarouselPayload, cause error) {
	ctx := context.Background()
	if err := q.cr.UpdateStatus(ctx, nil, payload.CarouselID, models.CarouselStatusFailed); err != nil {
		q.logger.Error("mark carousel failed", zap.String("carousel_id", payload.CarouselID.String()), zap.Error(err))
	}
	q.logger.Error("publish gave up",
		zap.String("carousel_id", payload.CarouselID.String()),
		zap.Error(cause))
	q.notifier.Notify(payload.UserID, schedule.LevelError, "Publishing failed. Open the carousel to try again.")
}
