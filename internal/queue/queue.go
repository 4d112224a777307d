package queue

import (
	"context"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/repository"
	"github.com/maheshrc27/carousel-scheduler/internal/schedule"
	"github.com/maheshrc27/carousel-scheduler/internal/service"
	"github.com/maheshrc27/carousel-scheduler/internal/workflow"
	"go.uber.org/zap"
)

// Publisher hands a finished carousel to the workflow engine.
type Publisher interface {
	Publish(ctx context.Context, req workflow.PublishRequest) (*workflow.PublishResponse, error)
}

// Queue processes publish tasks.
type Queue struct {
	cr       repository.CarouselRepository
	cs       repository.CarouselSlideRepository
	thumbs   service.ThumbnailService
	pub      Publisher
	notifier schedule.Notifier
	logger   *zap.Logger
}

func NewQueue(
	cr repository.CarouselRepository,
	cs repository.CarouselSlideRepository,
	thumbs service.ThumbnailService,
	pub Publisher,
	notifier schedule.Notifier,
	logger *zap.Logger) *Queue {
	return &Queue{
		cr:       cr,
		cs:       cs,
		thumbs:   thumbs,
		pub:      pub,
		notifier: notifier,
		logger:   logger,
	}
}

const TaskTypePublishCarousel = "carousel:publish"

type PublishCarouselPayload struct {
	CarouselID  uuid.UUID `json:"carousel_id"`
	UserID      int64     `json:"user_id"`
	ScheduledAt int64     `json:"scheduled_at"`
}

func taskID(carouselID uuid.UUID) string {
	return "publish:" + carouselID.String()
}
