package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
	"github.com/maheshrc27/carousel-scheduler/internal/repository"
	"github.com/maheshrc27/carousel-scheduler/internal/schedule"
	"github.com/maheshrc27/carousel-scheduler/internal/timezone"
	"go.uber.org/zap"
)

// PublishQueue times the publish step of a scheduled carousel.
type PublishQueue interface {
	Enqueue(ctx context.Context, carouselID uuid.UUID, userID int64, at time.Time) error
	Cancel(ctx context.Context, carouselID uuid.UUID) error
}

type DayCell struct {
	timezone.Cell
	Entries []models.ScheduledEntry
}

type MonthView struct {
	Year  int
	Month time.Month
	Zone  string
	Cells []DayCell
}

type ScheduleService interface {
	Month(ctx context.Context, userID int64, year int, month time.Month, zone string) (MonthView, error)
	Schedule(ctx context.Context, userID int64, carouselID uuid.UUID, dateKey, hhmm, zone string) (schedule.Result, error)
	Unschedule(ctx context.Context, userID int64, carouselID uuid.UUID) error
	Notifications(userID int64) []schedule.Notification
	DismissNotification(userID int64, id string)
}

type scheduleService struct {
	cr            repository.CarouselRepository
	reservations  repository.ReservationRepository
	sessions      SessionService
	queue         PublishQueue
	notifications *schedule.Notifications
	defaultZone   string
	weekStart     time.Weekday
	logger        *zap.Logger
	now           func() time.Time

	mu     sync.Mutex
	stores map[int64]*schedule.Store
}

func NewScheduleService(
	cr repository.CarouselRepository,
	reservations repository.ReservationRepository,
	sessions SessionService,
	queue PublishQueue,
	notifications *schedule.Notifications,
	defaultZone string,
	weekStart time.Weekday,
	logger *zap.Logger) ScheduleService {
	return &scheduleService{
		cr:            cr,
		reservations:  reservations,
		sessions:      sessions,
		queue:         queue,
		notifications: notifications,
		defaultZone:   defaultZone,
		weekStart:     weekStart,
		logger:        logger,
		now:           time.Now,
		stores:        make(map[int64]*schedule.Store),
	}
}

// userReserver binds the reservation functions to one user.
type userReserver struct {
	repo   repository.ReservationRepository
	userID int64
}

func (r userReserver) Schedule(ctx context.Context, carouselID uuid.UUID, at time.Time, zone string) (*models.ScheduledEntry, error) {
	return r.repo.Schedule(ctx, r.userID, carouselID, at, zone)
}

func (r userReserver) Unschedule(ctx context.Context, carouselID uuid.UUID) error {
	return r.repo.Unschedule(ctx, r.userID, carouselID)
}

func (s *scheduleService) store(userID int64) *schedule.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[userID]
	if !ok {
		st = schedule.NewStore(s.cr)
		s.stores[userID] = st
	}
	return st
}

func (s *scheduleService) scheduler(userID int64) *schedule.Scheduler {
	return schedule.NewScheduler(userReserver{repo: s.reservations, userID: userID}, s.notifications, s.logger)
}

func (s *scheduleService) Month(ctx context.Context, userID int64, year int, month time.Month, zone string) (MonthView, error) {
	if zone == "" {
		zone = s.defaultZone
	}
	loc, err := timezone.Load(zone)
	if err != nil {
		return MonthView{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if month < time.January || month > time.December {
		return MonthView{}, fmt.Errorf("%w: month %d", apperr.ErrValidation, month)
	}

	st := s.store(userID)
	if _, err := st.LoadMonth(ctx, userID, year, month); err != nil {
		return MonthView{}, fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
	}

	byDate := st.EntriesByDate(zone)
	cells := timezone.MonthCells(year, month, s.now(), loc, s.weekStart)
	view := MonthView{Year: year, Month: month, Zone: zone, Cells: make([]DayCell, len(cells))}
	for i, c := range cells {
		view.Cells[i] = DayCell{Cell: c}
		if !c.IsPadding {
			view.Cells[i].Entries = byDate[c.Key]
		}
	}
	return view, nil
}

func (s *scheduleService) Schedule(ctx context.Context, userID int64, carouselID uuid.UUID, dateKey, hhmm, zone string) (schedule.Result, error) {
	if _, err := s.sessions.Affirm(ctx, userID); err != nil {
		s.notifications.Notify(userID, schedule.LevelError, apperr.UserMessage(err))
		return schedule.Result{}, err
	}
	if zone == "" {
		zone = s.defaultZone
	}

	carousel, err := s.cr.GetByID(ctx, carouselID)
	if err != nil {
		return schedule.Result{}, fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
	}
	if carousel == nil || carousel.UserID != userID {
		return schedule.Result{}, fmt.Errorf("carousel %s: %w", carouselID, apperr.ErrNotFound)
	}
	if carousel.Status == models.CarouselStatusPosted {
		return schedule.Result{}, fmt.Errorf("%w: carousel was already posted", apperr.ErrValidation)
	}

	res, err := s.scheduler(userID).Schedule(ctx, s.store(userID), schedule.Request{
		UserID:     userID,
		CarouselID: carouselID,
		Title:      carousel.Title,
		DateKey:    dateKey,
		Time:       hhmm,
		Zone:       zone,
	})
	if err != nil {
		return res, err
	}

	if err := s.queue.Enqueue(ctx, carouselID, userID, res.Entry.ScheduledAt); err != nil {
		s.logger.Error("publish task not queued",
			zap.String("carousel_id", carouselID.String()),
			zap.Error(err))
		s.notifications.Notify(userID, schedule.LevelError, "Scheduled, but automatic posting could not be set up.")
	}
	return res, nil
}

func (s *scheduleService) Unschedule(ctx context.Context, userID int64, carouselID uuid.UUID) error {
	if _, err := s.sessions.Affirm(ctx, userID); err != nil {
		s.notifications.Notify(userID, schedule.LevelError, apperr.UserMessage(err))
		return err
	}

	err := s.scheduler(userID).Unschedule(ctx, s.store(userID), userID, carouselID)
	if err != nil {
		return err
	}
	if err := s.queue.Cancel(ctx, carouselID); err != nil {
		s.logger.Warn("publish task not cancelled",
			zap.String("carousel_id", carouselID.String()),
			zap.Error(err))
	}
	return nil
}

func (s *scheduleService) Notifications(userID int64) []schedule.Notification {
	return s.notifications.Live(userID)
}

func (s *scheduleService) DismissNotification(userID int64, id string) {
	s.notifications.Dismiss(userID, id)
}
