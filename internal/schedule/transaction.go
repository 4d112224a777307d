package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
	"github.com/maheshrc27/carousel-scheduler/internal/timezone"
	"go.uber.org/zap"
)

type TxState int

const (
	TxIdle TxState = iota
	TxPending
	TxCommitted
	TxRolledBack
)

func (s TxState) String() string {
	switch s {
	case TxPending:
		return "pending"
	case TxCommitted:
		return "committed"
	case TxRolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}

var ErrTxState = errors.New("transaction is not in a state that allows this step")

// Transaction is one optimistic change to a carousel's entry in a Store. It
// captures the entry as it was when created and can put it back.
type Transaction struct {
	store      *Store
	carouselID uuid.UUID
	pre        models.ScheduledEntry
	hadPre     bool
	state      TxState
}

func NewTransaction(store *Store, carouselID uuid.UUID) *Transaction {
	pre, ok := store.Get(carouselID)
	return &Transaction{store: store, carouselID: carouselID, pre: pre, hadPre: ok}
}

func (tx *Transaction) State() TxState { return tx.state }

// Preimage is the entry captured at creation, if there was one.
func (tx *Transaction) Preimage() (models.ScheduledEntry, bool) { return tx.pre, tx.hadPre }

// Apply writes the optimistic entry, or removes the entry when e is nil.
func (tx *Transaction) Apply(e *models.ScheduledEntry) error {
	if tx.state != TxIdle {
		return ErrTxState
	}
	if e == nil {
		tx.store.Delete(tx.carouselID)
	} else {
		tx.store.Put(*e)
	}
	tx.state = TxPending
	return nil
}

// Commit reconciles the store with the authoritative entry. A nil entry
// keeps what Apply wrote.
func (tx *Transaction) Commit(authoritative *models.ScheduledEntry) error {
	if tx.state != TxPending {
		return ErrTxState
	}
	if authoritative != nil {
		tx.store.Put(*authoritative)
	}
	tx.state = TxCommitted
	return nil
}

// Rollback restores the captured entry.
func (tx *Transaction) Rollback() error {
	if tx.state != TxPending {
		return ErrTxState
	}
	if tx.hadPre {
		tx.store.Put(tx.pre)
	} else {
		tx.store.Delete(tx.carouselID)
	}
	tx.state = TxRolledBack
	return nil
}

// Reserver is the server-side atomic reservation.
type Reserver interface {
	Schedule(ctx context.Context, carouselID uuid.UUID, at time.Time, zone string) (*models.ScheduledEntry, error)
	Unschedule(ctx context.Context, carouselID uuid.UUID) error
}

type Request struct {
	UserID     int64
	CarouselID uuid.UUID
	Title      string
	DateKey    string
	Time       string
	Zone       string
}

type Result struct {
	Entry      models.ScheduledEntry
	Resolution timezone.Resolution
	State      TxState
}

// Scheduler runs schedule and unschedule actions against a Store.
type Scheduler struct {
	reserver Reserver
	notifier Notifier
	logger   *zap.Logger
}

func NewScheduler(reserver Reserver, notifier Notifier, logger *zap.Logger) *Scheduler {
	return &Scheduler{reserver: reserver, notifier: notifier, logger: logger}
}

// Schedule moves a carousel to the wall time req.DateKey req.Time in req.Zone.
// The store shows the new entry before the reservation call returns; if the
// call fails the previous entry is restored and the user is notified. There
// is no automatic retry.
func (s *Scheduler) Schedule(ctx context.Context, store *Store, req Request) (Result, error) {
	at, resolution, err := timezone.WallTimeToInstant(req.DateKey, req.Time, req.Zone)
	if err != nil {
		s.notifier.Notify(req.UserID, LevelError, err.Error())
		return Result{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	tx := NewTransaction(store, req.CarouselID)
	pre, scheduled := tx.Preimage()

	if scheduled {
		if err := s.reserver.Unschedule(ctx, req.CarouselID); err != nil {
			s.logger.Warn("unschedule before reschedule failed",
				zap.String("carousel_id", req.CarouselID.String()),
				zap.Error(err))
		}
	}

	title := req.Title
	if title == "" {
		title = pre.Title
	}
	optimistic := models.ScheduledEntry{
		CarouselID:  req.CarouselID,
		Title:       title,
		ScheduledAt: at,
		Timezone:    req.Zone,
		Status:      models.CarouselStatusScheduled,
	}
	if err := tx.Apply(&optimistic); err != nil {
		return Result{}, err
	}

	confirmed, err := s.reserver.Schedule(ctx, req.CarouselID, at, req.Zone)
	if err != nil {
		_ = tx.Rollback()
		s.logger.Info("schedule rolled back",
			zap.String("carousel_id", req.CarouselID.String()),
			zap.Time("scheduled_at", at),
			zap.String("timezone", req.Zone),
			zap.Error(err))
		s.notifier.Notify(req.UserID, LevelError, apperr.UserMessage(err))
		return Result{Resolution: resolution, State: tx.State()}, err
	}

	if confirmed != nil && confirmed.Title == "" {
		confirmed.Title = title
	}
	_ = tx.Commit(confirmed)
	final, _ := store.Get(req.CarouselID)

	if resolution == timezone.ShiftedForward {
		s.notifier.Notify(req.UserID, LevelInfo, fmt.Sprintf(
			"%s %s does not exist in %s; scheduled at the next valid time instead.",
			req.DateKey, req.Time, req.Zone))
	}
	return Result{Entry: final, Resolution: resolution, State: tx.State()}, nil
}

// Unschedule removes the carousel's entry right away and releases the
// reservation. A failed release is reported but the removal is kept.
func (s *Scheduler) Unschedule(ctx context.Context, store *Store, userID int64, carouselID uuid.UUID) error {
	tx := NewTransaction(store, carouselID)
	if err := tx.Apply(nil); err != nil {
		return err
	}

	if err := s.reserver.Unschedule(ctx, carouselID); err != nil {
		s.logger.Warn("unschedule failed",
			zap.String("carousel_id", carouselID.String()),
			zap.Error(err))
		s.notifier.Notify(userID, LevelError, apperr.UserMessage(err))
		_ = tx.Commit(nil)
		return err
	}
	_ = tx.Commit(nil)
	return nil
}
