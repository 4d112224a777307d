package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
	"github.com/maheshrc27/carousel-scheduler/internal/timezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReserver struct {
	scheduleErr   error
	unscheduleErr error
	calls         []string
	// seen is the store state observed while the reservation call runs.
	store *Store
	seen  *models.ScheduledEntry
}

func (f *fakeReserver) Schedule(_ context.Context, id uuid.UUID, at time.Time, zone string) (*models.ScheduledEntry, error) {
	f.calls = append(f.calls, "schedule")
	if f.store != nil {
		if e, ok := f.store.Get(id); ok {
			f.seen = &e
		}
	}
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	return &models.ScheduledEntry{
		CarouselID:  id,
		ScheduledAt: at.UTC(),
		Timezone:    zone,
		Status:      models.CarouselStatusScheduled,
		Title:       "from server",
	}, nil
}

func (f *fakeReserver) Unschedule(_ context.Context, _ uuid.UUID) error {
	f.calls = append(f.calls, "unschedule")
	return f.unscheduleErr
}

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Notify(_ int64, _ string, message string) {
	r.messages = append(r.messages, message)
}

func seededStore(entries ...models.ScheduledEntry) *Store {
	s := NewStore(nil)
	for _, e := range entries {
		s.Put(e)
	}
	return s
}

func TestScheduleCommitsServerEntry(t *testing.T) {
	id := uuid.New()
	store := seededStore()
	res := &fakeReserver{store: store}
	notes := &recordingNotifier{}
	s := NewScheduler(res, notes, zap.NewNop())

	result, err := s.Schedule(context.Background(), store, Request{
		UserID: 1, CarouselID: id, Title: "launch", DateKey: "2025-05-10", Time: "21:00", Zone: "Asia/Tokyo",
	})
	require.NoError(t, err)

	assert.Equal(t, TxCommitted, result.State)
	assert.Equal(t, []string{"schedule"}, res.calls)
	require.NotNil(t, res.seen, "optimistic entry visible during the call")
	assert.Equal(t, "launch", res.seen.Title)

	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "from server", got.Title)
	assert.True(t, got.ScheduledAt.Equal(time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)))
	assert.Empty(t, notes.messages)
}

func TestRescheduleUnschedulesFirst(t *testing.T) {
	id := uuid.New()
	store := seededStore(models.ScheduledEntry{
		CarouselID: id, Title: "old", ScheduledAt: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC), Timezone: "UTC",
	})
	res := &fakeReserver{unscheduleErr: errors.New("boom")}
	s := NewScheduler(res, &recordingNotifier{}, zap.NewNop())

	_, err := s.Schedule(context.Background(), store, Request{
		UserID: 1, CarouselID: id, DateKey: "2025-05-02", Time: "10:00", Zone: "UTC",
	})

	require.NoError(t, err, "failed unschedule is best effort")
	assert.Equal(t, []string{"unschedule", "schedule"}, res.calls)
}

func TestConflictRollsBackToPreimage(t *testing.T) {
	id := uuid.New()
	before := models.ScheduledEntry{
		CarouselID:  id,
		Title:       "old",
		ScheduledAt: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
		Timezone:    "Europe/Berlin",
		Status:      models.CarouselStatusScheduled,
	}
	store := seededStore(before)
	res := &fakeReserver{store: store, scheduleErr: apperr.ErrConflict}
	notes := &recordingNotifier{}
	s := NewScheduler(res, notes, zap.NewNop())

	result, err := s.Schedule(context.Background(), store, Request{
		UserID: 1, CarouselID: id, DateKey: "2025-05-03", Time: "12:00", Zone: "Europe/Berlin",
	})

	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, TxRolledBack, result.State)
	require.NotNil(t, res.seen)
	assert.NotEqual(t, before.ScheduledAt, res.seen.ScheduledAt)

	after, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, before, after)
	require.Len(t, notes.messages, 1)
	assert.Equal(t, apperr.UserMessage(apperr.ErrConflict), notes.messages[0])
}

func TestFailureWithoutPreimageRemovesEntry(t *testing.T) {
	id := uuid.New()
	store := seededStore()
	s := NewScheduler(&fakeReserver{scheduleErr: apperr.ErrAuth}, &recordingNotifier{}, zap.NewNop())

	_, err := s.Schedule(context.Background(), store, Request{
		UserID: 1, CarouselID: id, DateKey: "2025-05-03", Time: "12:00", Zone: "UTC",
	})

	assert.ErrorIs(t, err, apperr.ErrAuth)
	_, ok := store.Get(id)
	assert.False(t, ok)
}

func TestScheduleIntoGapShiftsForwardAndNotifies(t *testing.T) {
	id := uuid.New()
	store := seededStore()
	notes := &recordingNotifier{}
	s := NewScheduler(&fakeReserver{}, notes, zap.NewNop())

	result, err := s.Schedule(context.Background(), store, Request{
		UserID: 1, CarouselID: id, DateKey: "2025-03-09", Time: "02:30", Zone: "America/New_York",
	})
	require.NoError(t, err)

	assert.Equal(t, timezone.ShiftedForward, result.Resolution)
	assert.True(t, result.Entry.ScheduledAt.Equal(time.Date(2025, 3, 9, 7, 30, 0, 0, time.UTC)))
	assert.Len(t, notes.messages, 1)
}

func TestScheduleRejectsInvalidInputWithoutTouchingStore(t *testing.T) {
	id := uuid.New()
	store := seededStore()
	res := &fakeReserver{}
	s := NewScheduler(res, &recordingNotifier{}, zap.NewNop())

	_, err := s.Schedule(context.Background(), store, Request{
		UserID: 1, CarouselID: id, DateKey: "2025-02-30", Time: "12:00", Zone: "UTC",
	})

	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, res.calls)
	assert.Empty(t, store.All())
}

func TestUnscheduleKeepsRemovalOnFailure(t *testing.T) {
	id := uuid.New()
	store := seededStore(models.ScheduledEntry{CarouselID: id, ScheduledAt: time.Now(), Timezone: "UTC"})
	notes := &recordingNotifier{}
	s := NewScheduler(&fakeReserver{unscheduleErr: apperr.ErrNetwork}, notes, zap.NewNop())

	err := s.Unschedule(context.Background(), store, 1, id)

	assert.ErrorIs(t, err, apperr.ErrNetwork)
	_, ok := store.Get(id)
	assert.False(t, ok)
	assert.Len(t, notes.messages, 1)
}

func TestTransactionStateMachine(t *testing.T) {
	store := seededStore()
	tx := NewTransaction(store, uuid.New())

	assert.ErrorIs(t, tx.Commit(nil), ErrTxState)
	assert.ErrorIs(t, tx.Rollback(), ErrTxState)
	require.NoError(t, tx.Apply(nil))
	assert.Equal(t, TxPending, tx.State())
	assert.ErrorIs(t, tx.Apply(nil), ErrTxState)
	require.NoError(t, tx.Rollback())
	assert.Equal(t, TxRolledBack, tx.State())
	assert.ErrorIs(t, tx.Commit(nil), ErrTxState)
}
