package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
	"github.com/maheshrc27/carousel-scheduler/internal/timezone"
)

// EntryLoader reads reservations whose instant falls in [from, to).
type EntryLoader interface {
	ListScheduledBetween(ctx context.Context, userID int64, from, to time.Time) ([]*models.ScheduledEntry, error)
}

// Store maps carousel ids to their scheduled entry for the visible month.
type Store struct {
	mu      sync.RWMutex
	loader  EntryLoader
	year    int
	month   time.Month
	entries map[uuid.UUID]models.ScheduledEntry
}

func NewStore(loader EntryLoader) *Store {
	return &Store{
		loader:  loader,
		entries: make(map[uuid.UUID]models.ScheduledEntry),
	}
}

// LoadMonth replaces the store's contents with the user's reservations for
// year/month and returns a copy of them.
func (s *Store) LoadMonth(ctx context.Context, userID int64, year int, month time.Month) (map[uuid.UUID]models.ScheduledEntry, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	from, to := timezone.MonthRange(year, month)
	list, err := s.loader.ListScheduledBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load scheduled carousels: %w", err)
	}

	entries := make(map[uuid.UUID]models.ScheduledEntry, len(list))
	for _, e := range list {
		entries[e.CarouselID] = *e
	}

	s.mu.Lock()
	s.year, s.month = year, month
	s.entries = entries
	s.mu.Unlock()

	return s.All(), nil
}

// Month is the month last loaded.
func (s *Store) Month() (int, time.Month) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.year, s.month
}

func (s *Store) Get(id uuid.UUID) (models.ScheduledEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

func (s *Store) Put(e models.ScheduledEntry) {
	s.mu.Lock()
	s.entries[e.CarouselID] = e
	s.mu.Unlock()
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Snapshot is a copy of every entry.
func (s *Store) Snapshot() map[uuid.UUID]models.ScheduledEntry {
	return s.All()
}

// Restore replaces the entries with a previous snapshot.
func (s *Store) Restore(snapshot map[uuid.UUID]models.ScheduledEntry) {
	entries := make(map[uuid.UUID]models.ScheduledEntry, len(snapshot))
	for k, v := range snapshot {
		entries[k] = v
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

func (s *Store) All() map[uuid.UUID]models.ScheduledEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]models.ScheduledEntry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// EntriesByDate groups entries under the date key of their instant in their
// own zone, using fallbackZone when an entry has none. Each day is sorted by
// instant.
func (s *Store) EntriesByDate(fallbackZone string) map[string][]models.ScheduledEntry {
	out := make(map[string][]models.ScheduledEntry)
	for _, e := range s.All() {
		zone := e.Timezone
		if zone == "" {
			zone = fallbackZone
		}
		key, err := timezone.DateKeyOf(e.ScheduledAt, zone)
		if err != nil {
			key, err = timezone.DateKeyOf(e.ScheduledAt, fallbackZone)
			if err != nil {
				continue
			}
		}
		out[key] = append(out[key], e)
	}
	for _, day := range out {
		sort.Slice(day, func(i, j int) bool {
			return day[i].ScheduledAt.Before(day[j].ScheduledAt)
		})
	}
	return out
}
