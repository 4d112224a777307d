package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
)

type fakeTransactor struct {
	committed  int
	rolledBack int
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := fn(nil); err != nil {
		f.rolledBack++
		return err
	}
	f.committed++
	return nil
}

type fakeSessions struct {
	err     error
	affirms int
}

func (f *fakeSessions) Affirm(ctx context.Context, userID int64) (Session, error) {
	f.affirms++
	if f.err != nil {
		return Session{}, f.err
	}
	return Session{UserID: userID}, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	order   []string
	fail    string
	block   map[string]chan struct{}
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte), block: make(map[string]chan struct{})}
}

func (f *fakeStorage) Bucket() string { return "slides" }

func (f *fakeStorage) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	for suffix, ch := range f.block {
		if strings.HasSuffix(key, suffix) {
			select {
			case <-ch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	if f.fail != "" && strings.HasSuffix(key, f.fail) {
		return errors.New("bucket unavailable")
	}
	f.mu.Lock()
	f.objects[key] = body
	f.order = append(f.order, key)
	f.mu.Unlock()
	return nil
}

func (f *fakeStorage) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if f.fail != "" && strings.HasSuffix(key, f.fail) {
		return "", apperr.ErrStorage
	}
	return "https://signed.example/" + bucket + "/" + key, nil
}

type fakeCarousels struct {
	items    map[uuid.UUID]*models.Carousel
	statuses map[uuid.UUID]string
	captions map[uuid.UUID]string
	err      error
}

func newFakeCarousels(cs ...*models.Carousel) *fakeCarousels {
	f := &fakeCarousels{
		items:    make(map[uuid.UUID]*models.Carousel),
		statuses: make(map[uuid.UUID]string),
		captions: make(map[uuid.UUID]string),
	}
	for _, c := range cs {
		f.items[c.ID] = c
	}
	return f
}

func (f *fakeCarousels) Create(ctx context.Context, c *models.Carousel) (uuid.UUID, error) {
	id := uuid.New()
	cp := *c
	cp.ID = id
	f.items[id] = &cp
	return id, nil
}

func (f *fakeCarousels) GetByID(ctx context.Context, id uuid.UUID) (*models.Carousel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items[id], nil
}

func (f *fakeCarousels) CheckByUserID(ctx context.Context, id uuid.UUID, userID int64) (bool, error) {
	c, ok := f.items[id]
	return ok && c.UserID == userID, nil
}

func (f *fakeCarousels) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string) error {
	f.statuses[id] = status
	if c, ok := f.items[id]; ok {
		c.Status = status
	}
	return nil
}

func (f *fakeCarousels) UpdateCaption(ctx context.Context, id uuid.UUID, caption string) error {
	f.captions[id] = caption
	return nil
}

func (f *fakeCarousels) ListScheduledBetween(ctx context.Context, userID int64, from, to time.Time) ([]*models.ScheduledEntry, error) {
	return f.ListScheduled(ctx, userID)
}

func (f *fakeCarousels) ListScheduled(ctx context.Context, userID int64) ([]*models.ScheduledEntry, error) {
	var out []*models.ScheduledEntry
	for _, c := range f.items {
		if c.UserID == userID && c.ScheduledAt.Valid {
			out = append(out, &models.ScheduledEntry{
				CarouselID:  c.ID,
				Title:       c.Title,
				ScheduledAt: c.ScheduledAt.Time,
				Timezone:    c.Timezone.String,
				Status:      c.Status,
			})
		}
	}
	return out, nil
}

func (f *fakeCarousels) Remove(ctx context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

type fakeSlides struct {
	rows      map[uuid.UUID]map[int]models.CarouselSlide
	deleteErr error
	upserts   int
	deletes   int
}

func newFakeSlides() *fakeSlides {
	return &fakeSlides{rows: make(map[uuid.UUID]map[int]models.CarouselSlide)}
}

func (f *fakeSlides) DeleteByCarouselID(ctx context.Context, tx *sql.Tx, carouselID uuid.UUID) error {
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.rows, carouselID)
	return nil
}

func (f *fakeSlides) UpsertBatch(ctx context.Context, tx *sql.Tx, carouselID uuid.UUID, userID int64, slides []models.CarouselSlide) error {
	f.upserts++
	if f.rows[carouselID] == nil {
		f.rows[carouselID] = make(map[int]models.CarouselSlide)
	}
	for _, s := range slides {
		f.rows[carouselID][s.Position] = s
	}
	return nil
}

func (f *fakeSlides) ListByCarouselID(ctx context.Context, carouselID uuid.UUID) ([]*models.CarouselSlide, error) {
	var out []*models.CarouselSlide
	for pos := 1; pos <= len(f.rows[carouselID]); pos++ {
		s := f.rows[carouselID][pos]
		out = append(out, &s)
	}
	return out, nil
}

type fakeMedia struct {
	byID map[uuid.UUID]*models.Media
}

func newFakeMedia(ms ...*models.Media) *fakeMedia {
	f := &fakeMedia{byID: make(map[uuid.UUID]*models.Media)}
	for _, m := range ms {
		f.byID[m.ID] = m
	}
	return f
}

func (f *fakeMedia) Create(ctx context.Context, tx *sql.Tx, m *models.Media) (uuid.UUID, error) {
	cp := *m
	cp.ID = uuid.New()
	f.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeMedia) GetByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	return f.byID[id], nil
}

func (f *fakeMedia) FindByLocation(ctx context.Context, bucket, path string, userID int64) (*models.Media, error) {
	for _, m := range f.byID {
		if m.Bucket == bucket && m.Path == path && m.UserID == userID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMedia) ListByUserID(ctx context.Context, userID int64, limit int) ([]*models.Media, error) {
	var out []*models.Media
	for _, m := range f.byID {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeDerivatives struct {
	items map[uuid.UUID]*models.MediaDerivative
	err   error
}

func (f *fakeDerivatives) Get(ctx context.Context, mediaID uuid.UUID, typeCode string) (*models.MediaDerivative, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.items[mediaID]
	if !ok || d.TypeCode != typeCode {
		return nil, nil
	}
	return d, nil
}
