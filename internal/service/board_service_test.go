package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/maheshrc27/carousel-scheduler/internal/board"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingDrafts struct {
	calls   [][]board.Draft
	started chan struct{}
	block   bool
}

func (r *recordingDrafts) Persist(ctx context.Context, drafts []board.Draft, carouselID uuid.UUID, userID int64) (PersistResult, error) {
	r.calls = append(r.calls, drafts)
	if r.block {
		close(r.started)
		<-ctx.Done()
		return PersistResult{}, ctx.Err()
	}
	res := PersistResult{}
	for i, d := range drafts {
		res.Slides = append(res.Slides, PersistedSlide{Position: i + 1, SlotIndex: d.SlotIndex})
	}
	return res, nil
}

type boardFixture struct {
	svc       *boardService
	carousels *fakeCarousels
	slides    *fakeSlides
	media     *fakeMedia
	drafts    *recordingDrafts
	carousel  *models.Carousel
	clock     time.Time
}

func newBoardFixture(t *testing.T) *boardFixture {
	t.Helper()
	c := &models.Carousel{ID: uuid.New(), UserID: testUser, Status: models.CarouselStatusDraft}
	f := &boardFixture{
		carousels: newFakeCarousels(c),
		slides:    newFakeSlides(),
		media:     newFakeMedia(),
		drafts:    &recordingDrafts{},
		carousel:  c,
		clock:     time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	thumbs := NewThumbnailService(f.slides, f.media, &fakeDerivatives{}, newFakeStorage(), time.Hour, zap.NewNop())
	f.svc = NewBoardService(f.carousels, f.slides, f.media, thumbs, f.drafts, zap.NewNop()).(*boardService)
	f.svc.now = func() time.Time { return f.clock }
	t.Cleanup(f.svc.CloseAll)
	return f
}

func names(s BoardSnapshot) []string {
	out := make([]string, len(s.Slots))
	for i, v := range s.Slots {
		out[i] = v.Occupant.Name()
	}
	return out
}

func TestOpenLoadsPersistedSlides(t *testing.T) {
	f := newBoardFixture(t)
	m := &models.Media{ID: uuid.New(), UserID: testUser, Bucket: "slides", Path: "p/one.jpg", Filename: "one.jpg"}
	f.media.byID[m.ID] = m
	require.NoError(t, f.slides.UpsertBatch(context.Background(), nil, f.carousel.ID, testUser,
		[]models.CarouselSlide{{CarouselID: f.carousel.ID, Position: 1, MediaID: m.ID}}))

	snap, err := f.svc.Open(context.Background(), testUser, f.carousel.ID)
	require.NoError(t, err)

	assert.Equal(t, "library", board.KindOf(snap.Slots[0].Occupant))
	assert.Equal(t, "one.jpg", snap.Slots[0].Occupant.Name())
	assert.Equal(t, "https://signed.example/slides/p/one.jpg", snap.Slots[0].PreviewURL)
	assert.True(t, board.IsEmpty(snap.Slots[1].Occupant))
}

func TestOpenUnknownCarousel(t *testing.T) {
	f := newBoardFixture(t)

	_, err := f.svc.Open(context.Background(), 99, f.carousel.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDragSwapAndExternalDrop(t *testing.T) {
	f := newBoardFixture(t)
	ctx := context.Background()

	_, err := f.svc.Append(ctx, testUser, f.carousel.ID, []board.LocalFile{file("f0"), file("f1"), file("f2")})
	require.NoError(t, err)

	_, err = f.svc.Drag(ctx, testUser, f.carousel.ID, DragStartEvent, 0)
	require.NoError(t, err)
	snap, err := f.svc.Drag(ctx, testUser, f.carousel.ID, DragDropEvent, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"f2", "f1", "f0"}, names(snap)[:3])
	assert.Equal(t, board.Idle, snap.DragState)

	_, err = f.svc.Drag(ctx, testUser, f.carousel.ID, DragStartEvent, 1)
	require.NoError(t, err)
	snap, err = f.svc.Upload(ctx, testUser, f.carousel.ID, 1, []board.LocalFile{file("new")})
	require.NoError(t, err)
	assert.Equal(t, []string{"f2", "new", "f0"}, names(snap)[:3])
	assert.Equal(t, board.Idle, snap.DragState)
	assert.False(t, snap.Dragging)
}

func TestUnknownDragEvent(t *testing.T) {
	f := newBoardFixture(t)

	_, err := f.svc.Drag(context.Background(), testUser, f.carousel.ID, "hover", 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestBoardFullIsValidationError(t *testing.T) {
	f := newBoardFixture(t)
	files := make([]board.LocalFile, board.SlotCount+1)
	for i := range files {
		files[i] = file("x")
	}

	snap, err := f.svc.Append(context.Background(), testUser, f.carousel.ID, files)

	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.ErrorIs(t, err, board.ErrBoardFull)
	for _, v := range snap.Slots {
		assert.False(t, board.IsEmpty(v.Occupant))
	}
}

func TestImportLibrary(t *testing.T) {
	f := newBoardFixture(t)
	m := &models.Media{ID: uuid.New(), UserID: testUser, Bucket: "slides", Path: "lib/a.png", Filename: "a.png", SizeBytes: 42}
	f.media.byID[m.ID] = m

	snap, err := f.svc.ImportLibrary(context.Background(), testUser, f.carousel.ID, 3, "slides", "lib/a.png")
	require.NoError(t, err)
	ref, ok := snap.Slots[3].Occupant.(board.LibraryRef)
	require.True(t, ok)
	assert.Equal(t, int64(42), ref.SizeBytes)
	assert.NotEmpty(t, snap.Slots[3].PreviewURL)

	_, err = f.svc.ImportLibrary(context.Background(), testUser, f.carousel.ID, 4, "slides", "lib/missing.png")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPersistHandsDraftsOver(t *testing.T) {
	f := newBoardFixture(t)
	ctx := context.Background()
	_, err := f.svc.Upload(ctx, testUser, f.carousel.ID, 4, []board.LocalFile{file("late")})
	require.NoError(t, err)
	_, err = f.svc.Upload(ctx, testUser, f.carousel.ID, 1, []board.LocalFile{file("early")})
	require.NoError(t, err)

	res, err := f.svc.Persist(ctx, testUser, f.carousel.ID)
	require.NoError(t, err)

	require.Len(t, f.drafts.calls, 1)
	assert.Equal(t, 1, f.drafts.calls[0][0].SlotIndex)
	assert.Equal(t, 4, f.drafts.calls[0][1].SlotIndex)
	assert.Equal(t, []int{1, 2}, res.Positions())
}

func TestCloseCancelsPersistAndReleasesPreviews(t *testing.T) {
	f := newBoardFixture(t)
	f.drafts.block = true
	f.drafts.started = make(chan struct{})
	ctx := context.Background()

	snap, err := f.svc.Upload(ctx, testUser, f.carousel.ID, 0, []board.LocalFile{file("a")})
	require.NoError(t, err)
	handle := snap.Slots[0].PreviewHandle
	_, ok := f.svc.Preview(testUser, handle)
	require.True(t, ok)
	_, ok = f.svc.Preview(99, handle)
	assert.False(t, ok)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Persist(ctx, testUser, f.carousel.ID)
		done <- err
	}()
	<-f.drafts.started

	assert.True(t, f.svc.Close(testUser, f.carousel.ID))
	assert.ErrorIs(t, <-done, context.Canceled)

	_, ok = f.svc.Preview(testUser, handle)
	assert.False(t, ok)
	assert.False(t, f.svc.Close(testUser, f.carousel.ID))
}

func TestCloseIdle(t *testing.T) {
	f := newBoardFixture(t)
	ctx := context.Background()
	other := &models.Carousel{ID: uuid.New(), UserID: testUser}
	f.carousels.items[other.ID] = other

	_, err := f.svc.Open(ctx, testUser, f.carousel.ID)
	require.NoError(t, err)
	f.clock = f.clock.Add(90 * time.Minute)
	_, err = f.svc.Open(ctx, testUser, other.ID)
	require.NoError(t, err)
	f.clock = f.clock.Add(45 * time.Minute)

	assert.Equal(t, 1, f.svc.CloseIdle(2*time.Hour))
	assert.Len(t, f.svc.sessions, 1)
	assert.Contains(t, f.svc.sessions, boardKey{userID: testUser, carouselID: other.ID})
}
