package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/maheshrc27/carousel-scheduler/internal/board"
	"github.com/maheshrc27/carousel-scheduler/internal/repository"
	"github.com/maheshrc27/carousel-scheduler/internal/tasks"
	"go.uber.org/zap"
)

const (
	DragStartEvent = "start"
	DragDropEvent  = "drop"
	DragEndEvent   = "end"
)

type BoardSnapshot struct {
	CarouselID uuid.UUID
	DragState  board.DragState
	Ghost      int
	Dragging   bool
	Slots      []board.SlotView
	UpdatedAt  time.Time
}

// BoardService keeps one in-memory slide board per user and carousel.
type BoardService interface {
	Open(ctx context.Context, userID int64, carouselID uuid.UUID) (BoardSnapshot, error)
	Upload(ctx context.Context, userID int64, carouselID uuid.UUID, index int, files []board.LocalFile) (BoardSnapshot, error)
	Append(ctx context.Context, userID int64, carouselID uuid.UUID, files []board.LocalFile) (BoardSnapshot, error)
	ImportLibrary(ctx context.Context, userID int64, carouselID uuid.UUID, index int, bucket, path string) (BoardSnapshot, error)
	Clear(ctx context.Context, userID int64, carouselID uuid.UUID, index int) (BoardSnapshot, error)
	Drag(ctx context.Context, userID int64, carouselID uuid.UUID, event string, index int) (BoardSnapshot, error)
	Persist(ctx context.Context, userID int64, carouselID uuid.UUID) (PersistResult, error)
	Preview(userID int64, handle string) (board.LocalFile, bool)
	Close(userID int64, carouselID uuid.UUID) bool
	CloseIdle(maxIdle time.Duration) int
	CloseAll()
}

type boardKey struct {
	userID     int64
	carouselID uuid.UUID
}

type boardSession struct {
	mu       sync.Mutex
	board    *board.Board
	drag     *board.DragEngine
	previews *board.PreviewRegistry
	tracker  *tasks.Tracker
	touched  time.Time
}

type boardService struct {
	cr     repository.CarouselRepository
	cs     repository.CarouselSlideRepository
	mr     repository.MediaRepository
	thumbs ThumbnailService
	drafts DraftService
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[boardKey]*boardSession
}

func NewBoardService(
	cr repository.CarouselRepository,
	cs repository.CarouselSlideRepository,
	mr repository.MediaRepository,
	thumbs ThumbnailService,
	drafts DraftService,
	logger *zap.Logger) BoardService {
	return &boardService{
		cr:       cr,
		cs:       cs,
		mr:       mr,
		thumbs:   thumbs,
		drafts:   drafts,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[boardKey]*boardSession),
	}
}

// session returns the open board for the carousel, creating it from the
// persisted slides on first use.
func (s *boardService) session(ctx context.Context, userID int64, carouselID uuid.UUID) (*boardSession, error) {
	key := boardKey{userID: userID, carouselID: carouselID}
	s.mu.Lock()
	sess, ok := s.sessions[key]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	owned, err := s.cr.CheckByUserID(ctx, carouselID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
	}
	if !owned {
		return nil, fmt.Errorf("carousel %s: %w", carouselID, apperr.ErrNotFound)
	}

	previews := board.NewPreviewRegistry()
	b := board.New(previews)
	sess = &boardSession{
		board:    b,
		drag:     board.NewDragEngine(b),
		previews: previews,
		tracker:  tasks.NewTracker(context.Background(), s.logger),
		touched:  s.now(),
	}
	if err := s.loadPersisted(ctx, sess, carouselID); err != nil {
		sess.tracker.Close()
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[key]; ok {
		sess.tracker.Close()
		sess.board.Close()
		return existing, nil
	}
	s.sessions[key] = sess
	return sess, nil
}

func (s *boardService) loadPersisted(ctx context.Context, sess *boardSession, carouselID uuid.UUID) error {
	slides, err := s.cs.ListByCarouselID(ctx, carouselID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
	}
	for _, slide := range slides {
		i := slide.Position - 1
		if i < 0 || i >= board.SlotCount {
			continue
		}
		m, err := s.mr.GetByID(ctx, slide.MediaID)
		if err != nil || m == nil {
			continue
		}
		ref := board.LibraryRef{Bucket: m.Bucket, Path: m.Path, DisplayName: m.Filename, SizeBytes: m.SizeBytes}
		if err := sess.board.SetSlot(i, ref); err != nil {
			return err
		}
		if url, err := s.thumbs.ForMedia(ctx, m.ID); err == nil {
			_ = sess.board.SetPreviewURL(i, url)
		}
	}
	return nil
}

// with runs fn on the session's board under its lock and returns the
// resulting snapshot.
func (s *boardService) with(ctx context.Context, userID int64, carouselID uuid.UUID, fn func(*boardSession) error) (BoardSnapshot, error) {
	sess, err := s.session(ctx, userID, carouselID)
	if err != nil {
		return BoardSnapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touched = s.now()
	if fn != nil {
		if err := fn(sess); err != nil {
			return s.snapshot(carouselID, sess), boardError(err)
		}
	}
	return s.snapshot(carouselID, sess), nil
}

func (s *boardService) snapshot(carouselID uuid.UUID, sess *boardSession) BoardSnapshot {
	state, _ := sess.drag.State()
	ghost, dragging := sess.drag.Ghost()
	return BoardSnapshot{
		CarouselID: carouselID,
		DragState:  state,
		Ghost:      ghost,
		Dragging:   dragging,
		Slots:      sess.board.Slots(),
		UpdatedAt:  sess.touched,
	}
}

func boardError(err error) error {
	if errors.Is(err, board.ErrBoardFull) || errors.Is(err, board.ErrSlotOutOfRange) {
		return fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	return err
}

func (s *boardService) Open(ctx context.Context, userID int64, carouselID uuid.UUID) (BoardSnapshot, error) {
	return s.with(ctx, userID, carouselID, nil)
}

// Upload drops files onto slot index. A drag in progress is abandoned in
// favour of the files.
func (s *boardService) Upload(ctx context.Context, userID int64, carouselID uuid.UUID, index int, files []board.LocalFile) (BoardSnapshot, error) {
	return s.with(ctx, userID, carouselID, func(sess *boardSession) error {
		_, err := sess.drag.DropWithExternalFiles(index, files)
		return err
	})
}

func (s *boardService) Append(ctx context.Context, userID int64, carouselID uuid.UUID, files []board.LocalFile) (BoardSnapshot, error) {
	return s.with(ctx, userID, carouselID, func(sess *boardSession) error {
		_, err := board.AddFiles(sess.board, files)
		return err
	})
}

func (s *boardService) ImportLibrary(ctx context.Context, userID int64, carouselID uuid.UUID, index int, bucket, path string) (BoardSnapshot, error) {
	return s.with(ctx, userID, carouselID, func(sess *boardSession) error {
		return sess.tracker.Run(ctx, "import", func(ctx context.Context) error {
			m, err := s.mr.FindByLocation(ctx, bucket, path, userID)
			if err != nil {
				return fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
			}
			if m == nil {
				return fmt.Errorf("library item %s: %w", path, apperr.ErrNotFound)
			}

			ref := board.LibraryRef{Bucket: m.Bucket, Path: m.Path, DisplayName: m.Filename, SizeBytes: m.SizeBytes}
			if err := sess.board.SetSlot(index, ref); err != nil {
				return err
			}
			url, err := s.thumbs.ForMedia(ctx, m.ID)
			if err != nil {
				s.logger.Debug("library preview unavailable", zap.String("path", path), zap.Error(err))
				return nil
			}
			return sess.board.SetPreviewURL(index, url)
		})
	})
}

func (s *boardService) Clear(ctx context.Context, userID int64, carouselID uuid.UUID, index int) (BoardSnapshot, error) {
	return s.with(ctx, userID, carouselID, func(sess *boardSession) error {
		return sess.board.ClearSlot(index)
	})
}

func (s *boardService) Drag(ctx context.Context, userID int64, carouselID uuid.UUID, event string, index int) (BoardSnapshot, error) {
	return s.with(ctx, userID, carouselID, func(sess *boardSession) error {
		switch event {
		case DragStartEvent:
			sess.drag.DragStart(index)
			return nil
		case DragDropEvent:
			return sess.drag.DropOnSlot(index)
		case DragEndEvent:
			sess.drag.DragEnd()
			return nil
		default:
			return fmt.Errorf("%w: unknown drag event %q", apperr.ErrValidation, event)
		}
	})
}

// Persist flushes the board. It runs under the session's tracker so closing
// the session cancels a persist still in flight.
func (s *boardService) Persist(ctx context.Context, userID int64, carouselID uuid.UUID) (PersistResult, error) {
	sess, err := s.session(ctx, userID, carouselID)
	if err != nil {
		return PersistResult{}, err
	}

	sess.mu.Lock()
	sess.touched = s.now()
	drafts := sess.board.Drafts()
	sess.mu.Unlock()

	var res PersistResult
	err = sess.tracker.Run(ctx, "persist", func(ctx context.Context) error {
		var err error
		res, err = s.drafts.Persist(ctx, drafts, carouselID, userID)
		return err
	})
	return res, err
}

func (s *boardService) Preview(userID int64, handle string) (board.LocalFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, sess := range s.sessions {
		if key.userID != userID {
			continue
		}
		if f, ok := sess.previews.Get(handle); ok {
			return f, true
		}
	}
	return board.LocalFile{}, false
}

func (s *boardService) Close(userID int64, carouselID uuid.UUID) bool {
	key := boardKey{userID: userID, carouselID: carouselID}
	s.mu.Lock()
	sess, ok := s.sessions[key]
	delete(s.sessions, key)
	s.mu.Unlock()
	if !ok {
		return false
	}
	closeSession(sess)
	return true
}

// CloseIdle closes every session untouched for longer than maxIdle.
func (s *boardService) CloseIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	var idle []*boardSession
	s.mu.Lock()
	for key, sess := range s.sessions {
		sess.mu.Lock()
		stale := sess.touched.Before(cutoff)
		sess.mu.Unlock()
		if stale {
			idle = append(idle, sess)
			delete(s.sessions, key)
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		closeSession(sess)
	}
	return len(idle)
}

func (s *boardService) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[boardKey]*boardSession)
	s.mu.Unlock()

	for _, sess := range all {
		closeSession(sess)
	}
}

func closeSession(sess *boardSession) {
	sess.tracker.Close()
	sess.mu.Lock()
	sess.board.Close()
	sess.mu.Unlock()
}
