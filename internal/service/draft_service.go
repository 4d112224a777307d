package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/maheshrc27/carousel-scheduler/internal/board"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
	"github.com/maheshrc27/carousel-scheduler/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	uploadConcurrency = 4

	msgResolutionWarning = "library reference could not be resolved, slide skipped"
)

// PersistedSlide is one written slide row.
type PersistedSlide struct {
	Position  int
	SlotIndex int
	MediaID   uuid.UUID
}

type PersistResult struct {
	Slides  []PersistedSlide
	Skipped []board.LibraryRef
}

// Positions lists the written positions in order.
func (r PersistResult) Positions() []int {
	out := make([]int, len(r.Slides))
	for i, s := range r.Slides {
		out[i] = s.Position
	}
	return out
}

// DraftService writes a board snapshot to durable storage, replacing every
// slide the carousel had before.
type DraftService interface {
	Persist(ctx context.Context, drafts []board.Draft, carouselID uuid.UUID, userID int64) (PersistResult, error)
}

type draftService struct {
	tx       repository.Transactor
	cr       repository.CarouselRepository
	cs       repository.CarouselSlideRepository
	mr       repository.MediaRepository
	sessions SessionService
	storage  StorageService
	logger   *zap.Logger
	now      func() time.Time
}

func NewDraftService(
	tx repository.Transactor,
	cr repository.CarouselRepository,
	cs repository.CarouselSlideRepository,
	mr repository.MediaRepository,
	sessions SessionService,
	storage StorageService,
	logger *zap.Logger) DraftService {
	return &draftService{
		tx:       tx,
		cr:       cr,
		cs:       cs,
		mr:       mr,
		sessions: sessions,
		storage:  storage,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *draftService) Persist(ctx context.Context, drafts []board.Draft, carouselID uuid.UUID, userID int64) (PersistResult, error) {
	if _, err := s.sessions.Affirm(ctx, userID); err != nil {
		return PersistResult{}, err
	}

	carousel, err := s.cr.GetByID(ctx, carouselID)
	if err != nil {
		return PersistResult{}, fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
	}
	if carousel == nil || carousel.UserID != userID {
		return PersistResult{}, fmt.Errorf("carousel %s: %w", carouselID, apperr.ErrNotFound)
	}

	ordered := make([]board.Draft, 0, len(drafts))
	for _, d := range drafts {
		if !board.IsEmpty(d.Occupant) {
			ordered = append(ordered, d)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].SlotIndex < ordered[j].SlotIndex })

	var result PersistResult
	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.cs.DeleteByCarouselID(ctx, tx, carouselID); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}

		keys, err := s.uploadFiles(ctx, userID, ordered)
		if err != nil {
			return err
		}

		var slides []models.CarouselSlide
		for i, d := range ordered {
			var mediaID uuid.UUID
			switch occ := d.Occupant.(type) {
			case board.LocalFile:
				mediaID, err = s.mr.Create(ctx, tx, &models.Media{
					UserID:    userID,
					Bucket:    s.storage.Bucket(),
					Path:      keys[i],
					Filename:  occ.DisplayName,
					MimeType:  occ.MimeType,
					SizeBytes: int64(len(occ.Bytes)),
				})
				if err != nil {
					return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
				}
			case board.LibraryRef:
				media, err := s.mr.FindByLocation(ctx, occ.Bucket, occ.Path, userID)
				if err != nil || media == nil {
					fields := []zap.Field{
						zap.String("carousel_id", carouselID.String()),
						zap.Int("slot", d.SlotIndex),
						zap.String("bucket", occ.Bucket),
						zap.String("path", occ.Path),
					}
					if err != nil {
						fields = append(fields, zap.Error(err))
					}
					s.logger.Warn(msgResolutionWarning, fields...)
					result.Skipped = append(result.Skipped, occ)
					continue
				}
				mediaID = media.ID
			default:
				panic(fmt.Sprintf("draft: unknown occupant %T", occ))
			}

			position := len(slides) + 1
			slides = append(slides, models.CarouselSlide{
				CarouselID: carouselID,
				UserID:     userID,
				Position:   position,
				MediaID:    mediaID,
			})
			result.Slides = append(result.Slides, PersistedSlide{
				Position:  position,
				SlotIndex: d.SlotIndex,
				MediaID:   mediaID,
			})
		}

		if err := s.cs.UpsertBatch(ctx, tx, carouselID, userID, slides); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}

		if len(slides) > 0 && carousel.Status == models.CarouselStatusDraft {
			if err := s.cr.UpdateStatus(ctx, tx, carouselID, models.CarouselStatusReady); err != nil {
				return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("persist carousel failed",
			zap.String("carousel_id", carouselID.String()),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return PersistResult{}, err
	}

	s.logger.Info("carousel persisted",
		zap.String("carousel_id", carouselID.String()),
		zap.Int("slides", len(result.Slides)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// uploadFiles writes every File draft to object storage concurrently and
// returns the object keys indexed like drafts, whatever order uploads finish in.
func (s *draftService) uploadFiles(ctx context.Context, userID int64, drafts []board.Draft) ([]string, error) {
	keys := make([]string, len(drafts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)

	now := s.now()
	for i, d := range drafts {
		file, ok := d.Occupant.(board.LocalFile)
		if !ok {
			continue
		}
		key, err := ObjectKey(userID, file.DisplayName, now)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}
		keys[i] = key

		g.Go(func() error {
			return s.storage.Upload(gctx, key, file.Bytes, file.MimeType)
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, apperr.ErrStorage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return keys, nil
}
