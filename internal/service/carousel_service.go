package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
	"github.com/maheshrc27/carousel-scheduler/internal/preset"
	"github.com/maheshrc27/carousel-scheduler/internal/repository"
	"github.com/maheshrc27/carousel-scheduler/internal/workflow"
	"go.uber.org/zap"
)

// CaptionWriter drafts a caption from the slides and a brand preset.
type CaptionWriter interface {
	GenerateCaption(ctx context.Context, req workflow.CaptionRequest) (string, error)
}

type CarouselDetail struct {
	Carousel   *models.Carousel
	Thumbnails []Thumbnail
}

type CarouselService interface {
	Create(ctx context.Context, userID int64, title, aspect string) (uuid.UUID, error)
	Get(ctx context.Context, userID int64, id uuid.UUID) (*CarouselDetail, error)
	GenerateCaption(ctx context.Context, userID int64, id uuid.UUID, presetName string) (string, error)
	Remove(ctx context.Context, userID int64, id uuid.UUID) error
}

type carouselService struct {
	cr       repository.CarouselRepository
	thumbs   ThumbnailService
	presets  preset.Store
	captions CaptionWriter
	logger   *zap.Logger
}

func NewCarouselService(
	cr repository.CarouselRepository,
	thumbs ThumbnailService,
	presets preset.Store,
	captions CaptionWriter,
	logger *zap.Logger) CarouselService {
	return &carouselService{cr: cr, thumbs: thumbs, presets: presets, captions: captions, logger: logger}
}

func (s *carouselService) Create(ctx context.Context, userID int64, title, aspect string) (uuid.UUID, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return uuid.Nil, fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}
	switch aspect {
	case "":
		aspect = models.AspectPortrait
	case models.AspectPortrait, models.AspectSquare:
	default:
		return uuid.Nil, fmt.Errorf("%w: aspect must be %s or %s", apperr.ErrValidation, models.AspectPortrait, models.AspectSquare)
	}

	return s.cr.Create(ctx, &models.Carousel{
		UserID: userID,
		Title:  title,
		Status: models.CarouselStatusDraft,
		Aspect: aspect,
	})
}

func (s *carouselService) owned(ctx context.Context, userID int64, id uuid.UUID) (*models.Carousel, error) {
	c, err := s.cr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.UserID != userID {
		return nil, fmt.Errorf("carousel %s: %w", id, apperr.ErrNotFound)
	}
	return c, nil
}

func (s *carouselService) Get(ctx context.Context, userID int64, id uuid.UUID) (*CarouselDetail, error) {
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	thumbs, err := s.thumbs.ForCarousel(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CarouselDetail{Carousel: c, Thumbnails: thumbs}, nil
}

func (s *carouselService) GenerateCaption(ctx context.Context, userID int64, id uuid.UUID, presetName string) (string, error) {
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return "", err
	}

	p, err := s.presets.Get(userID, presetName)
	if errors.Is(err, preset.ErrNotFound) {
		return "", fmt.Errorf("%w: unknown preset %q", apperr.ErrValidation, presetName)
	}
	if err != nil {
		return "", err
	}

	thumbs, err := s.thumbs.ForCarousel(ctx, id)
	if err != nil {
		return "", err
	}
	urls := make([]string, 0, len(thumbs))
	for _, t := range thumbs {
		if t.URL != "" {
			urls = append(urls, t.URL)
		}
	}
	if len(urls) == 0 {
		return "", fmt.Errorf("%w: add slides before generating a caption", apperr.ErrValidation)
	}

	caption, err := s.captions.GenerateCaption(ctx, workflow.CaptionRequest{
		CarouselID: id,
		Title:      c.Title,
		ImageURLs:  urls,
		Preset:     p,
	})
	if err != nil {
		s.logger.Warn("caption generation failed", zap.String("carousel_id", id.String()), zap.Error(err))
		return "", err
	}

	if err := s.cr.UpdateCaption(ctx, id, caption); err != nil {
		return "", err
	}
	return caption, nil
}

func (s *carouselService) Remove(ctx context.Context, userID int64, id uuid.UUID) error {
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if c.Status == models.CarouselStatusScheduled {
		return fmt.Errorf("%w: unschedule the carousel before deleting it", apperr.ErrValidation)
	}
	return s.cr.Remove(ctx, id)
}
