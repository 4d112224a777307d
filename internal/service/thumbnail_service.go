package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
	"github.com/maheshrc27/carousel-scheduler/internal/repository"
	"go.uber.org/zap"
)

var errMediaMissing = errors.New("media record missing")

// PlaceholderGlyph is shown in place of a slide whose image cannot be signed.
const PlaceholderGlyph = "🖼"

type Thumbnail struct {
	Position    int    `json:"position"`
	URL         string `json:"url,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// ThumbnailService signs a preview URL for every slide of a carousel.
type ThumbnailService interface {
	ForCarousel(ctx context.Context, carouselID uuid.UUID) ([]Thumbnail, error)
	ForMedia(ctx context.Context, mediaID uuid.UUID) (string, error)
	ForPublish(ctx context.Context, mediaID uuid.UUID, aspect string) (string, error)
}

type thumbnailService struct {
	cs      repository.CarouselSlideRepository
	mr      repository.MediaRepository
	dr      repository.MediaDerivativeRepository
	storage StorageService
	ttl     time.Duration
	logger  *zap.Logger
}

func NewThumbnailService(
	cs repository.CarouselSlideRepository,
	mr repository.MediaRepository,
	dr repository.MediaDerivativeRepository,
	storage StorageService,
	ttl time.Duration,
	logger *zap.Logger) ThumbnailService {
	return &thumbnailService{cs: cs, mr: mr, dr: dr, storage: storage, ttl: ttl, logger: logger}
}

// ForCarousel never fails per slide: a slide that cannot be resolved or
// signed gets the placeholder instead.
func (s *thumbnailService) ForCarousel(ctx context.Context, carouselID uuid.UUID) ([]Thumbnail, error) {
	slides, err := s.cs.ListByCarouselID(ctx, carouselID)
	if err != nil {
		return nil, err
	}

	thumbs := make([]Thumbnail, 0, len(slides))
	for _, slide := range slides {
		t := Thumbnail{Position: slide.Position}
		url, err := s.ForMedia(ctx, slide.MediaID)
		if err != nil {
			s.logger.Debug("thumbnail unavailable",
				zap.String("carousel_id", carouselID.String()),
				zap.Int("position", slide.Position),
				zap.Error(err))
			t.Placeholder = PlaceholderGlyph
		} else {
			t.URL = url
		}
		thumbs = append(thumbs, t)
	}
	return thumbs, nil
}

// ForMedia prefers the thumb derivative and falls back to the original object.
func (s *thumbnailService) ForMedia(ctx context.Context, mediaID uuid.UUID) (string, error) {
	bucket, path, err := s.location(ctx, mediaID)
	if err != nil {
		return "", err
	}
	return s.storage.SignedURL(ctx, bucket, path, s.ttl)
}

// ForPublish signs the derivative cropped to aspect, or the original object
// when the workflow has not rendered one yet.
func (s *thumbnailService) ForPublish(ctx context.Context, mediaID uuid.UUID, aspect string) (string, error) {
	typeCode := models.DerivativePortrait
	if aspect == models.AspectSquare {
		typeCode = models.DerivativeSquare
	}
	if d, err := s.dr.Get(ctx, mediaID, typeCode); err == nil && d != nil {
		return s.storage.SignedURL(ctx, d.Bucket, d.Path, s.ttl)
	}

	m, err := s.mr.GetByID(ctx, mediaID)
	if err != nil {
		return "", err
	}
	if m == nil {
		return "", errMediaMissing
	}
	return s.storage.SignedURL(ctx, m.Bucket, m.Path, s.ttl)
}

func (s *thumbnailService) location(ctx context.Context, mediaID uuid.UUID) (string, string, error) {
	d, err := s.dr.Get(ctx, mediaID, models.DerivativeThumb)
	if err == nil && d != nil {
		return d.Bucket, d.Path, nil
	}

	m, err := s.mr.GetByID(ctx, mediaID)
	if err != nil {
		return "", "", err
	}
	if m == nil {
		return "", "", errMediaMissing
	}
	return m.Bucket, m.Path, nil
}
