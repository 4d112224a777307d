package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/carousel-scheduler/configs"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// StorageService stores slide images in the R2 bucket and signs read URLs.
type StorageService interface {
	Bucket() string
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

type r2Storage struct {
	bucket  string
	client  *s3.Client
	presign *s3.PresignClient
}

func NewStorageService(ctx context.Context, c cfg.Config) (StorageService, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.R2.AccessKey, c.R2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2.AccountID))
	})
	return &r2Storage{
		bucket:  c.R2.BucketName,
		client:  client,
		presign: s3.NewPresignClient(client),
	}, nil
}

func (r *r2Storage) Bucket() string { return r.bucket }

func (r *r2Storage) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	}
	if _, err := r.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("%w: put %s: %v", apperr.ErrStorage, key, err)
	}
	return nil
}

func (r *r2Storage) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if bucket == "" {
		bucket = r.bucket
	}
	req, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("%w: sign %s: %v", apperr.ErrStorage, key, err)
	}
	return req.URL, nil
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename keeps letters, digits, dot, dash and underscore, replacing
// every other run with a single underscore.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Trim(unsafeFilename.ReplaceAllString(name, "_"), "_")
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}

// ObjectKey builds user_<id>/<YYYY-MM-DD>/<unixmillis>_<nanoid>_<filename>.
func ObjectKey(userID int64, filename string, now time.Time) (string, error) {
	id, err := gonanoid.New(10)
	if err != nil {
		return "", fmt.Errorf("generate object id: %w", err)
	}
	now = now.UTC()
	return fmt.Sprintf("user_%d/%s/%d_%s_%s",
		userID, now.Format("2006-01-02"), now.UnixMilli(), id, SanitizeFilename(filename)), nil
}
