package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/survey-api/pkg/errors"
	"github.com/noah-isme/survey-api/pkg/jobs"
	"github.com/noah-isme/survey-api/pkg/storage"
)

// JobTypeImageDelete is the queue job type for image cleanup.
const JobTypeImageDelete = "image.delete"

const (
	imageFolder = "survey_images"
	sniffBytes  = 3072
)

// ImageStore persists uploaded images.
type ImageStore interface {
	Upload(ctx context.Context, publicID string, r io.Reader, size int64, contentType string) (storage.Image, error)
	Delete(ctx context.Context, publicID string) error
}

// ImageUpload is an incoming image file.
type ImageUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// ImageConfig bounds accepted uploads.
type ImageConfig struct {
	MaxUploadBytes int64
	AllowedMIMEs   []string
}

// ImageService validates and stores survey images and cleans them up in
// the background.
type ImageService struct {
	store   ImageStore
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ImageConfig
}

// NewImageService constructs an image service.
func NewImageService(store ImageStore, metrics *MetricsService, logger *zap.Logger, cfg ImageConfig) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5 * 1024 * 1024
	}
	return &ImageService{store: store, metrics: metrics, logger: logger, cfg: cfg}
}

// UseQueue routes cleanup through queue. Without a running queue cleanup
// happens inline.
func (s *ImageService) UseQueue(queue *jobs.Queue) {
	s.queue = queue
}

// Upload validates size and content type and stores the image under a
// generated public id.
func (s *ImageService) Upload(ctx context.Context, upload ImageUpload) (*storage.Image, error) {
	if upload.Reader == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image file is empty")
	}
	if upload.Size > s.cfg.MaxUploadBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image exceeds %d bytes", s.cfg.MaxUploadBytes))
	}

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(upload.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read image")
	}
	head = head[:n]
	detected := mimetype.Detect(head)
	if !s.allowed(detected) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image type %s is not allowed", detected.String()))
	}

	publicID := path.Join(imageFolder, uuid.NewString()+detected.Extension())
	body := io.MultiReader(bytes.NewReader(head), upload.Reader)
	image, err := s.store.Upload(ctx, publicID, body, upload.Size, detected.String())
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrExternalAsset, "failed to upload image")
	}
	s.logger.Info("image uploaded", zap.String("public_id", image.PublicID), zap.String("filename", upload.Filename))
	return &image, nil
}

// Delete removes an image immediately.
func (s *ImageService) Delete(ctx context.Context, publicID string) error {
	if err := s.store.Delete(ctx, publicID); err != nil {
		return appErrors.WrapAs(err, appErrors.ErrExternalAsset, "failed to delete image")
	}
	return nil
}

// ScheduleDelete removes an image without failing the caller. The deletion
// goes through the cleanup queue when it runs, otherwise it is attempted
// once inline and failures are only logged.
func (s *ImageService) ScheduleDelete(ctx context.Context, publicID, reason string) {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return
	}
	if s.queue.Started() {
		err := s.queue.Enqueue(jobs.Job{ID: publicID, Type: JobTypeImageDelete, Payload: publicID})
		if err == nil {
			s.metrics.RecordImageCleanup(CleanupQueued)
			return
		}
		s.logger.Warn("image cleanup queue rejected job, deleting inline", zap.String("public_id", publicID), zap.Error(err))
	}

	if err := s.store.Delete(ctx, publicID); err != nil {
		s.metrics.RecordImageCleanup(CleanupFailed)
		s.logger.Warn("image cleanup failed", zap.String("public_id", publicID), zap.String("reason", reason), zap.Error(err))
		return
	}
	s.metrics.RecordImageCleanup(CleanupSucceeded)
}

// HandleCleanupJob is the queue handler for JobTypeImageDelete.
func (s *ImageService) HandleCleanupJob(ctx context.Context, job jobs.Job) error {
	publicID, ok := job.Payload.(string)
	if !ok || publicID == "" {
		return nil
	}
	if err := s.store.Delete(ctx, publicID); err != nil {
		return fmt.Errorf("delete image %s: %w", publicID, err)
	}
	s.metrics.RecordImageCleanup(CleanupSucceeded)
	s.logger.Info("image cleaned up", zap.String("public_id", publicID), zap.Int("attempt", job.Attempt+1))
	return nil
}

// CleanupExhausted records a cleanup job that ran out of retries.
func (s *ImageService) CleanupExhausted(job jobs.Job, err error) {
	s.metrics.RecordImageCleanup(CleanupFailed)
	s.logger.Error("image cleanup abandoned", zap.String("public_id", job.ID), zap.Error(err))
}

func (s *ImageService) allowed(detected *mimetype.MIME) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return strings.HasPrefix(detected.String(), "image/")
	}
	for _, mime := range s.cfg.AllowedMIMEs {
		if detected.Is(mime) {
			return true
		}
	}
	return false
}
