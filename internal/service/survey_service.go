package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/survey-api/internal/models"
	appErrors "github.com/noah-isme/survey-api/pkg/errors"
	"github.com/noah-isme/survey-api/pkg/middleware/requestid"
)

var errReindexUnsupported = appErrors.Clone(appErrors.ErrValidation, "the configured survey backend keeps no indexes to rebuild")

// SurveyServiceConfig toggles submission rules.
type SurveyServiceConfig struct {
	RequireImage bool
}

// DeleteSurveyRequest identifies the survey to remove. Respondents must
// name themselves in UserName; admins may delete any survey and override
// the image to clean up.
type DeleteSurveyRequest struct {
	ID            string
	UserName      string
	ImagePublicID string
	Admin         bool
}

// SurveyService orchestrates survey writes.
type SurveyService struct {
	store     SurveyStore
	images    *ImageService
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SurveyServiceConfig
}

// NewSurveyService constructs the survey service.
func NewSurveyService(store SurveyStore, images *ImageService, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg SurveyServiceConfig) *SurveyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SurveyService{store: store, images: images, cache: cache, metrics: metrics, validator: validate, logger: logger, cfg: cfg}
}

// Submit normalizes and upserts a survey.
func (s *SurveyService) Submit(ctx context.Context, sub models.Submission) (*models.SubmissionResult, error) {
	return s.submit(ctx, sub, nil)
}

// SubmitWithImage uploads the image first and stores the survey with its
// reference. Nothing is persisted when the upload fails, and the uploaded
// image is removed again when the survey cannot be stored.
func (s *SurveyService) SubmitWithImage(ctx context.Context, sub models.Submission, upload ImageUpload) (*models.SubmissionResult, error) {
	return s.submit(ctx, sub, &upload)
}

func (s *SurveyService) submit(ctx context.Context, sub models.Submission, upload *ImageUpload) (*models.SubmissionResult, error) {
	record, answers, err := NormalizeSubmission(sub)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid survey payload")
	}

	meta := record.Meta()
	if s.cfg.RequireImage && upload == nil && meta.ImageURL == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "an image is required")
	}

	var uploadedID string
	if upload != nil {
		if s.images == nil {
			return nil, appErrors.Clone(appErrors.ErrExternalAsset, "image uploads are not configured")
		}
		image, err := s.images.Upload(ctx, *upload)
		if err != nil {
			return nil, err
		}
		uploadedID = image.PublicID
		meta.ImageURL = &image.URL
		meta.ImagePublicID = &uploadedID
	}

	previous, err := s.store.FindByUser(ctx, record.SurveyType(), meta.UserName)
	if err != nil && !isNotFound(err) {
		s.discardUpload(ctx, uploadedID)
		return nil, classifyStorageError(err, "failed to load previous survey")
	}
	if err != nil {
		previous = nil
	}

	stored, err := s.store.Upsert(ctx, record)
	if err != nil {
		s.discardUpload(ctx, uploadedID)
		return nil, classifyStorageError(err, "failed to save survey")
	}

	if previous != nil {
		s.releaseReplacedImage(ctx, previous.Meta().ImagePublicID, stored.Meta().ImagePublicID)
	}
	_ = s.cache.Invalidate(ctx, cachePatternSurveys)
	s.metrics.RecordSubmission(stored.SurveyType())
	s.logger.Info("survey stored",
		zap.String("survey_type", string(stored.SurveyType())),
		zap.String("user_name", stored.Meta().UserName),
		zap.Bool("resubmission", previous != nil),
		zap.String("request_id", requestid.FromContext(ctx)),
	)

	return &models.SubmissionResult{Survey: ProjectSurvey(stored), Record: stored, Answers: answers}, nil
}

// Delete removes one survey and schedules removal of its image.
func (s *SurveyService) Delete(ctx context.Context, req DeleteSurveyRequest) (*models.AggregatedSurveyView, error) {
	surveyType, userName, err := models.ParseSurveyID(req.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if !req.Admin {
		owner := strings.TrimSpace(req.UserName)
		if owner == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "user_name is required")
		}
		if owner != userName {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "survey belongs to another user")
		}
	}

	removed, err := s.store.Delete(ctx, surveyType, userName)
	if err != nil {
		return nil, classifyStorageError(err, "failed to delete survey")
	}

	publicID := strings.TrimSpace(req.ImagePublicID)
	if publicID == "" && removed.Meta().ImagePublicID != nil {
		publicID = *removed.Meta().ImagePublicID
	}
	if publicID != "" && s.images != nil {
		s.images.ScheduleDelete(ctx, publicID, "survey deleted")
	}

	_ = s.cache.Invalidate(ctx, cachePatternSurveys)
	s.logger.Info("survey deleted",
		zap.String("id", req.ID),
		zap.Bool("admin", req.Admin),
		zap.String("request_id", requestid.FromContext(ctx)),
	)

	view := ProjectSurvey(removed)
	return &view, nil
}

// Reindex rebuilds derived indexes on backends that keep them.
func (s *SurveyService) Reindex(ctx context.Context) (map[models.SurveyType]int, error) {
	reindexer, ok := s.store.(surveyReindexer)
	if !ok {
		return nil, errReindexUnsupported
	}
	counts, err := reindexer.Reindex(ctx)
	if err != nil {
		return nil, classifyStorageError(err, "failed to rebuild survey indexes")
	}
	_ = s.cache.Invalidate(ctx, cachePatternSurveys)
	s.logger.Info("survey indexes rebuilt", zap.Any("counts", counts))
	return counts, nil
}

func (s *SurveyService) discardUpload(ctx context.Context, publicID string) {
	if publicID == "" || s.images == nil {
		return
	}
	s.images.ScheduleDelete(ctx, publicID, "survey not stored")
}

func (s *SurveyService) releaseReplacedImage(ctx context.Context, previous, current *string) {
	if previous == nil || s.images == nil {
		return
	}
	if current != nil && *current == *previous {
		return
	}
	s.images.ScheduleDelete(ctx, *previous, "image replaced")
}
