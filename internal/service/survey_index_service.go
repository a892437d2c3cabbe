package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/survey-api/internal/models"
	appErrors "github.com/noah-isme/survey-api/pkg/errors"
)

// SurveyIndexConfig tunes listing behaviour.
type SurveyIndexConfig struct {
	AllowPartialReads bool
	CacheTTL          time.Duration
}

// SurveyIndexService lists surveys across both survey types and projects
// them into display views.
type SurveyIndexService struct {
	store   SurveyStore
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     SurveyIndexConfig
}

// NewSurveyIndexService constructs the index service.
func NewSurveyIndexService(store SurveyStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg SurveyIndexConfig) *SurveyIndexService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SurveyIndexService{store: store, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
}

// ListByUser returns the surveys of one respondent, newest first.
func (s *SurveyIndexService) ListByUser(ctx context.Context, userName string) (*models.SurveyList, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user_name is required")
	}
	return s.cached(ctx, userCacheKey(userName), func(ctx context.Context, surveyType models.SurveyType) ([]models.SurveyRecord, error) {
		record, err := s.store.FindByUser(ctx, surveyType, userName)
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return []models.SurveyRecord{record}, nil
	})
}

// ListAll returns every survey inside filter's window, newest first.
func (s *SurveyIndexService) ListAll(ctx context.Context, filter models.SurveyFilter) (*models.SurveyList, error) {
	list, err := s.cached(ctx, cacheKeyAllSurveys, s.store.ListByType)
	if err != nil {
		return nil, err
	}
	if filter.From == nil && filter.To == nil {
		return list, nil
	}
	filtered := make([]models.AggregatedSurveyView, 0, len(list.Surveys))
	for _, view := range list.Surveys {
		if filter.Matches(view.CreatedAt) {
			filtered = append(filtered, view)
		}
	}
	list.Surveys = filtered
	return list, nil
}

// AdminOverview returns statistics over every survey together with the
// surveys themselves.
func (s *SurveyIndexService) AdminOverview(ctx context.Context) (*models.AdminOverview, error) {
	list, err := s.ListAll(ctx, models.SurveyFilter{})
	if err != nil {
		return nil, err
	}
	return &models.AdminOverview{
		Stats:         BuildAdminStats(list.Surveys),
		Surveys:       list.Surveys,
		Degraded:      list.Degraded,
		FailedSources: list.FailedSources,
		CacheHit:      list.CacheHit,
	}, nil
}

type sourceFetch func(ctx context.Context, surveyType models.SurveyType) ([]models.SurveyRecord, error)

func (s *SurveyIndexService) cached(ctx context.Context, key string, fetch sourceFetch) (*models.SurveyList, error) {
	list, hit, err := remember(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) (*models.SurveyList, bool, error) {
		list, err := s.collect(ctx, fetch)
		if err != nil {
			return nil, false, err
		}
		return list, !list.Degraded, nil
	})
	if err != nil {
		return nil, err
	}

	out := *list
	out.CacheHit = hit
	if out.Surveys == nil {
		out.Surveys = make([]models.AggregatedSurveyView, 0)
	}
	return &out, nil
}

// collect queries every survey type. A failing source either degrades the
// result or fails the call, depending on AllowPartialReads; when every
// source fails the call always fails.
func (s *SurveyIndexService) collect(ctx context.Context, fetch sourceFetch) (*models.SurveyList, error) {
	list := &models.SurveyList{Surveys: make([]models.AggregatedSurveyView, 0)}
	var firstErr error
	for _, surveyType := range models.SurveyTypes {
		records, err := fetch(ctx, surveyType)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			list.FailedSources = append(list.FailedSources, surveyType)
			s.metrics.RecordSourceFailure(surveyType)
			s.logger.Warn("survey source failed", zap.String("survey_type", string(surveyType)), zap.Error(err))
			continue
		}
		list.Surveys = append(list.Surveys, ProjectSurveys(records)...)
	}

	if len(list.FailedSources) > 0 {
		if len(list.FailedSources) == len(models.SurveyTypes) || !s.cfg.AllowPartialReads {
			return nil, unavailable(firstErr)
		}
		list.Degraded = true
	}

	sortNewestFirst(list.Surveys)
	return list, nil
}

func unavailable(err error) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Code == appErrors.ErrStorageUnavailable.Code {
		return err
	}
	return appErrors.WrapAs(err, appErrors.ErrStorageUnavailable, "survey storage is unavailable")
}
