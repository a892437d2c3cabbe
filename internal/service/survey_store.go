package service

import (
	"context"
	"time"

	"github.com/noah-isme/survey-api/internal/models"
)

// SurveyStore persists survey records keyed by (type, user name).
// FindByUser and Delete report a missing row with repository.ErrSurveyNotFound.
type SurveyStore interface {
	Upsert(ctx context.Context, record models.SurveyRecord) (models.SurveyRecord, error)
	FindByUser(ctx context.Context, surveyType models.SurveyType, userName string) (models.SurveyRecord, error)
	ListByType(ctx context.Context, surveyType models.SurveyType) ([]models.SurveyRecord, error)
	Delete(ctx context.Context, surveyType models.SurveyType, userName string) (models.SurveyRecord, error)
}

// surveyReindexer is implemented by stores that keep derived indexes.
type surveyReindexer interface {
	Reindex(ctx context.Context) (map[models.SurveyType]int, error)
}

// InstrumentedStore times every store call.
type InstrumentedStore struct {
	SurveyStore
	metrics *MetricsService
}

// NewInstrumentedStore wraps store with timing metrics.
func NewInstrumentedStore(store SurveyStore, metrics *MetricsService) *InstrumentedStore {
	return &InstrumentedStore{SurveyStore: store, metrics: metrics}
}

func (s *InstrumentedStore) Upsert(ctx context.Context, record models.SurveyRecord) (models.SurveyRecord, error) {
	defer s.observe("upsert", record.SurveyType(), time.Now())
	return s.SurveyStore.Upsert(ctx, record)
}

func (s *InstrumentedStore) FindByUser(ctx context.Context, surveyType models.SurveyType, userName string) (models.SurveyRecord, error) {
	defer s.observe("find_by_user", surveyType, time.Now())
	return s.SurveyStore.FindByUser(ctx, surveyType, userName)
}

func (s *InstrumentedStore) ListByType(ctx context.Context, surveyType models.SurveyType) ([]models.SurveyRecord, error) {
	defer s.observe("list_by_type", surveyType, time.Now())
	return s.SurveyStore.ListByType(ctx, surveyType)
}

func (s *InstrumentedStore) Delete(ctx context.Context, surveyType models.SurveyType, userName string) (models.SurveyRecord, error) {
	defer s.observe("delete", surveyType, time.Now())
	return s.SurveyStore.Delete(ctx, surveyType, userName)
}

// Reindex forwards to the wrapped store when it supports reindexing.
func (s *InstrumentedStore) Reindex(ctx context.Context) (map[models.SurveyType]int, error) {
	reindexer, ok := s.SurveyStore.(surveyReindexer)
	if !ok {
		return nil, errReindexUnsupported
	}
	return reindexer.Reindex(ctx)
}

func (s *InstrumentedStore) observe(operation string, surveyType models.SurveyType, start time.Time) {
	s.metrics.ObserveStoreQuery(operation, surveyType, time.Since(start))
}
