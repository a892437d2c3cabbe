package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/survey-api/internal/models"
)

// SQLSurveyStore keeps each survey type in its own PostgreSQL table.
type SQLSurveyStore struct {
	db        *sqlx.DB
	students  *StudentSurveyRepository
	employers *EmployerSurveyRepository
}

// NewSQLSurveyStore constructs the PostgreSQL backed store.
func NewSQLSurveyStore(db *sqlx.DB) *SQLSurveyStore {
	return &SQLSurveyStore{
		db:        db,
		students:  NewStudentSurveyRepository(db),
		employers: NewEmployerSurveyRepository(db),
	}
}

func (s *SQLSurveyStore) Upsert(ctx context.Context, record models.SurveyRecord) (models.SurveyRecord, error) {
	switch survey := record.(type) {
	case *models.StudentSurvey:
		return asRecord(s.students.Upsert(ctx, survey))
	case *models.EmployerSurvey:
		return asRecord(s.employers.Upsert(ctx, survey))
	default:
		return nil, fmt.Errorf("unsupported survey record %T", record)
	}
}

func (s *SQLSurveyStore) FindByUser(ctx context.Context, surveyType models.SurveyType, userName string) (models.SurveyRecord, error) {
	switch surveyType {
	case models.SurveyTypeStudent:
		return asRecord(s.students.FindByUser(ctx, userName))
	case models.SurveyTypeEmployer:
		return asRecord(s.employers.FindByUser(ctx, userName))
	default:
		return nil, fmt.Errorf("unsupported survey type %q", surveyType)
	}
}

func (s *SQLSurveyStore) ListByType(ctx context.Context, surveyType models.SurveyType) ([]models.SurveyRecord, error) {
	switch surveyType {
	case models.SurveyTypeStudent:
		surveys, err := s.students.List(ctx)
		if err != nil {
			return nil, err
		}
		records := make([]models.SurveyRecord, len(surveys))
		for i := range surveys {
			records[i] = &surveys[i]
		}
		return records, nil
	case models.SurveyTypeEmployer:
		surveys, err := s.employers.List(ctx)
		if err != nil {
			return nil, err
		}
		records := make([]models.SurveyRecord, len(surveys))
		for i := range surveys {
			records[i] = &surveys[i]
		}
		return records, nil
	default:
		return nil, fmt.Errorf("unsupported survey type %q", surveyType)
	}
}

func (s *SQLSurveyStore) Delete(ctx context.Context, surveyType models.SurveyType, userName string) (models.SurveyRecord, error) {
	switch surveyType {
	case models.SurveyTypeStudent:
		return asRecord(s.students.Delete(ctx, userName))
	case models.SurveyTypeEmployer:
		return asRecord(s.employers.Delete(ctx, userName))
	default:
		return nil, fmt.Errorf("unsupported survey type %q", surveyType)
	}
}

// Ping checks database connectivity.
func (s *SQLSurveyStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func asRecord[T models.SurveyRecord](survey T, err error) (models.SurveyRecord, error) {
	if err != nil {
		return nil, err
	}
	return survey, nil
}
