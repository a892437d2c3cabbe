package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/survey-api/internal/models"
)

// EmployerSurveyRepository persists rows of employer_surveys.
type EmployerSurveyRepository struct {
	table surveyTable
	now   func() time.Time
}

// NewEmployerSurveyRepository constructs the repository.
func NewEmployerSurveyRepository(db *sqlx.DB) *EmployerSurveyRepository {
	return &EmployerSurveyRepository{
		table: newSurveyTable(db, "employer_surveys", models.SurveyTypeEmployer),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Upsert stores survey under its user name, overwriting every column of an
// existing row and refreshing created_at.
func (r *EmployerSurveyRepository) Upsert(ctx context.Context, survey *models.EmployerSurvey) (*models.EmployerSurvey, error) {
	survey.CreatedAt = r.now()
	var stored models.EmployerSurvey
	if err := r.table.upsert(ctx, survey, &stored); err != nil {
		return nil, fmt.Errorf("upsert employer survey: %w", err)
	}
	return &stored, nil
}

// FindByUser returns the survey of userName or ErrSurveyNotFound.
func (r *EmployerSurveyRepository) FindByUser(ctx context.Context, userName string) (*models.EmployerSurvey, error) {
	var survey models.EmployerSurvey
	if err := r.table.findByUser(ctx, &survey, userName); err != nil {
		return nil, fmt.Errorf("find employer survey: %w", err)
	}
	return &survey, nil
}

// List returns every employer survey, newest first.
func (r *EmployerSurveyRepository) List(ctx context.Context) ([]models.EmployerSurvey, error) {
	surveys := make([]models.EmployerSurvey, 0)
	if err := r.table.list(ctx, &surveys); err != nil {
		return nil, fmt.Errorf("list employer surveys: %w", err)
	}
	return surveys, nil
}

// Delete removes the survey of userName and returns the deleted row.
func (r *EmployerSurveyRepository) Delete(ctx context.Context, userName string) (*models.EmployerSurvey, error) {
	var survey models.EmployerSurvey
	if err := r.table.delete(ctx, &survey, userName); err != nil {
		return nil, fmt.Errorf("delete employer survey: %w", err)
	}
	return &survey, nil
}
