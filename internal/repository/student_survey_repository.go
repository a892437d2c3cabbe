package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/survey-api/internal/models"
)

// StudentSurveyRepository persists rows of student_surveys.
type StudentSurveyRepository struct {
	table surveyTable
	now   func() time.Time
}

// NewStudentSurveyRepository constructs the repository.
func NewStudentSurveyRepository(db *sqlx.DB) *StudentSurveyRepository {
	return &StudentSurveyRepository{
		table: newSurveyTable(db, "student_surveys", models.SurveyTypeStudent),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Upsert stores survey under its user name, overwriting every column of an
// existing row and refreshing created_at.
func (r *StudentSurveyRepository) Upsert(ctx context.Context, survey *models.StudentSurvey) (*models.StudentSurvey, error) {
	survey.CreatedAt = r.now()
	var stored models.StudentSurvey
	if err := r.table.upsert(ctx, survey, &stored); err != nil {
		return nil, fmt.Errorf("upsert student survey: %w", err)
	}
	return &stored, nil
}

// FindByUser returns the survey of userName or ErrSurveyNotFound.
func (r *StudentSurveyRepository) FindByUser(ctx context.Context, userName string) (*models.StudentSurvey, error) {
	var survey models.StudentSurvey
	if err := r.table.findByUser(ctx, &survey, userName); err != nil {
		return nil, fmt.Errorf("find student survey: %w", err)
	}
	return &survey, nil
}

// List returns every student survey, newest first.
func (r *StudentSurveyRepository) List(ctx context.Context) ([]models.StudentSurvey, error) {
	surveys := make([]models.StudentSurvey, 0)
	if err := r.table.list(ctx, &surveys); err != nil {
		return nil, fmt.Errorf("list student surveys: %w", err)
	}
	return surveys, nil
}

// Delete removes the survey of userName and returns the deleted row.
func (r *StudentSurveyRepository) Delete(ctx context.Context, userName string) (*models.StudentSurvey, error) {
	var survey models.StudentSurvey
	if err := r.table.delete(ctx, &survey, userName); err != nil {
		return nil, fmt.Errorf("delete student survey: %w", err)
	}
	return &survey, nil
}
