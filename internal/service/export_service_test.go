package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/survey-api/internal/models"
	appErrors "github.com/noah-isme/survey-api/pkg/errors"
)

type staticLister struct {
	list *models.SurveyList
	err  error
}

func (s staticLister) ListAll(ctx context.Context, filter models.SurveyFilter) (*models.SurveyList, error) {
	return s.list, s.err
}

func exportFixture() *ExportService {
	record, _, _ := NormalizeSubmission(fullSubmission(models.SurveyTypeEmployer, "acme", "no"))
	record.Meta().CreatedAt = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	list := &models.SurveyList{Surveys: []models.AggregatedSurveyView{ProjectSurvey(record)}}
	svc := NewExportService(staticLister{list: list}, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportCSV(t *testing.T) {
	file, err := exportFixture().Export(context.Background(), "CSV", models.SurveyFilter{})
	require.NoError(t, err)
	assert.Equal(t, "surveys_20240502_100000.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Equal(t, 1, file.Count)

	rows, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "Employer_acme", rows[1][0])
	assert.Equal(t, "2024-05-01T09:30:00Z", rows[1][3])
	assert.Contains(t, rows[1][8], "Reasons for Not Hiring: Reasons for Not Hiring answer")
}

func TestExportPDF(t *testing.T) {
	file, err := exportFixture().Export(context.Background(), "pdf", models.SurveyFilter{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportRejectsUnknownFormatAndPropagatesErrors(t *testing.T) {
	_, err := exportFixture().Export(context.Background(), "xlsx", models.SurveyFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	failing := NewExportService(staticLister{err: appErrors.Clone(appErrors.ErrStorageUnavailable, "")}, nil)
	_, err = failing.Export(context.Background(), "csv", models.SurveyFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrStorageUnavailable))
}
