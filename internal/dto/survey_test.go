package dto

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/survey-api/internal/models"
)

func TestAdminSurveyQueryFilter(t *testing.T) {
	filter, err := AdminSurveyQuery{From: "2024-03-01", To: "2024-03-02"}.Filter()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *filter.From)
	assert.True(t, filter.Matches(time.Date(2024, 3, 2, 23, 59, 0, 0, time.UTC)))
	assert.False(t, filter.Matches(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)))

	filter, err = AdminSurveyQuery{To: "2024-03-02T10:00:00Z"}.Filter()
	require.NoError(t, err)
	assert.Nil(t, filter.From)
	assert.False(t, filter.Matches(time.Date(2024, 3, 2, 10, 0, 1, 0, time.UTC)))

	_, err = AdminSurveyQuery{From: "yesterday"}.Filter()
	assert.Error(t, err)
	_, err = AdminSurveyQuery{From: "2024-03-02", To: "2024-03-01"}.Filter()
	assert.Error(t, err)
}

func TestAdminSurveyQueryPaginate(t *testing.T) {
	views := make([]models.AggregatedSurveyView, 45)
	for i := range views {
		views[i].ID = fmt.Sprintf("Student_u%d", i)
	}

	page, meta := AdminSurveyQuery{}.Paginate(views)
	assert.Len(t, page, 20)
	assert.Equal(t, models.Pagination{Page: 1, PageSize: 20, TotalCount: 45}, *meta)

	page, meta = AdminSurveyQuery{Page: 3, PageSize: 20}.Paginate(views)
	assert.Len(t, page, 5)
	assert.Equal(t, "Student_u40", page[0].ID)

	page, _ = AdminSurveyQuery{Page: 9}.Paginate(views)
	assert.Empty(t, page)

	_, meta = AdminSurveyQuery{PageSize: 1000}.Paginate(views)
	assert.Equal(t, 100, meta.PageSize)
}
