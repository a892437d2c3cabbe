package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/survey-api/internal/models"
)

// userListing serves only per-respondent listings.
type userListing struct {
	lists map[string]*models.SurveyList
	asked []string
}

func (u *userListing) ListByUser(ctx context.Context, userName string) (*models.SurveyList, error) {
	u.asked = append(u.asked, userName)
	if list, ok := u.lists[userName]; ok {
		return list, nil
	}
	return &models.SurveyList{Surveys: []models.AggregatedSurveyView{}}, nil
}

func TestSurveyHandlerListsWithUserOnlyReader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	index := &userListing{lists: map[string]*models.SurveyList{
		"alice": {Surveys: []models.AggregatedSurveyView{{ID: "Student_alice"}}, CacheHit: true},
	}}
	h := NewSurveyHandler(nil, index)
	r := gin.New()
	r.GET("/surveys", h.ListByUser)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/surveys?user_name=alice", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var views []models.AggregatedSurveyView
	require.NoError(t, json.Unmarshal(env.Data, &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Student_alice", views[0].ID)
	assert.Equal(t, []string{"alice"}, index.asked)
}
