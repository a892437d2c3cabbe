package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/survey-api/internal/middleware"
	"github.com/noah-isme/survey-api/internal/models"
	"github.com/noah-isme/survey-api/internal/repository"
	"github.com/noah-isme/survey-api/internal/service"
	"github.com/noah-isme/survey-api/pkg/objectstore"
	"github.com/noah-isme/survey-api/pkg/storage"
)

var pngHeader = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 24)...)

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      map[string]interface{} `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type testServer struct {
	router *gin.Engine
	bucket *objectstore.MemoryBucket
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bucket := objectstore.NewMemoryBucket()
	store, err := repository.NewObjectSurveyStore(bucket, "survey_platform", nil)
	require.NoError(t, err)
	metrics := service.NewMetricsService()
	instrumented := service.NewInstrumentedStore(store, metrics)
	cache := service.NewCacheService(nil, metrics, time.Minute, nil, false)
	images := service.NewImageService(storage.NewBucketImageStore(bucket, "uploads"), metrics, nil, service.ImageConfig{MaxUploadBytes: 1 << 20})
	surveys := service.NewSurveyService(instrumented, images, cache, metrics, nil, nil, service.SurveyServiceConfig{})
	index := service.NewSurveyIndexService(instrumented, cache, metrics, nil, service.SurveyIndexConfig{AllowPartialReads: true})
	auth, err := service.NewAuthService(nil, nil, service.AuthConfig{Secret: "test-secret", Expiry: time.Hour, AdminPassword: "letmein"})
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Metrics: metrics,
		Tokens:  auth,
		Limiter: middleware.NewRateLimiter(100, time.Minute),
	}, Handlers{
		Surveys: NewSurveyHandler(surveys, index),
		Images:  NewImageHandler(images),
		Auth:    NewAuthHandler(auth),
		Admin:   NewAdminHandler(surveys, index, service.NewExportService(index, nil), metrics),
		Metrics: NewMetricsHandler(metrics, map[string]Pinger{"surveys": store}),
	})
	return &testServer{router: router, bucket: bucket}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func submission(surveyType models.SurveyType, userName, branch string) models.Submission {
	schema, _ := models.SchemaFor(surveyType)
	answers := map[string]string{}
	for _, q := range schema.Questions {
		if q.Group != models.GroupSelector {
			answers[q.FormKey()] = q.Label + " answer"
		}
	}
	return models.Submission{UserName: userName, SurveyType: string(surveyType), Branch: branch, Answers: answers}
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/api/v1/auth/admin", models.AdminLoginRequest{Password: "letmein"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login models.AdminLoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))
	return login.AccessToken
}

func TestSubmitFetchAndDeleteOwnSurvey(t *testing.T) {
	srv := newTestServer(t)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/surveys", submission(models.SurveyTypeStudent, "alice", "no"), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var result struct {
		Survey models.AggregatedSurveyView `json:"survey"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "Student_alice", result.Survey.ID)
	assert.Len(t, result.Survey.CustomQuestions, 21)

	rec, env = srv.do(t, http.MethodGet, "/api/v1/surveys?user_name=alice", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var views []models.AggregatedSurveyView
	require.NoError(t, json.Unmarshal(env.Data, &views))
	require.Len(t, views, 1)
	assert.Equal(t, false, env.Meta["degraded"])
	assert.Equal(t, false, env.Meta["cache_hit"])

	rec, env = srv.do(t, http.MethodDelete, "/api/v1/surveys/Student_alice?user_name=bob", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", env.Error["code"])

	rec, _ = srv.do(t, http.MethodDelete, "/api/v1/surveys/Student_alice?user_name=alice", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	_, env = srv.do(t, http.MethodGet, "/api/v1/surveys?user_name=alice", nil, "")
	require.NoError(t, json.Unmarshal(env.Data, &views))
	assert.Empty(t, views)
}

func TestSubmitRejectsInvalidPayloads(t *testing.T) {
	srv := newTestServer(t)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/surveys", models.Submission{UserName: "bob", SurveyType: "Volunteer", Branch: "yes"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_SURVEY_TYPE", env.Error["code"])

	sub := submission(models.SurveyTypeEmployer, "acme", "sometimes")
	rec, env = srv.do(t, http.MethodPost, "/api/v1/surveys", sub, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error["code"])

	rec, _ = srv.do(t, http.MethodGet, "/api/v1/surveys", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMultipartSubmitStoresImage(t *testing.T) {
	srv := newTestServer(t)

	payload, err := json.Marshal(submission(models.SurveyTypeEmployer, "acme", "yes"))
	require.NoError(t, err)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("payload", string(payload)))
	part, err := writer.CreateFormFile("image", "logo.png")
	require.NoError(t, err)
	_, err = part.Write(pngHeader)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/surveys/multipart", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec, env := srv.serve(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result struct {
		Survey models.AggregatedSurveyView `json:"survey"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.NotNil(t, result.Survey.ImagePublicID)
	_, err = srv.bucket.Get(req.Context(), "uploads/"+*result.Survey.ImagePublicID)
	assert.NoError(t, err)
}

func TestImageUploadRequiresFile(t *testing.T) {
	srv := newTestServer(t)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("note", "no file"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec, env := srv.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error["code"])
}

func TestAdminPortal(t *testing.T) {
	srv := newTestServer(t)
	for _, sub := range []models.Submission{
		submission(models.SurveyTypeStudent, "alice", "yes"),
		submission(models.SurveyTypeEmployer, "alice", "no"),
		submission(models.SurveyTypeEmployer, "acme", "yes"),
	} {
		rec, _ := srv.do(t, http.MethodPost, "/api/v1/surveys", sub, "")
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, _ := srv.do(t, http.MethodGet, "/api/v1/admin/stats", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, env := srv.do(t, http.MethodPost, "/api/v1/auth/admin", models.AdminLoginRequest{Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error["code"])

	token := srv.adminToken(t)

	rec, env = srv.do(t, http.MethodGet, "/api/v1/admin/stats", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var overview models.AdminOverview
	require.NoError(t, json.Unmarshal(env.Data, &overview))
	assert.Equal(t, 3, overview.Stats.TotalSurveys)
	assert.Equal(t, 2, overview.Stats.TotalUsers)
	assert.Equal(t, 1.5, overview.Stats.AverageSurveysPerUser)

	rec, env = srv.do(t, http.MethodGet, "/api/v1/admin/surveys?page=2&page_size=2", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, models.Pagination{Page: 2, PageSize: 2, TotalCount: 3}, *env.Pagination)

	rec, env = srv.do(t, http.MethodGet, "/api/v1/admin/surveys?from=last-week", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error["code"])

	rec, _ = srv.do(t, http.MethodGet, "/api/v1/admin/surveys/export?format=csv", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Equal(t, "3", rec.Header().Get("X-Survey-Count"))
	assert.Contains(t, rec.Body.String(), "Employer_acme")

	rec, env = srv.do(t, http.MethodPost, "/api/v1/admin/surveys/reindex", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var reindexed struct {
		Indexed map[models.SurveyType]int `json:"indexed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &reindexed))
	assert.Equal(t, 2, reindexed.Indexed[models.SurveyTypeEmployer])

	rec, _ = srv.do(t, http.MethodDelete, "/api/v1/admin/surveys/Employer_acme", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, env = srv.do(t, http.MethodDelete, "/api/v1/admin/surveys/Employer_acme", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error["code"])

	rec, env = srv.do(t, http.MethodGet, "/api/v1/admin/metrics", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot service.MetricsSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Equal(t, uint64(2), snapshot.Submissions[models.SurveyTypeEmployer])
}

func TestOpsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := srv.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = srv.do(t, http.MethodGet, "/ready", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"surveys":"ok"`)

	rec, _ = srv.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
