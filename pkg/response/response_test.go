package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/survey-api/pkg/errors"
)

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, appErrors.WrapAs(errors.New("dial tcp"), appErrors.ErrStorageUnavailable, "failed to save survey"))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "STORAGE_UNAVAILABLE", body["error"]["code"])
	assert.Equal(t, "failed to save survey", body["error"]["message"])
	assert.Equal(t, float64(503), body["error"]["status"])
}

func TestJSONWithMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	JSON(c, http.StatusOK, []string{"a"}, nil, map[string]interface{}{"degraded": true})

	var body Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body.Meta["degraded"])
	assert.Nil(t, body.Pagination)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestErrorRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	Error(c, appErrors.Clone(appErrors.ErrStorageUnavailable, "student surveys unavailable"))
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Header("Retry-After", "30")
	Error(c, appErrors.Clone(appErrors.ErrRateLimited, "slow down"))
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	Error(c, appErrors.Clone(appErrors.ErrValidation, "user_name is required"))
	assert.Empty(t, rec.Header().Get("Retry-After"))
}

func TestAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Attachment(c, "surveys 2024.csv", "text/csv; charset=utf-8", []byte("id\n"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="surveys 2024.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "id\n", rec.Body.String())
}
