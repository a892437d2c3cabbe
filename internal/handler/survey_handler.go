package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/survey-api/internal/dto"
	"github.com/noah-isme/survey-api/internal/models"
	"github.com/noah-isme/survey-api/internal/service"
	appErrors "github.com/noah-isme/survey-api/pkg/errors"
	"github.com/noah-isme/survey-api/pkg/response"
)

type surveyWriter interface {
	Submit(ctx context.Context, sub models.Submission) (*models.SubmissionResult, error)
	SubmitWithImage(ctx context.Context, sub models.Submission, upload service.ImageUpload) (*models.SubmissionResult, error)
	Delete(ctx context.Context, req service.DeleteSurveyRequest) (*models.AggregatedSurveyView, error)
}

type surveyReader interface {
	ListByUser(ctx context.Context, userName string) (*models.SurveyList, error)
}

// SurveyHandler serves the respondent-facing survey endpoints.
type SurveyHandler struct {
	surveys surveyWriter
	index   surveyReader
}

// NewSurveyHandler constructs a survey handler.
func NewSurveyHandler(surveys surveyWriter, index surveyReader) *SurveyHandler {
	return &SurveyHandler{surveys: surveys, index: index}
}

// Submit godoc
// @Summary Submit a survey
// @Description Normalizes the answers and upserts the survey for (survey_type, user_name)
// @Tags Surveys
// @Accept json
// @Produce json
// @Param payload body models.Submission true "Survey submission"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /surveys [post]
func (h *SurveyHandler) Submit(c *gin.Context) {
	var sub models.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid survey payload"))
		return
	}
	result, err := h.surveys.Submit(c.Request.Context(), sub)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// SubmitMultipart godoc
// @Summary Submit a survey with an image
// @Description Uploads the image and stores the survey. Nothing is stored when the upload fails.
// @Tags Surveys
// @Accept mpfd
// @Produce json
// @Param payload formData string true "Survey submission as JSON"
// @Param image formData file false "Image file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /surveys/multipart [post]
func (h *SurveyHandler) SubmitMultipart(c *gin.Context) {
	var sub models.Submission
	if err := json.Unmarshal([]byte(c.PostForm("payload")), &sub); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload must be a JSON survey submission"))
		return
	}

	upload, closeFile, err := imageFromForm(c)
	if errors.Is(err, errNoImage) {
		result, err := h.surveys.Submit(c.Request.Context(), sub)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, result)
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()

	result, err := h.surveys.SubmitWithImage(c.Request.Context(), sub, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListByUser godoc
// @Summary List a respondent's surveys
// @Tags Surveys
// @Produce json
// @Param user_name query string true "Respondent user name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /surveys [get]
func (h *SurveyHandler) ListByUser(c *gin.Context) {
	var query dto.SurveyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	start := time.Now()
	list, err := h.index.ListByUser(c.Request.Context(), query.UserName)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := listingMeta(c, start, list.CacheHit, list.Degraded, list.FailedSources)
	response.JSON(c, http.StatusOK, list.Surveys, nil, meta)
}

// Delete godoc
// @Summary Delete one's own survey
// @Tags Surveys
// @Produce json
// @Param id path string true "Survey id, e.g. Student_alice"
// @Param user_name query string true "Respondent user name"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /surveys/{id} [delete]
func (h *SurveyHandler) Delete(c *gin.Context) {
	var query dto.DeleteSurveyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	view, err := h.surveys.Delete(c.Request.Context(), service.DeleteSurveyRequest{ID: c.Param("id"), UserName: query.UserName})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
