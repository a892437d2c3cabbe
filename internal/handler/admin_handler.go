package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/survey-api/internal/dto"
	"github.com/noah-isme/survey-api/internal/models"
	"github.com/noah-isme/survey-api/internal/service"
	appErrors "github.com/noah-isme/survey-api/pkg/errors"
	"github.com/noah-isme/survey-api/pkg/response"
)

type surveyAdmin interface {
	Delete(ctx context.Context, req service.DeleteSurveyRequest) (*models.AggregatedSurveyView, error)
	Reindex(ctx context.Context) (map[models.SurveyType]int, error)
}

type surveyListing interface {
	ListAll(ctx context.Context, filter models.SurveyFilter) (*models.SurveyList, error)
	AdminOverview(ctx context.Context) (*models.AdminOverview, error)
}

type surveyExporter interface {
	Export(ctx context.Context, format string, filter models.SurveyFilter) (*service.ExportFile, error)
}

// AdminHandler serves the admin portal.
type AdminHandler struct {
	surveys surveyAdmin
	index   surveyListing
	export  surveyExporter
	metrics *service.MetricsService
}

// NewAdminHandler constructs an admin handler.
func NewAdminHandler(surveys surveyAdmin, index surveyListing, export surveyExporter, metrics *service.MetricsService) *AdminHandler {
	return &AdminHandler{surveys: surveys, index: index, export: export, metrics: metrics}
}

// Stats godoc
// @Summary Admin statistics
// @Description Statistics over every survey together with the surveys
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	start := time.Now()
	overview, err := h.index.AdminOverview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := listingMeta(c, start, overview.CacheHit, overview.Degraded, overview.FailedSources)
	response.JSON(c, http.StatusOK, overview, nil, meta)
}

// ListSurveys godoc
// @Summary List all surveys
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param from query string false "Lower created_at bound (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Upper created_at bound (RFC3339 or YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/surveys [get]
func (h *AdminHandler) ListSurveys(c *gin.Context) {
	query, filter, ok := bindAdminQuery(c)
	if !ok {
		return
	}
	start := time.Now()
	list, err := h.index.ListAll(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, pagination := query.Paginate(list.Surveys)
	meta := listingMeta(c, start, list.CacheHit, list.Degraded, list.FailedSources)
	response.JSON(c, http.StatusOK, page, pagination, meta)
}

// Export godoc
// @Summary Export surveys
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Param from query string false "Lower created_at bound"
// @Param to query string false "Upper created_at bound"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/surveys/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	query, filter, ok := bindAdminQuery(c)
	if !ok {
		return
	}
	file, err := h.export.Export(c.Request.Context(), query.Format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("X-Survey-Count", strconv.Itoa(file.Count))
	if file.Degraded {
		c.Header("X-Survey-Degraded", "true")
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Delete godoc
// @Summary Delete any survey
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Survey id"
// @Param image_public_id query string false "Image to delete instead of the stored one"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/surveys/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	var query dto.DeleteSurveyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	view, err := h.surveys.Delete(c.Request.Context(), service.DeleteSurveyRequest{
		ID:            c.Param("id"),
		ImagePublicID: query.ImagePublicID,
		Admin:         true,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Reindex godoc
// @Summary Rebuild object-store indexes
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/surveys/reindex [post]
func (h *AdminHandler) Reindex(c *gin.Context) {
	counts, err := h.surveys.Reindex(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ReindexResponse{Indexed: counts}, nil)
}

// Metrics godoc
// @Summary Metrics snapshot
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/metrics [get]
func (h *AdminHandler) Metrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

func bindAdminQuery(c *gin.Context) (dto.AdminSurveyQuery, models.SurveyFilter, bool) {
	var query dto.AdminSurveyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return query, models.SurveyFilter{}, false
	}
	filter, err := query.Filter()
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return query, models.SurveyFilter{}, false
	}
	return query, filter, true
}
