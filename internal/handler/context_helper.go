package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/survey-api/internal/middleware"
	"github.com/noah-isme/survey-api/internal/models"
	"github.com/noah-isme/survey-api/internal/service"
	appErrors "github.com/noah-isme/survey-api/pkg/errors"
)

const imageField = "image"

var errNoImage = errors.New("no image attached")

// listingMeta records cache and degradation state for a survey listing.
func listingMeta(c *gin.Context, start time.Time, cacheHit, degraded bool, failed []models.SurveyType) map[string]interface{} {
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetDegraded(c, degraded, failed)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	return meta
}

// imageFromForm opens the multipart image field. errNoImage is returned
// when the field is absent. The caller closes the returned file.
func imageFromForm(c *gin.Context) (service.ImageUpload, func(), error) {
	fileHeader, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return service.ImageUpload{}, nil, errNoImage
		}
		return service.ImageUpload{}, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid multipart form")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return service.ImageUpload{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	upload := service.ImageUpload{Filename: fileHeader.Filename, Size: fileHeader.Size, Reader: src}
	return upload, func() { _ = src.Close() }, nil
}
