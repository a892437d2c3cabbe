package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/survey-api/internal/dto"
	"github.com/noah-isme/survey-api/internal/service"
	appErrors "github.com/noah-isme/survey-api/pkg/errors"
	"github.com/noah-isme/survey-api/pkg/response"
	"github.com/noah-isme/survey-api/pkg/storage"
)

type imageUploader interface {
	Upload(ctx context.Context, upload service.ImageUpload) (*storage.Image, error)
}

// ImageHandler accepts standalone image uploads.
type ImageHandler struct {
	images imageUploader
}

// NewImageHandler constructs an image handler.
func NewImageHandler(images imageUploader) *ImageHandler {
	return &ImageHandler{images: images}
}

// Upload godoc
// @Summary Upload a survey image
// @Tags Images
// @Accept mpfd
// @Produce json
// @Param image formData file true "Image file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /images [post]
func (h *ImageHandler) Upload(c *gin.Context) {
	upload, closeFile, err := imageFromForm(c)
	if errors.Is(err, errNoImage) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image file is required"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()

	image, err := h.images.Upload(c.Request.Context(), upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, dto.ImageUploadResponse{URL: image.URL, PublicID: image.PublicID}, nil)
}
