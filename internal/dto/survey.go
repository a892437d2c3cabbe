package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/survey-api/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	dateOnlyLayout  = "2006-01-02"
)

// SurveyQuery selects the surveys of one respondent.
type SurveyQuery struct {
	UserName string `form:"user_name"`
}

// DeleteSurveyQuery accompanies DELETE /surveys/:id and /admin/surveys/:id.
type DeleteSurveyQuery struct {
	UserName      string `form:"user_name"`
	ImagePublicID string `form:"image_public_id"`
}

// AdminSurveyQuery captures the admin listing and export parameters.
type AdminSurveyQuery struct {
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Format   string `form:"format"`
}

// Filter parses the date window. Bounds accept RFC3339 or YYYY-MM-DD; a
// date-only upper bound covers the whole day.
func (q AdminSurveyQuery) Filter() (models.SurveyFilter, error) {
	var filter models.SurveyFilter
	if raw := strings.TrimSpace(q.From); raw != "" {
		from, _, err := parseBound(raw)
		if err != nil {
			return filter, fmt.Errorf("from: %w", err)
		}
		filter.From = &from
	}
	if raw := strings.TrimSpace(q.To); raw != "" {
		to, dateOnly, err := parseBound(raw)
		if err != nil {
			return filter, fmt.Errorf("to: %w", err)
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, fmt.Errorf("to must not be before from")
	}
	return filter, nil
}

// Paginate slices views for the requested page.
func (q AdminSurveyQuery) Paginate(views []models.AggregatedSurveyView) ([]models.AggregatedSurveyView, *models.Pagination) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	start := (page - 1) * size
	if start > len(views) {
		start = len(views)
	}
	end := start + size
	if end > len(views) {
		end = len(views)
	}
	return views[start:end], &models.Pagination{Page: page, PageSize: size, TotalCount: len(views)}
}

func parseBound(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(dateOnlyLayout, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%q is neither RFC3339 nor YYYY-MM-DD", raw)
	}
	return t, true, nil
}

// ImageUploadResponse is returned by POST /images.
type ImageUploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// ReindexResponse reports how many surveys each index now lists.
type ReindexResponse struct {
	Indexed map[models.SurveyType]int `json:"indexed"`
}
