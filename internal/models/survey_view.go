package models

import "time"

// AggregatedSurveyView is the display shape shared by both survey types.
type AggregatedSurveyView struct {
	ID              string            `json:"id"`
	UserName        string            `json:"user_name"`
	SurveyType      SurveyType        `json:"survey_type"`
	CreatedAt       time.Time         `json:"created_at"`
	ImageURL        *string           `json:"image_url"`
	ImagePublicID   *string           `json:"image_public_id"`
	Question1       string            `json:"question1"`
	Question2       string            `json:"question2"`
	Question3       string            `json:"question3"`
	CustomQuestions []CanonicalAnswer `json:"custom_questions"`
}

// SurveyFilter narrows the admin listing to a created_at window. Both bounds
// are inclusive.
type SurveyFilter struct {
	From *time.Time
	To   *time.Time
}

// Matches reports whether createdAt falls inside the window.
func (f SurveyFilter) Matches(createdAt time.Time) bool {
	if f.From != nil && createdAt.Before(*f.From) {
		return false
	}
	if f.To != nil && createdAt.After(*f.To) {
		return false
	}
	return true
}

// SurveyList is the result of a listing across survey types. Degraded is
// set when some sources failed and FailedSources names them.
type SurveyList struct {
	Surveys       []AggregatedSurveyView `json:"surveys"`
	Degraded      bool                   `json:"degraded"`
	FailedSources []SurveyType           `json:"failed_sources,omitempty"`
	CacheHit      bool                   `json:"-"`
}

// UserStats aggregates the submissions of one respondent.
type UserStats struct {
	Total          int                `json:"total"`
	ByType         map[SurveyType]int `json:"by_type"`
	LastSubmission time.Time          `json:"last_submission"`
}

// AdminStats summarises every stored survey.
type AdminStats struct {
	TotalSurveys          int                    `json:"total_surveys"`
	TotalUsers            int                    `json:"total_users"`
	UserStats             map[string]UserStats   `json:"user_stats"`
	TypeStats             map[SurveyType]int     `json:"type_stats"`
	RecentSurveys         []AggregatedSurveyView `json:"recent_surveys"`
	AverageSurveysPerUser float64                `json:"average_surveys_per_user"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// AdminOverview is the admin dashboard payload.
type AdminOverview struct {
	Stats         AdminStats             `json:"stats"`
	Surveys       []AggregatedSurveyView `json:"surveys"`
	Degraded      bool                   `json:"-"`
	FailedSources []SurveyType           `json:"-"`
	CacheHit      bool                   `json:"-"`
}

// SubmissionResult is returned after a survey has been stored.
type SubmissionResult struct {
	Survey  AggregatedSurveyView `json:"survey"`
	Record  SurveyRecord         `json:"record"`
	Answers []CanonicalAnswer    `json:"answers"`
}
