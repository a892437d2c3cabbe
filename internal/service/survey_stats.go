package service

import (
	"sort"

	"github.com/noah-isme/survey-api/internal/models"
)

const recentSurveyLimit = 10

// BuildAdminStats summarises views. The input slice is not modified.
func BuildAdminStats(views []models.AggregatedSurveyView) models.AdminStats {
	stats := models.AdminStats{
		TotalSurveys:  len(views),
		UserStats:     make(map[string]models.UserStats),
		TypeStats:     make(map[models.SurveyType]int),
		RecentSurveys: make([]models.AggregatedSurveyView, 0),
	}

	for _, view := range views {
		user, ok := stats.UserStats[view.UserName]
		if !ok {
			user = models.UserStats{ByType: make(map[models.SurveyType]int)}
		}
		user.Total++
		user.ByType[view.SurveyType]++
		if view.CreatedAt.After(user.LastSubmission) {
			user.LastSubmission = view.CreatedAt
		}
		stats.UserStats[view.UserName] = user
		stats.TypeStats[view.SurveyType]++
	}
	stats.TotalUsers = len(stats.UserStats)

	users := stats.TotalUsers
	if users < 1 {
		users = 1
	}
	stats.AverageSurveysPerUser = float64(stats.TotalSurveys) / float64(users)

	sorted := make([]models.AggregatedSurveyView, len(views))
	copy(sorted, views)
	sortNewestFirst(sorted)
	if len(sorted) > recentSurveyLimit {
		sorted = sorted[:recentSurveyLimit]
	}
	stats.RecentSurveys = append(stats.RecentSurveys, sorted...)

	return stats
}

// sortNewestFirst orders by created_at descending, then by id.
func sortNewestFirst(views []models.AggregatedSurveyView) {
	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		}
		return views[i].ID < views[j].ID
	})
}
