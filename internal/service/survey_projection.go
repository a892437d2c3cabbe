package service

import (
	"github.com/noah-isme/survey-api/internal/models"
)

// ProjectSurvey builds the display view of a stored record. Custom questions
// are the visible non-headline answers for the stored branch, in schema
// order; a stored branch that is not yes/no shows no follow-ups.
func ProjectSurvey(record models.SurveyRecord) models.AggregatedSurveyView {
	schema, _ := models.SchemaFor(record.SurveyType())
	meta := record.Meta()

	view := models.AggregatedSurveyView{
		ID:            models.SurveyID(record.SurveyType(), meta.UserName),
		UserName:      meta.UserName,
		SurveyType:    record.SurveyType(),
		CreatedAt:     meta.CreatedAt,
		ImageURL:      meta.ImageURL,
		ImagePublicID: meta.ImagePublicID,
	}

	headline := schema.Headline()
	view.Question1 = stringValue(record.Answer(headline[0].ID))
	view.Question2 = stringValue(record.Answer(headline[1].ID))
	view.Question3 = stringValue(record.Answer(headline[2].ID))

	var branch models.Branch
	if selected := record.Answer(schema.Selector().ID); selected != nil {
		branch, _ = models.ParseBranch(*selected)
	}
	view.CustomQuestions = canonicalAnswers(schema.Visible(branch), record)

	return view
}

// ProjectSurveys projects every record.
func ProjectSurveys(records []models.SurveyRecord) []models.AggregatedSurveyView {
	views := make([]models.AggregatedSurveyView, 0, len(records))
	for _, record := range records {
		views = append(views, ProjectSurvey(record))
	}
	return views
}

func stringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
