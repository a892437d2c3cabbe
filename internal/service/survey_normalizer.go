package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/survey-api/internal/models"
	appErrors "github.com/noah-isme/survey-api/pkg/errors"
)

// NormalizeSubmission turns a flat form submission into a fixed-column
// record and the ordered list of labelled answers it contains. Every column
// of the survey table is set; blank answers and follow-ups of the branch not
// taken are nil. The function has no side effects.
func NormalizeSubmission(sub models.Submission) (models.SurveyRecord, []models.CanonicalAnswer, error) {
	surveyType, ok := models.ParseSurveyType(sub.SurveyType)
	if !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidSurveyType, fmt.Sprintf("survey type %q is not supported; use Student or Employer", sub.SurveyType))
	}
	schema, _ := models.SchemaFor(surveyType)
	record, _ := models.NewSurveyRecord(surveyType)

	var problems []string
	userName := strings.TrimSpace(sub.UserName)
	if userName == "" {
		problems = append(problems, "user_name is required")
	}

	rawBranch := sub.Branch
	if strings.TrimSpace(rawBranch) == "" {
		rawBranch = sub.Answers[schema.Selector().FormKey()]
	}
	branch, ok := models.ParseBranch(rawBranch)
	if !ok {
		problems = append(problems, fmt.Sprintf("branch %q must be yes or no", rawBranch))
	}

	for _, q := range schema.Questions {
		switch q.Group {
		case models.GroupSelector:
			if ok {
				value := string(branch)
				record.SetAnswer(q.ID, &value)
			} else {
				record.SetAnswer(q.ID, nil)
			}
		case models.GroupHeadline:
			value := optionalAnswer(sub.Answers[q.FormKey()])
			if q.Required && value == nil {
				problems = append(problems, fmt.Sprintf("%s (%s) is required", q.FormKey(), q.Label))
			}
			record.SetAnswer(q.ID, value)
		default:
			if q.VisibleFor(branch) {
				record.SetAnswer(q.ID, optionalAnswer(sub.Answers[q.FormKey()]))
			} else {
				record.SetAnswer(q.ID, nil)
			}
		}
	}

	if len(problems) > 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, strings.Join(problems, "; "))
	}

	meta := record.Meta()
	meta.UserName = userName
	meta.ImageURL = optionalAnswer(sub.ImageURL)
	meta.ImagePublicID = optionalAnswer(sub.ImagePublicID)

	return record, canonicalAnswers(schema.Questions, record), nil
}

// canonicalAnswers lists the non-blank answers of record for questions, in
// the given order.
func canonicalAnswers(questions []models.QuestionDescriptor, record models.SurveyRecord) []models.CanonicalAnswer {
	answers := make([]models.CanonicalAnswer, 0, len(questions))
	for _, q := range questions {
		value := record.Answer(q.ID)
		if value == nil || strings.TrimSpace(*value) == "" {
			continue
		}
		answers = append(answers, models.CanonicalAnswer{Question: q.Label, Answer: *value})
	}
	return answers
}

func optionalAnswer(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
