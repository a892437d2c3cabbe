package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/survey-api/internal/models"
	appErrors "github.com/noah-isme/survey-api/pkg/errors"
)

func TestNormalizeStudentYesBranch(t *testing.T) {
	record, answers, err := NormalizeSubmission(fullSubmission(models.SurveyTypeStudent, " alice ", "Y"))
	require.NoError(t, err)

	assert.Equal(t, "alice", record.Meta().UserName)
	require.NotNil(t, record.Answer("s_q23_current_employment_status"))
	assert.Equal(t, "yes", *record.Answer("s_q23_current_employment_status"))
	assert.NotNil(t, record.Answer("s_q24_job_duration"))
	assert.Nil(t, record.Answer("s_q15_left_job_reason"))
	assert.NotNil(t, record.Answer("s_q29_advice_for_others"))
	assert.Len(t, answers, 21)
	assert.Equal(t, models.CanonicalAnswer{Question: "Name", Answer: "Name answer"}, answers[0])
}

func TestNormalizeEmployerNoBranchFromAnswers(t *testing.T) {
	sub := fullSubmission(models.SurveyTypeEmployer, "acme", "")
	sub.SurveyType = "employer"
	sub.Answers["branch"] = "No"

	record, answers, err := NormalizeSubmission(sub)
	require.NoError(t, err)
	assert.Equal(t, models.SurveyTypeEmployer, record.SurveyType())
	for _, col := range []string{"e_q5_candidates_suitable", "e_q6_num_yp_candidates", "e_q7_motivation_hiring", "e_q8_onboarding_rating"} {
		assert.Nil(t, record.Answer(col), col)
	}
	assert.NotNil(t, record.Answer("e_q9_reasons_not_hiring"))
	assert.NotNil(t, record.Answer("e_q12_supervision_support"))
	assert.Len(t, answers, 8)
}

func TestNormalizeBlankAnswersBecomeNil(t *testing.T) {
	sub := fullSubmission(models.SurveyTypeStudent, "alice", "no")
	sub.Answers["alwaysQuestion_1"] = "   "
	delete(sub.Answers, "customQuestionNo_8")
	sub.ImageURL = " "

	record, _, err := NormalizeSubmission(sub)
	require.NoError(t, err)
	assert.Nil(t, record.Answer("s_q4_place_of_origin"))
	assert.Nil(t, record.Answer("s_q22_cultural_challenges"))
	assert.Nil(t, record.Meta().ImageURL)
}

func TestNormalizeRejectsInvalidInput(t *testing.T) {
	_, _, err := NormalizeSubmission(models.Submission{UserName: "bob", SurveyType: "Volunteer", Branch: "yes"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidSurveyType))

	sub := fullSubmission(models.SurveyTypeStudent, "  ", "maybe")
	delete(sub.Answers, "question2")
	_, _, err = NormalizeSubmission(sub)
	require.True(t, errors.Is(err, appErrors.ErrValidation))
	appErr := appErrors.FromError(err)
	assert.Contains(t, appErr.Message, "user_name is required")
	assert.Contains(t, appErr.Message, `branch "maybe" must be yes or no`)
	assert.Contains(t, appErr.Message, "question2 (Gender) is required")
}

func TestNormalizeProjectRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		surveyType models.SurveyType
		branch     models.Branch
	}{
		{models.SurveyTypeStudent, models.BranchYes},
		{models.SurveyTypeStudent, models.BranchNo},
		{models.SurveyTypeEmployer, models.BranchYes},
		{models.SurveyTypeEmployer, models.BranchNo},
	} {
		sub := fullSubmission(tc.surveyType, "user", string(tc.branch))
		record, _, err := NormalizeSubmission(sub)
		require.NoError(t, err)

		view := ProjectSurvey(record)
		schema, _ := models.SchemaFor(tc.surveyType)
		assert.Equal(t, sub.Answers["question1"], view.Question1)
		assert.Equal(t, sub.Answers["question2"], view.Question2)
		assert.Equal(t, sub.Answers["question3"], view.Question3)
		assert.Len(t, view.CustomQuestions, len(schema.Visible(tc.branch)), "%s/%s", tc.surveyType, tc.branch)
	}
}

func TestProjectUnknownStoredBranchShowsOnlyAlwaysQuestions(t *testing.T) {
	record, _, err := NormalizeSubmission(fullSubmission(models.SurveyTypeEmployer, "acme", "yes"))
	require.NoError(t, err)
	legacy := "Perhaps"
	record.SetAnswer("e_q4_hired_yp_students", &legacy)

	view := ProjectSurvey(record)
	labels := make([]string, 0, len(view.CustomQuestions))
	for _, answer := range view.CustomQuestions {
		labels = append(labels, answer.Question)
	}
	assert.Equal(t, []string{"Hired YP Students", "Selection Challenges", "Supervision Support"}, labels)
}
