package models

import (
	"fmt"
	"strings"
	"time"
)

// SurveyType identifies one of the two questionnaires.
type SurveyType string

const (
	SurveyTypeStudent  SurveyType = "Student"
	SurveyTypeEmployer SurveyType = "Employer"
)

// SurveyTypes lists every supported questionnaire in display order.
var SurveyTypes = []SurveyType{SurveyTypeStudent, SurveyTypeEmployer}

// ParseSurveyType resolves a case-insensitive survey type name.
func ParseSurveyType(raw string) (SurveyType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "student":
		return SurveyTypeStudent, true
	case "employer":
		return SurveyTypeEmployer, true
	default:
		return "", false
	}
}

// Branch is the normalized answer of a branch selector question.
type Branch string

const (
	BranchYes Branch = "yes"
	BranchNo  Branch = "no"
)

// ParseBranch accepts yes/no, y/n and true/false in any case.
func ParseBranch(raw string) (Branch, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true":
		return BranchYes, true
	case "no", "n", "false":
		return BranchNo, true
	default:
		return "", false
	}
}

// SurveyID builds the public identifier "<SurveyType>_<userName>".
func SurveyID(surveyType SurveyType, userName string) string {
	return fmt.Sprintf("%s_%s", surveyType, userName)
}

// ParseSurveyID splits an identifier on its first underscore. The type
// part is matched case-insensitively; the user part may contain underscores.
func ParseSurveyID(id string) (SurveyType, string, error) {
	prefix, user, ok := strings.Cut(id, "_")
	if !ok || strings.TrimSpace(user) == "" {
		return "", "", fmt.Errorf("survey id %q must look like <type>_<user>", id)
	}
	surveyType, ok := ParseSurveyType(prefix)
	if !ok {
		return "", "", fmt.Errorf("survey id %q has unknown type %q", id, prefix)
	}
	return surveyType, user, nil
}

// SurveyMeta holds the columns shared by every survey table.
type SurveyMeta struct {
	UserName      string    `db:"user_name" json:"user_name"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	ImageURL      *string   `db:"image_url" json:"image_url"`
	ImagePublicID *string   `db:"image_public_id" json:"image_public_id"`
}

// SurveyRecord is a stored survey row of either questionnaire.
type SurveyRecord interface {
	SurveyType() SurveyType
	Meta() *SurveyMeta
	// Answer returns the value stored in column, or nil.
	Answer(column string) *string
	// SetAnswer stores value in column and reports whether the column exists.
	SetAnswer(column string, value *string) bool
}

// NewSurveyRecord returns an empty record for surveyType.
func NewSurveyRecord(surveyType SurveyType) (SurveyRecord, bool) {
	switch surveyType {
	case SurveyTypeStudent:
		return &StudentSurvey{}, true
	case SurveyTypeEmployer:
		return &EmployerSurvey{}, true
	default:
		return nil, false
	}
}

// StudentSurvey is a row of student_surveys.
type StudentSurvey struct {
	SurveyMeta
	Q1Name                    *string `db:"s_q1_name" json:"s_q1_name"`
	Q2Gender                  *string `db:"s_q2_gender" json:"s_q2_gender"`
	Q3Age                     *string `db:"s_q3_age" json:"s_q3_age"`
	Q4PlaceOfOrigin           *string `db:"s_q4_place_of_origin" json:"s_q4_place_of_origin"`
	Q5CurrentResidence        *string `db:"s_q5_current_residence" json:"s_q5_current_residence"`
	Q6YearCompletion          *string `db:"s_q6_year_completion" json:"s_q6_year_completion"`
	Q7Education               *string `db:"s_q7_education" json:"s_q7_education"`
	Q8ProgramEnrolled         *string `db:"s_q8_program_enrolled" json:"s_q8_program_enrolled"`
	Q9MotivationEnroll        *string `db:"s_q9_motivation_enroll" json:"s_q9_motivation_enroll"`
	Q10MotivationJobMarket    *string `db:"s_q10_motivation_job_market" json:"s_q10_motivation_job_market"`
	Q11CareerGrowth           *string `db:"s_q11_career_growth" json:"s_q11_career_growth"`
	Q12FamilyCommunityRole    *string `db:"s_q12_family_community_role" json:"s_q12_family_community_role"`
	Q13RoleModels             *string `db:"s_q13_role_models" json:"s_q13_role_models"`
	Q14PersonalGoals          *string `db:"s_q14_personal_goals" json:"s_q14_personal_goals"`
	Q15LeftJobReason          *string `db:"s_q15_left_job_reason" json:"s_q15_left_job_reason"`
	Q16WorkLifeBalance        *string `db:"s_q16_work_life_balance" json:"s_q16_work_life_balance"`
	Q17Discrimination         *string `db:"s_q17_discrimination" json:"s_q17_discrimination"`
	Q18SkillsMatch            *string `db:"s_q18_skills_match" json:"s_q18_skills_match"`
	Q19CommunicationProblems  *string `db:"s_q19_communication_problems" json:"s_q19_communication_problems"`
	Q20SoftSkillsChallenges   *string `db:"s_q20_soft_skills_challenges" json:"s_q20_soft_skills_challenges"`
	Q21OtherLeftJobReasons    *string `db:"s_q21_other_left_job_reasons" json:"s_q21_other_left_job_reasons"`
	Q22CulturalChallenges     *string `db:"s_q22_cultural_challenges" json:"s_q22_cultural_challenges"`
	Q23CurrentEmploymentState *string `db:"s_q23_current_employment_status" json:"s_q23_current_employment_status"`
	Q24JobDuration            *string `db:"s_q24_job_duration" json:"s_q24_job_duration"`
	Q25MonthlyIncome          *string `db:"s_q25_monthly_income" json:"s_q25_monthly_income"`
	Q26MotivationStay         *string `db:"s_q26_motivation_stay" json:"s_q26_motivation_stay"`
	Q27JobChallenges          *string `db:"s_q27_job_challenges" json:"s_q27_job_challenges"`
	Q28OvercomeChallenges     *string `db:"s_q28_overcome_challenges" json:"s_q28_overcome_challenges"`
	Q29AdviceForOthers        *string `db:"s_q29_advice_for_others" json:"s_q29_advice_for_others"`
}

func (s *StudentSurvey) SurveyType() SurveyType { return SurveyTypeStudent }

func (s *StudentSurvey) Meta() *SurveyMeta { return &s.SurveyMeta }

func (s *StudentSurvey) Answer(column string) *string {
	if field, ok := s.fields()[column]; ok {
		return *field
	}
	return nil
}

func (s *StudentSurvey) SetAnswer(column string, value *string) bool {
	field, ok := s.fields()[column]
	if ok {
		*field = value
	}
	return ok
}

func (s *StudentSurvey) fields() map[string]**string {
	return map[string]**string{
		"s_q1_name":                       &s.Q1Name,
		"s_q2_gender":                     &s.Q2Gender,
		"s_q3_age":                        &s.Q3Age,
		"s_q4_place_of_origin":            &s.Q4PlaceOfOrigin,
		"s_q5_current_residence":          &s.Q5CurrentResidence,
		"s_q6_year_completion":            &s.Q6YearCompletion,
		"s_q7_education":                  &s.Q7Education,
		"s_q8_program_enrolled":           &s.Q8ProgramEnrolled,
		"s_q9_motivation_enroll":          &s.Q9MotivationEnroll,
		"s_q10_motivation_job_market":     &s.Q10MotivationJobMarket,
		"s_q11_career_growth":             &s.Q11CareerGrowth,
		"s_q12_family_community_role":     &s.Q12FamilyCommunityRole,
		"s_q13_role_models":               &s.Q13RoleModels,
		"s_q14_personal_goals":            &s.Q14PersonalGoals,
		"s_q15_left_job_reason":           &s.Q15LeftJobReason,
		"s_q16_work_life_balance":         &s.Q16WorkLifeBalance,
		"s_q17_discrimination":            &s.Q17Discrimination,
		"s_q18_skills_match":              &s.Q18SkillsMatch,
		"s_q19_communication_problems":    &s.Q19CommunicationProblems,
		"s_q20_soft_skills_challenges":    &s.Q20SoftSkillsChallenges,
		"s_q21_other_left_job_reasons":    &s.Q21OtherLeftJobReasons,
		"s_q22_cultural_challenges":       &s.Q22CulturalChallenges,
		"s_q23_current_employment_status": &s.Q23CurrentEmploymentState,
		"s_q24_job_duration":              &s.Q24JobDuration,
		"s_q25_monthly_income":            &s.Q25MonthlyIncome,
		"s_q26_motivation_stay":           &s.Q26MotivationStay,
		"s_q27_job_challenges":            &s.Q27JobChallenges,
		"s_q28_overcome_challenges":       &s.Q28OvercomeChallenges,
		"s_q29_advice_for_others":         &s.Q29AdviceForOthers,
	}
}

// EmployerSurvey is a row of employer_surveys.
type EmployerSurvey struct {
	SurveyMeta
	Q1EmployerName         *string `db:"e_q1_employer_name" json:"e_q1_employer_name"`
	Q2PersonInterviewed    *string `db:"e_q2_person_interviewed" json:"e_q2_person_interviewed"`
	Q3ContactDetails       *string `db:"e_q3_contact_details" json:"e_q3_contact_details"`
	Q4HiredYPStudents      *string `db:"e_q4_hired_yp_students" json:"e_q4_hired_yp_students"`
	Q5CandidatesSuitable   *string `db:"e_q5_candidates_suitable" json:"e_q5_candidates_suitable"`
	Q6NumYPCandidates      *string `db:"e_q6_num_yp_candidates" json:"e_q6_num_yp_candidates"`
	Q7MotivationHiring     *string `db:"e_q7_motivation_hiring" json:"e_q7_motivation_hiring"`
	Q8OnboardingRating     *string `db:"e_q8_onboarding_rating" json:"e_q8_onboarding_rating"`
	Q9ReasonsNotHiring     *string `db:"e_q9_reasons_not_hiring" json:"e_q9_reasons_not_hiring"`
	Q10FutureHiring        *string `db:"e_q10_future_hiring_interest" json:"e_q10_future_hiring_interest"`
	Q11SelectionChallenges *string `db:"e_q11_selection_challenges" json:"e_q11_selection_challenges"`
	Q12SupervisionSupport  *string `db:"e_q12_supervision_support" json:"e_q12_supervision_support"`
}

func (e *EmployerSurvey) SurveyType() SurveyType { return SurveyTypeEmployer }

func (e *EmployerSurvey) Meta() *SurveyMeta { return &e.SurveyMeta }

func (e *EmployerSurvey) Answer(column string) *string {
	if field, ok := e.fields()[column]; ok {
		return *field
	}
	return nil
}

func (e *EmployerSurvey) SetAnswer(column string, value *string) bool {
	field, ok := e.fields()[column]
	if ok {
		*field = value
	}
	return ok
}

func (e *EmployerSurvey) fields() map[string]**string {
	return map[string]**string{
		"e_q1_employer_name":           &e.Q1EmployerName,
		"e_q2_person_interviewed":      &e.Q2PersonInterviewed,
		"e_q3_contact_details":         &e.Q3ContactDetails,
		"e_q4_hired_yp_students":       &e.Q4HiredYPStudents,
		"e_q5_candidates_suitable":     &e.Q5CandidatesSuitable,
		"e_q6_num_yp_candidates":       &e.Q6NumYPCandidates,
		"e_q7_motivation_hiring":       &e.Q7MotivationHiring,
		"e_q8_onboarding_rating":       &e.Q8OnboardingRating,
		"e_q9_reasons_not_hiring":      &e.Q9ReasonsNotHiring,
		"e_q10_future_hiring_interest": &e.Q10FutureHiring,
		"e_q11_selection_challenges":   &e.Q11SelectionChallenges,
		"e_q12_supervision_support":    &e.Q12SupervisionSupport,
	}
}

// Submission is a flat survey form as sent by respondents. Answers are keyed
// by QuestionDescriptor.FormKey.
type Submission struct {
	UserName      string            `json:"user_name" validate:"required,max=255"`
	SurveyType    string            `json:"survey_type" validate:"required"`
	Branch        string            `json:"branch"`
	ImageURL      string            `json:"image_url" validate:"max=2048"`
	ImagePublicID string            `json:"image_public_id" validate:"max=512"`
	Answers       map[string]string `json:"answers"`
}

// CanonicalAnswer is one labelled answer of a normalized survey.
type CanonicalAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
