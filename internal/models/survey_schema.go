package models

import "strconv"

// QuestionGroup places a question in the branching form.
type QuestionGroup string

const (
	GroupHeadline QuestionGroup = "headline"
	GroupAlways   QuestionGroup = "always"
	GroupSelector QuestionGroup = "selector"
	GroupYes      QuestionGroup = "yes"
	GroupNo       QuestionGroup = "no"
)

// QuestionDescriptor describes one column of a survey table.
type QuestionDescriptor struct {
	ID       string        `json:"id"`
	Label    string        `json:"label"`
	Group    QuestionGroup `json:"group"`
	Slot     int           `json:"slot,omitempty"`
	Index    int           `json:"index,omitempty"`
	Required bool          `json:"required"`
}

// FormKey is the submission key carrying the answer to this question.
func (d QuestionDescriptor) FormKey() string {
	switch d.Group {
	case GroupHeadline:
		return "question" + strconv.Itoa(d.Slot)
	case GroupAlways:
		return "alwaysQuestion_" + strconv.Itoa(d.Index)
	case GroupYes:
		return "customQuestion_" + strconv.Itoa(d.Index)
	case GroupNo:
		return "customQuestionNo_" + strconv.Itoa(d.Index)
	default:
		return "branch"
	}
}

// VisibleFor reports whether the question is shown for branch.
func (d QuestionDescriptor) VisibleFor(branch Branch) bool {
	switch d.Group {
	case GroupAlways, GroupSelector:
		return true
	case GroupYes:
		return branch == BranchYes
	case GroupNo:
		return branch == BranchNo
	default:
		return false
	}
}

// Schema is the ordered question list of one survey type. Order follows
// the table's column order.
type Schema struct {
	Type      SurveyType           `json:"survey_type"`
	Questions []QuestionDescriptor `json:"questions"`
}

// Headline returns the three headline questions ordered by slot.
func (s Schema) Headline() []QuestionDescriptor {
	out := make([]QuestionDescriptor, 3)
	for _, q := range s.Questions {
		if q.Group == GroupHeadline && q.Slot >= 1 && q.Slot <= 3 {
			out[q.Slot-1] = q
		}
	}
	return out
}

// Selector returns the branch selector question.
func (s Schema) Selector() QuestionDescriptor {
	for _, q := range s.Questions {
		if q.Group == GroupSelector {
			return q
		}
	}
	return QuestionDescriptor{}
}

// Visible returns the non-headline questions shown for branch, in schema
// order. An unknown branch yields only the always-shown questions and the
// selector.
func (s Schema) Visible(branch Branch) []QuestionDescriptor {
	out := make([]QuestionDescriptor, 0, len(s.Questions))
	for _, q := range s.Questions {
		if q.VisibleFor(branch) {
			out = append(out, q)
		}
	}
	return out
}

// Columns lists every question column of the table.
func (s Schema) Columns() []string {
	cols := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		cols[i] = q.ID
	}
	return cols
}

// SchemaFor returns the schema of surveyType.
func SchemaFor(surveyType SurveyType) (Schema, bool) {
	switch surveyType {
	case SurveyTypeStudent:
		return studentSchema, true
	case SurveyTypeEmployer:
		return employerSchema, true
	default:
		return Schema{}, false
	}
}

func headline(id, label string, slot int) QuestionDescriptor {
	return QuestionDescriptor{ID: id, Label: label, Group: GroupHeadline, Slot: slot, Required: true}
}

func question(id, label string, group QuestionGroup, index int) QuestionDescriptor {
	return QuestionDescriptor{ID: id, Label: label, Group: group, Index: index}
}

var studentSchema = Schema{
	Type: SurveyTypeStudent,
	Questions: []QuestionDescriptor{
		headline("s_q1_name", "Name", 1),
		headline("s_q2_gender", "Gender", 2),
		headline("s_q3_age", "Age", 3),
		question("s_q4_place_of_origin", "Place of Origin", GroupAlways, 1),
		question("s_q5_current_residence", "Current Residence", GroupAlways, 2),
		question("s_q6_year_completion", "Year of Completion", GroupAlways, 3),
		question("s_q7_education", "Education", GroupAlways, 4),
		question("s_q8_program_enrolled", "Program Enrolled", GroupAlways, 5),
		question("s_q9_motivation_enroll", "Motivation to Enroll", GroupAlways, 6),
		question("s_q10_motivation_job_market", "Motivation for Job Market", GroupAlways, 7),
		question("s_q11_career_growth", "Career Growth", GroupAlways, 8),
		question("s_q12_family_community_role", "Family and Community Role", GroupAlways, 9),
		question("s_q13_role_models", "Role Models", GroupAlways, 10),
		question("s_q14_personal_goals", "Personal Goals", GroupAlways, 11),
		question("s_q15_left_job_reason", "Reason for Leaving Job", GroupNo, 1),
		question("s_q16_work_life_balance", "Work-Life Balance", GroupNo, 2),
		question("s_q17_discrimination", "Discrimination", GroupNo, 3),
		question("s_q18_skills_match", "Skills Match", GroupNo, 4),
		question("s_q19_communication_problems", "Communication Problems", GroupNo, 5),
		question("s_q20_soft_skills_challenges", "Soft Skills Challenges", GroupNo, 6),
		question("s_q21_other_left_job_reasons", "Other Reasons for Leaving", GroupNo, 7),
		question("s_q22_cultural_challenges", "Cultural Challenges", GroupNo, 8),
		question("s_q23_current_employment_status", "Current Employment Status", GroupSelector, 0),
		question("s_q24_job_duration", "Job Duration", GroupYes, 1),
		question("s_q25_monthly_income", "Monthly Income", GroupYes, 2),
		question("s_q26_motivation_stay", "Motivation to Stay", GroupYes, 3),
		question("s_q27_job_challenges", "Job Challenges", GroupYes, 4),
		question("s_q28_overcome_challenges", "Overcoming Challenges", GroupYes, 5),
		question("s_q29_advice_for_others", "Advice for Others", GroupAlways, 12),
	},
}

var employerSchema = Schema{
	Type: SurveyTypeEmployer,
	Questions: []QuestionDescriptor{
		headline("e_q1_employer_name", "Employer Name", 1),
		headline("e_q2_person_interviewed", "Person Interviewed", 2),
		headline("e_q3_contact_details", "Contact Details", 3),
		question("e_q4_hired_yp_students", "Hired YP Students", GroupSelector, 0),
		question("e_q5_candidates_suitable", "Candidates Suitable", GroupYes, 1),
		question("e_q6_num_yp_candidates", "Number of YP Candidates", GroupYes, 2),
		question("e_q7_motivation_hiring", "Motivation for Hiring", GroupYes, 3),
		question("e_q8_onboarding_rating", "Onboarding Rating", GroupYes, 4),
		question("e_q9_reasons_not_hiring", "Reasons for Not Hiring", GroupNo, 1),
		question("e_q10_future_hiring_interest", "Future Hiring Interest", GroupNo, 2),
		question("e_q11_selection_challenges", "Selection Challenges", GroupAlways, 1),
		question("e_q12_supervision_support", "Supervision Support", GroupAlways, 2),
	},
}
