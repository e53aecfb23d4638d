package questionnaire

import "github.com/aretw0/questionnaire/pkg/domain"

// DemoQuestions returns the sample questionnaire used by `questions seed`.
func DemoQuestions() []domain.Draft {
	return []domain.Draft{
		{Text: "What is your favorite color?", Kind: domain.KindText},
		{Text: "Select your age range", Kind: domain.KindMultipleChoice, Options: []string{"Under 18", "18-25", "26-35", "35+"}},
		{Text: "What is your favorite hobby?", Kind: domain.KindText},
	}
}
