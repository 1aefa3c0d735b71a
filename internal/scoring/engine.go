package scoring

import "math"

// Question is a minimal view of an exam question needed for scoring.
type Question struct {
	ID            string
	CorrectAnswer string
	Points        int
}

// Response is a student's stored answer to one question. UserAnswer is nil
// when the student saved a blank (e.g. cleared a previous choice).
type Response struct {
	QuestionID string
	UserAnswer *string
}

// Outcome is the per-question grading verdict.
type Outcome struct {
	QuestionID    string
	UserAnswer    *string
	CorrectAnswer string
	Answered      bool
	IsCorrect     bool
}

// Result is the outcome of grading a whole attempt.
//
// Correct counts exactly-matching questions and is the headline score.
// WeightedPoints/MaxPoints carry the per-question points totals for callers
// that want them; they never replace Correct.
type Result struct {
	Correct        int
	Total          int
	WeightedPoints int
	MaxPoints      int
	PerQuestion    []Outcome
}

// Grade walks every question of the exam, not every response: unanswered
// questions show up in PerQuestion as incorrect rather than being omitted.
// Matching is case-sensitive, whitespace-exact string equality.
// Deterministic and side-effect-free.
func Grade(questions []Question, responses []Response) Result {
	byQuestion := make(map[string]Response, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}

	res := Result{
		Total:       len(questions),
		PerQuestion: make([]Outcome, 0, len(questions)),
	}
	for _, q := range questions {
		out := Outcome{QuestionID: q.ID, CorrectAnswer: q.CorrectAnswer}
		if r, ok := byQuestion[q.ID]; ok && r.UserAnswer != nil {
			out.UserAnswer = r.UserAnswer
			out.Answered = true
			out.IsCorrect = *r.UserAnswer == q.CorrectAnswer
		}
		if out.IsCorrect {
			res.Correct++
			res.WeightedPoints += q.Points
		}
		res.MaxPoints += q.Points
		res.PerQuestion = append(res.PerQuestion, out)
	}
	return res
}

// Percentage is round(100*correct/total); 0 when the exam has no questions.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
