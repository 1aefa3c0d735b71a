package scoring

import "testing"

func strptr(s string) *string { return &s }

func TestGrade(t *testing.T) {
	questions := []Question{
		{ID: "q1", CorrectAnswer: "A", Points: 1},
		{ID: "q2", CorrectAnswer: "True", Points: 2},
		{ID: "q3", CorrectAnswer: "Paris", Points: 3},
	}

	tests := []struct {
		name        string
		responses   []Response
		wantCorrect int
		wantPoints  int
	}{
		{
			name: "mixed outcome",
			responses: []Response{
				{QuestionID: "q1", UserAnswer: strptr("A")},
				{QuestionID: "q2", UserAnswer: strptr("False")},
				{QuestionID: "q3", UserAnswer: strptr("paris")},
			},
			wantCorrect: 1,
			wantPoints:  1,
		},
		{
			name: "all correct",
			responses: []Response{
				{QuestionID: "q1", UserAnswer: strptr("A")},
				{QuestionID: "q2", UserAnswer: strptr("True")},
				{QuestionID: "q3", UserAnswer: strptr("Paris")},
			},
			wantCorrect: 3,
			wantPoints:  6,
		},
		{
			name:        "nothing answered",
			responses:   nil,
			wantCorrect: 0,
			wantPoints:  0,
		},
		{
			name: "nil answer is unanswered",
			responses: []Response{
				{QuestionID: "q1", UserAnswer: nil},
				{QuestionID: "q2", UserAnswer: strptr("True")},
			},
			wantCorrect: 1,
			wantPoints:  2,
		},
		{
			name: "case sensitive match",
			responses: []Response{
				{QuestionID: "q1", UserAnswer: strptr("a")},
			},
			wantCorrect: 0,
			wantPoints:  0,
		},
		{
			name: "response to unknown question is ignored",
			responses: []Response{
				{QuestionID: "ghost", UserAnswer: strptr("A")},
			},
			wantCorrect: 0,
			wantPoints:  0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Grade(questions, tc.responses)
			if res.Correct != tc.wantCorrect {
				t.Errorf("Correct = %d, want %d", res.Correct, tc.wantCorrect)
			}
			if res.WeightedPoints != tc.wantPoints {
				t.Errorf("WeightedPoints = %d, want %d", res.WeightedPoints, tc.wantPoints)
			}
			if res.Total != len(questions) {
				t.Errorf("Total = %d, want %d", res.Total, len(questions))
			}
			if res.MaxPoints != 6 {
				t.Errorf("MaxPoints = %d, want 6", res.MaxPoints)
			}
			if len(res.PerQuestion) != len(questions) {
				t.Fatalf("PerQuestion has %d entries, want %d", len(res.PerQuestion), len(questions))
			}
		})
	}
}

func TestGradeCoversUnansweredQuestions(t *testing.T) {
	questions := []Question{
		{ID: "q1", CorrectAnswer: "A", Points: 1},
		{ID: "q2", CorrectAnswer: "B", Points: 1},
	}
	res := Grade(questions, []Response{{QuestionID: "q1", UserAnswer: strptr("A")}})

	if len(res.PerQuestion) != 2 {
		t.Fatalf("PerQuestion has %d entries, want 2", len(res.PerQuestion))
	}
	if !res.PerQuestion[0].Answered || !res.PerQuestion[0].IsCorrect {
		t.Errorf("q1 = %+v, want answered and correct", res.PerQuestion[0])
	}
	if res.PerQuestion[1].Answered || res.PerQuestion[1].IsCorrect {
		t.Errorf("q2 = %+v, want unanswered and incorrect", res.PerQuestion[1])
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 8, 13},
		{0, 5, 0},
	}
	for _, tc := range tests {
		if got := Percentage(tc.correct, tc.total); got != tc.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tc.correct, tc.total, got, tc.want)
		}
	}
}
