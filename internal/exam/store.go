package exam

import "context"

type ListOpts struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Store is the authoring surface: exam/question CRUD used by the admin API.
// The attempt engine reads exams through its own narrower gateway.
type Store interface {
	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error)
	UpdateExam(ctx context.Context, id string, p Patch) (Exam, error)
	DeleteExam(ctx context.Context, id string) (bool, error)
	ListExams(ctx context.Context, opts ListOpts) ([]Exam, error)

	SaveQuestion(ctx context.Context, q Question) error
	GetQuestionsForExam(ctx context.Context, examID string) ([]Question, error)
}
