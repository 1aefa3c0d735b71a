package session

import (
	"context"
	"time"

	"github.com/examgate/examgate/internal/exam"
)

// Store is the storage gateway the attempt engine runs against. Exams and
// questions are read-only here; the authoring API owns their lifecycle.
//
// GetExam reports ErrExamUnavailable for an unknown id, and attempt lookups
// report ErrAttemptNotFound, so callers never see driver-level not-found
// errors.
type Store interface {
	GetExam(ctx context.Context, id string) (exam.Exam, error)
	CountQuestionsForExam(ctx context.Context, examID string) (int, error)
	// GetQuestionsForExam returns questions ordered by order_index ascending.
	GetQuestionsForExam(ctx context.Context, examID string) ([]exam.Question, error)

	CreateAttempt(ctx context.Context, a Attempt) error
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	FindAttemptForStudent(ctx context.Context, examID, userID string) (Attempt, bool, error)

	// FinalizeAttempt records the submission outcome: score, submitted_at,
	// is_submitted=true, plus per-answer correctness flags. It is a
	// compare-and-set on is_submitted=false and returns applied=false when
	// the attempt was already submitted, leaving the stored state untouched.
	FinalizeAttempt(ctx context.Context, attemptID string, submittedAt time.Time, score int, correctness map[string]bool) (applied bool, err error)

	// UpsertAnswer replaces the answer for (a.AttemptID, a.QuestionID) or
	// creates it; an existing row keeps its id.
	UpsertAnswer(ctx context.Context, a Answer) (Answer, error)
	GetAnswersForAttempt(ctx context.Context, attemptID string) ([]Answer, error)
}

// Reports is the optional read surface for dashboards and results listings.
type Reports interface {
	ListAttemptsForExam(ctx context.Context, examID string) ([]Attempt, error)
	ListAttemptsForUser(ctx context.Context, userID string) ([]Attempt, error)
}
