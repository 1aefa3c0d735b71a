package session

import (
	"context"

	"github.com/google/uuid"
)

// Ledger upserts per-question answers for an attempt and enforces the
// submission lock: once an attempt has entered submission, no answer write
// for it is accepted.
type Ledger struct {
	store Store
	locks *attemptLocks
}

func NewLedger(store Store, locks *attemptLocks) *Ledger {
	if locks == nil {
		locks = newAttemptLocks()
	}
	return &Ledger{store: store, locks: locks}
}

// RecordAnswer creates or replaces the answer for (attemptID, questionID).
// Repeated calls with identical arguments converge to the same stored
// state, so a flaky client can retry safely.
func (g *Ledger) RecordAnswer(ctx context.Context, attemptID, questionID string, userAnswer *string, markedForReview bool) (Answer, error) {
	if attemptID == "" {
		return Answer{}, invalid("attempt_id", "required")
	}
	if questionID == "" {
		return Answer{}, invalid("question_id", "required")
	}

	unlock := g.locks.lock(attemptID)
	defer unlock()

	a, err := g.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return Answer{}, err
	}
	if a.IsSubmitted {
		return Answer{}, ErrSubmissionLocked
	}

	// Scoring would simply never match an answer to an unknown question,
	// but reject it here so the client learns about the bad id.
	questions, err := g.store.GetQuestionsForExam(ctx, a.ExamID)
	if err != nil {
		return Answer{}, err
	}
	known := false
	for _, q := range questions {
		if q.ID == questionID {
			known = true
			break
		}
	}
	if !known {
		return Answer{}, ErrQuestionNotInExam
	}

	return g.store.UpsertAnswer(ctx, Answer{
		ID:                uuid.NewString(),
		AttemptID:         attemptID,
		QuestionID:        questionID,
		UserAnswer:        userAnswer,
		IsMarkedForReview: markedForReview,
	})
}
