package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/examgate/examgate/internal/scoring"
)

// Lifecycle owns the attempt state machine: start validation against the
// exam window, remaining-time computation, and the single submit transition.
// It is policy-agnostic; whether a student may open a second attempt is the
// facade's concern.
type Lifecycle struct {
	store Store
	now   Clock
	locks *attemptLocks
}

func NewLifecycle(store Store, now Clock, locks *attemptLocks) *Lifecycle {
	if now == nil {
		now = time.Now
	}
	if locks == nil {
		locks = newAttemptLocks()
	}
	return &Lifecycle{store: store, now: now, locks: locks}
}

// Start validates the exam window and creates a fresh attempt. The time
// granted is min(duration, time left before the exam's hard end), clamped
// to zero, so a session can never outlive the exam.
func (l *Lifecycle) Start(ctx context.Context, examID string, student StudentIdentity) (Attempt, error) {
	ex, err := l.store.GetExam(ctx, examID)
	if err != nil {
		return Attempt{}, err
	}
	if !ex.IsActive {
		return Attempt{}, ErrExamUnavailable
	}

	now := l.now()
	if now.Before(ex.StartTime) {
		return Attempt{}, ErrExamNotStarted
	}
	if now.After(ex.EndTime) {
		return Attempt{}, ErrExamEnded
	}

	total, err := l.store.CountQuestionsForExam(ctx, examID)
	if err != nil {
		return Attempt{}, fmt.Errorf("count questions: %w", err)
	}

	remaining := ex.DurationMin * 60
	if until := int(ex.EndTime.Sub(now) / time.Second); until < remaining {
		remaining = until
	}
	if remaining < 0 {
		remaining = 0
	}

	a := Attempt{
		ID:             uuid.NewString(),
		ExamID:         examID,
		UserID:         student.UserID,
		StudentName:    student.Name,
		StudentEmail:   student.Email,
		StartedAt:      now,
		TimeRemaining:  remaining,
		TotalQuestions: total,
	}
	if err := l.store.CreateAttempt(ctx, a); err != nil {
		return Attempt{}, fmt.Errorf("create attempt: %w", err)
	}
	return a, nil
}

// Submit locks the attempt, scores it, and persists the result exactly once.
// A second call reports ErrAlreadySubmitted alongside the finalized attempt
// so callers can treat the race as benign.
//
// The per-attempt lock makes submit and answer writes mutually exclusive in
// this process; the storage-level compare-and-set in FinalizeAttempt keeps
// the transition exactly-once even across processes.
func (l *Lifecycle) Submit(ctx context.Context, attemptID string) (Attempt, error) {
	if attemptID == "" {
		return Attempt{}, invalid("attempt_id", "required")
	}
	unlock := l.locks.lock(attemptID)
	defer unlock()

	a, err := l.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.IsSubmitted {
		return a, ErrAlreadySubmitted
	}

	questions, err := l.store.GetQuestionsForExam(ctx, a.ExamID)
	if err != nil {
		return Attempt{}, fmt.Errorf("load questions: %w", err)
	}
	answers, err := l.store.GetAnswersForAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, fmt.Errorf("load answers: %w", err)
	}

	res := scoring.Grade(scoringQuestions(questions), scoringResponses(answers))
	correctness := make(map[string]bool, len(res.PerQuestion))
	for _, out := range res.PerQuestion {
		correctness[out.QuestionID] = out.IsCorrect
	}

	applied, err := l.store.FinalizeAttempt(ctx, attemptID, l.now(), res.Correct, correctness)
	if err != nil {
		return Attempt{}, fmt.Errorf("finalize attempt: %w", err)
	}
	final, err := l.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if !applied {
		return final, ErrAlreadySubmitted
	}
	return final, nil
}
