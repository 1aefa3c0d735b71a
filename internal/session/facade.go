package session

import (
	"context"
	"errors"
	"time"

	"github.com/examgate/examgate/internal/exam"
	"github.com/examgate/examgate/internal/scoring"
)

// AttemptPolicy decides whether an identity may open a new attempt on an
// exam. It is pluggable because the answer differs between anonymous and
// authenticated deployments.
type AttemptPolicy interface {
	Authorize(ctx context.Context, store Store, examID string, student StudentIdentity) error
}

// AllowMultipleAttempts places no limit, matching the simplified anonymous
// deployment.
type AllowMultipleAttempts struct{}

func (AllowMultipleAttempts) Authorize(context.Context, Store, string, StudentIdentity) error {
	return nil
}

// SingleAttemptPolicy allows one attempt per student and exam. Identities
// without a user id (anonymous) cannot be distinguished, so they pass.
type SingleAttemptPolicy struct{}

func (SingleAttemptPolicy) Authorize(ctx context.Context, store Store, examID string, student StudentIdentity) error {
	if student.UserID == "" {
		return nil
	}
	_, exists, err := store.FindAttemptForStudent(ctx, examID, student.UserID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAttemptLimit
	}
	return nil
}

// Auditor records lifecycle events. Audit failures never fail the operation.
type Auditor interface {
	Record(ctx context.Context, typ, key string, payload any) error
}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, string, string, any) error { return nil }

// Facade is the single boundary surrounding components call. It composes
// the lifecycle manager, the answer ledger, and the scoring engine behind
// start/answer/submit/results operations.
type Facade struct {
	store     Store
	lifecycle *Lifecycle
	ledger    *Ledger
	policy    AttemptPolicy
	audit     Auditor
}

type Option func(*Facade)

func WithClock(now Clock) Option {
	return func(f *Facade) {
		f.lifecycle = NewLifecycle(f.store, now, f.lifecycle.locks)
	}
}

func WithPolicy(p AttemptPolicy) Option {
	return func(f *Facade) {
		if p != nil {
			f.policy = p
		}
	}
}

func WithAuditor(a Auditor) Option {
	return func(f *Facade) {
		if a != nil {
			f.audit = a
		}
	}
}

func New(store Store, opts ...Option) *Facade {
	locks := newAttemptLocks()
	f := &Facade{
		store:     store,
		lifecycle: NewLifecycle(store, time.Now, locks),
		ledger:    NewLedger(store, locks),
		policy:    AllowMultipleAttempts{},
		audit:     nopAuditor{},
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// StartAttempt runs the attempt policy, then delegates to the lifecycle
// manager.
func (f *Facade) StartAttempt(ctx context.Context, examID string, student StudentIdentity) (Attempt, error) {
	if examID == "" {
		return Attempt{}, invalid("exam_id", "required")
	}
	if err := f.policy.Authorize(ctx, f.store, examID, student); err != nil {
		return Attempt{}, err
	}
	a, err := f.lifecycle.Start(ctx, examID, student)
	if err != nil {
		return Attempt{}, err
	}
	_ = f.audit.Record(ctx, "AttemptStarted", a.ID, a)
	return a, nil
}

// RecordAnswer upserts one answer through the ledger.
func (f *Facade) RecordAnswer(ctx context.Context, attemptID, questionID string, userAnswer *string, markedForReview bool) (Answer, error) {
	return f.ledger.RecordAnswer(ctx, attemptID, questionID, userAnswer, markedForReview)
}

// Submit finalizes the attempt and returns the results view. A submit that
// loses the exactly-once race surfaces ErrAlreadySubmitted with the stored
// attempt unchanged.
func (f *Facade) Submit(ctx context.Context, attemptID string) (Results, error) {
	a, err := f.lifecycle.Submit(ctx, attemptID)
	if err != nil {
		return Results{}, err
	}
	_ = f.audit.Record(ctx, "AttemptSubmitted", a.ID, a)
	return f.buildResults(ctx, a)
}

// TimeUp is the countdown-expired trigger. It shares the submit path, and a
// loss against a concurrent manual submit is success from the student's
// point of view: the exam is submitted either way.
func (f *Facade) TimeUp(ctx context.Context, attemptID string) (Results, error) {
	a, err := f.lifecycle.Submit(ctx, attemptID)
	if errors.Is(err, ErrAlreadySubmitted) {
		return f.buildResults(ctx, a)
	}
	if err != nil {
		return Results{}, err
	}
	_ = f.audit.Record(ctx, "AttemptSubmitted", a.ID, a)
	return f.buildResults(ctx, a)
}

// GetAttempt returns the attempt for resume flows.
func (f *Facade) GetAttempt(ctx context.Context, attemptID string) (Attempt, error) {
	if attemptID == "" {
		return Attempt{}, invalid("attempt_id", "required")
	}
	return f.store.GetAttempt(ctx, attemptID)
}

// Answers returns the stored answers for an attempt, for resume flows.
func (f *Facade) Answers(ctx context.Context, attemptID string) ([]Answer, error) {
	if attemptID == "" {
		return nil, invalid("attempt_id", "required")
	}
	if _, err := f.store.GetAttempt(ctx, attemptID); err != nil {
		return nil, err
	}
	return f.store.GetAnswersForAttempt(ctx, attemptID)
}

// Results returns the per-question breakdown for a submitted attempt and
// fails with ErrNotYetSubmitted otherwise.
func (f *Facade) Results(ctx context.Context, attemptID string) (Results, error) {
	if attemptID == "" {
		return Results{}, invalid("attempt_id", "required")
	}
	a, err := f.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return Results{}, err
	}
	if !a.IsSubmitted {
		return Results{}, ErrNotYetSubmitted
	}
	return f.buildResults(ctx, a)
}

func (f *Facade) buildResults(ctx context.Context, a Attempt) (Results, error) {
	questions, err := f.store.GetQuestionsForExam(ctx, a.ExamID)
	if err != nil {
		return Results{}, err
	}
	answers, err := f.store.GetAnswersForAttempt(ctx, a.ID)
	if err != nil {
		return Results{}, err
	}

	graded := scoring.Grade(scoringQuestions(questions), scoringResponses(answers))

	// The persisted score is authoritative; re-grading here only feeds the
	// breakdown and the weighted totals.
	score := graded.Correct
	if a.Score != nil {
		score = *a.Score
	}

	items := make([]ResultItem, 0, len(questions))
	for i, q := range questions {
		out := graded.PerQuestion[i]
		items = append(items, ResultItem{
			Question:      q,
			UserAnswer:    out.UserAnswer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     out.IsCorrect,
		})
	}

	return Results{
		Attempt:        a,
		Items:          items,
		Score:          score,
		TotalQuestions: a.TotalQuestions,
		Percentage:     scoring.Percentage(score, a.TotalQuestions),
		WeightedPoints: graded.WeightedPoints,
		MaxPoints:      graded.MaxPoints,
	}, nil
}

func scoringQuestions(qs []exam.Question) []scoring.Question {
	out := make([]scoring.Question, len(qs))
	for i, q := range qs {
		out[i] = scoring.Question{ID: q.ID, CorrectAnswer: q.CorrectAnswer, Points: q.Points}
	}
	return out
}

func scoringResponses(answers []Answer) []scoring.Response {
	out := make([]scoring.Response, len(answers))
	for i, a := range answers {
		out[i] = scoring.Response{QuestionID: a.QuestionID, UserAnswer: a.UserAnswer}
	}
	return out
}
