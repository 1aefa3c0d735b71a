package session

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Storage failures are wrapped with %w and stay
// distinct from these sentinels.
var (
	ErrExamUnavailable   = errors.New("exam not available")
	ErrExamNotStarted    = errors.New("exam has not started yet")
	ErrExamEnded         = errors.New("exam has ended")
	ErrAttemptNotFound   = errors.New("attempt not found")
	ErrAlreadySubmitted  = errors.New("attempt already submitted")
	ErrSubmissionLocked  = errors.New("answers cannot be modified after submission")
	ErrNotYetSubmitted   = errors.New("attempt not submitted yet")
	ErrQuestionNotInExam = errors.New("question does not belong to this exam")
	ErrAttemptLimit      = errors.New("attempt limit reached for this exam")
)

// ValidationError marks malformed caller input (missing IDs and the like).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
