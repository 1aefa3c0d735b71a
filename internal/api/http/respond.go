package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/examgate/examgate/internal/exam"
	"github.com/examgate/examgate/internal/session"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps the engine's error taxonomy onto HTTP statuses in one
// place. Anything outside the taxonomy is an infrastructure failure and
// stays opaque to the client.
func writeError(w http.ResponseWriter, err error) {
	var ve *session.ValidationError
	var fieldErrs validator.ValidationErrors

	switch {
	case errors.Is(err, session.ErrExamUnavailable):
		writeJSON(w, http.StatusConflict, errBody{"exam_unavailable", err.Error()})
	case errors.Is(err, session.ErrExamNotStarted):
		writeJSON(w, http.StatusConflict, errBody{"exam_not_started", err.Error()})
	case errors.Is(err, session.ErrExamEnded):
		writeJSON(w, http.StatusConflict, errBody{"exam_ended", err.Error()})
	case errors.Is(err, session.ErrAttemptNotFound):
		writeJSON(w, http.StatusNotFound, errBody{"attempt_not_found", err.Error()})
	case errors.Is(err, exam.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errBody{"exam_not_found", err.Error()})
	case errors.Is(err, session.ErrAlreadySubmitted):
		writeJSON(w, http.StatusConflict, errBody{"already_submitted", err.Error()})
	case errors.Is(err, session.ErrSubmissionLocked):
		writeJSON(w, http.StatusConflict, errBody{"submission_locked", err.Error()})
	case errors.Is(err, session.ErrNotYetSubmitted):
		writeJSON(w, http.StatusConflict, errBody{"not_yet_submitted", err.Error()})
	case errors.Is(err, session.ErrQuestionNotInExam):
		writeJSON(w, http.StatusUnprocessableEntity, errBody{"question_not_in_exam", err.Error()})
	case errors.Is(err, session.ErrAttemptLimit):
		writeJSON(w, http.StatusConflict, errBody{"attempt_limit", err.Error()})
	case errors.As(err, &ve), errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusUnprocessableEntity, errBody{"validation", err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errBody{"internal", "internal error"})
	}
}
