package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/session"
)

type startRequest struct {
	StudentName  string `json:"student_name" validate:"max=200"`
	StudentEmail string `json:"student_email" validate:"omitempty,email"`
}

// POST /api/exams/{examID}/start
func StartAttemptHandler(f *session.Facade, resolver auth.IdentityResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")

		var req startRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, errBody{"bad_json", "malformed request body"})
				return
			}
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, err)
			return
		}

		student, err := resolver.Resolve(r, req.StudentName, req.StudentEmail)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errBody{"unauthorized", err.Error()})
			return
		}

		a, err := f.StartAttempt(r.Context(), examID, student)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

type answerRequest struct {
	QuestionID        string  `json:"question_id" validate:"required"`
	UserAnswer        *string `json:"user_answer"`
	IsMarkedForReview bool    `json:"is_marked_for_review"`
}

// POST /api/attempts/{attemptID}/answers
func SaveAnswerHandler(f *session.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")

		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errBody{"bad_json", "malformed request body"})
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, err)
			return
		}

		a, err := f.RecordAnswer(r.Context(), attemptID, req.QuestionID, req.UserAnswer, req.IsMarkedForReview)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// POST /api/attempts/{attemptID}/submit
func SubmitAttemptHandler(f *session.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := f.Submit(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// POST /api/attempts/{attemptID}/time-up
//
// Same transition as submit, but losing the race to a manual submit is not
// an error for the student: the facade already folds that case into a
// normal results response.
func TimeUpHandler(f *session.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := f.TimeUp(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /api/attempts/{attemptID}
func GetAttemptHandler(f *session.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := f.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /api/attempts/{attemptID}/answers
func ListAnswersHandler(f *session.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		answers, err := f.Answers(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, answers)
	}
}

// GET /api/attempts/{attemptID}/results
func ResultsHandler(f *session.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := f.Results(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /api/attempts — the caller's own attempts.
func MyAttemptsHandler(reports session.Reports) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		if userID == "" {
			userID = auth.DefaultUserID
		}
		attempts, err := reports.ListAttemptsForUser(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, attempts)
	}
}
