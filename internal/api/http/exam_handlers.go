package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/exam"
	"github.com/examgate/examgate/internal/session"
)

type createExamRequest struct {
	Title       string    `json:"title" validate:"required,max=300"`
	Description string    `json:"description"`
	DurationMin int       `json:"duration_minutes" validate:"required,min=1"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	IsActive    bool      `json:"is_active"`
}

// POST /api/exams
func CreateExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createExamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errBody{"bad_json", "malformed request body"})
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, err)
			return
		}

		e := exam.Exam{
			ID:          uuid.NewString(),
			Title:       req.Title,
			Description: req.Description,
			DurationMin: req.DurationMin,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			IsActive:    req.IsActive,
			CreatedBy:   auth.SubjectFromContext(r.Context()),
			CreatedAt:   time.Now().UTC(),
		}
		if err := e.Validate(); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errBody{"validation", err.Error()})
			return
		}
		if err := store.PutExam(r.Context(), e); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

// GET /api/exams
func ListExamsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListExams(r.Context(), exam.ListOpts{
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /api/exams/available — active exams only, for the student dashboard.
func AvailableExamsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListExams(r.Context(), exam.ListOpts{
			ActiveOnly: true,
			Limit:      parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:     parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /api/exams/{examID}
func GetExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := store.GetExam(r.Context(), chi.URLParam(r, "examID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// PUT /api/exams/{examID}
func UpdateExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p exam.Patch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, errBody{"bad_json", "malformed request body"})
			return
		}
		e, err := store.UpdateExam(r.Context(), chi.URLParam(r, "examID"), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// DELETE /api/exams/{examID}
func DeleteExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := store.DeleteExam(r.Context(), chi.URLParam(r, "examID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if !ok {
			writeError(w, exam.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "exam deleted"})
	}
}

type createQuestionRequest struct {
	QuestionText  string   `json:"question_text" validate:"required"`
	QuestionType  string   `json:"question_type" validate:"required,oneof=multiple_choice true_false fill_blank"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Points        int      `json:"points" validate:"min=0"`
	OrderIndex    int      `json:"order_index" validate:"min=0"`
}

// POST /api/exams/{examID}/questions
func CreateQuestionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createQuestionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errBody{"bad_json", "malformed request body"})
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, err)
			return
		}
		if req.Points < 1 {
			req.Points = 1
		}

		q := exam.Question{
			ID:            uuid.NewString(),
			ExamID:        chi.URLParam(r, "examID"),
			QuestionText:  req.QuestionText,
			QuestionType:  req.QuestionType,
			Options:       req.Options,
			CorrectAnswer: req.CorrectAnswer,
			Points:        req.Points,
			OrderIndex:    req.OrderIndex,
		}
		if err := q.Validate(); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errBody{"validation", err.Error()})
			return
		}
		if err := store.SaveQuestion(r.Context(), q); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// GET /api/exams/{examID}/questions
//
// Students get the questions without grading material; admins see the full
// records.
func ListQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.GetQuestionsForExam(r.Context(), chi.URLParam(r, "examID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if auth.RoleFromContext(r.Context()) != "admin" {
			qs = exam.StripAnswers(qs)
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

// GET /api/exams/{examID}/results — all attempts on one exam.
func ExamResultsHandler(reports session.Reports) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempts, err := reports.ListAttemptsForExam(r.Context(), chi.URLParam(r, "examID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, attempts)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
