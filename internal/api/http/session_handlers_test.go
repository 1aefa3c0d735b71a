package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/exam"
	"github.com/examgate/examgate/internal/session"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *session.MemoryStore) {
	t.Helper()

	store := session.NewMemoryStore()
	store.PutExam(exam.Exam{
		ID:          "exam-1",
		Title:       "Geography Basics",
		DurationMin: 10,
		StartTime:   testNow.Add(-time.Hour),
		EndTime:     testNow.Add(time.Hour),
		IsActive:    true,
	})
	store.PutQuestion(exam.Question{ID: "q1", ExamID: "exam-1", QuestionText: "Pick A", QuestionType: exam.TypeMultipleChoice, Options: []string{"A", "B"}, CorrectAnswer: "A", Points: 1, OrderIndex: 0})
	store.PutQuestion(exam.Question{ID: "q2", ExamID: "exam-1", QuestionText: "Sky is blue", QuestionType: exam.TypeTrueFalse, CorrectAnswer: "True", Points: 2, OrderIndex: 1})

	f := session.New(store, session.WithClock(func() time.Time { return testNow }))

	r := chi.NewRouter()
	r.Post("/api/exams/{examID}/start", StartAttemptHandler(f, auth.AnonymousResolver{}))
	r.Post("/api/attempts/{attemptID}/answers", SaveAnswerHandler(f))
	r.Post("/api/attempts/{attemptID}/submit", SubmitAttemptHandler(f))
	r.Post("/api/attempts/{attemptID}/time-up", TimeUpHandler(f))
	r.Get("/api/attempts/{attemptID}", GetAttemptHandler(f))
	r.Get("/api/attempts/{attemptID}/answers", ListAnswersHandler(f))
	r.Get("/api/attempts/{attemptID}/results", ResultsHandler(f))
	r.Get("/api/attempts", MyAttemptsHandler(store))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func startAttempt(t *testing.T, srv *httptest.Server) session.Attempt {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/exams/exam-1/start", map[string]string{
		"student_name":  "Ada",
		"student_email": "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[session.Attempt](t, resp)
}

func TestStartAttemptEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	a := startAttempt(t, srv)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, 600, a.TimeRemaining)
	assert.Equal(t, 2, a.TotalQuestions)
	assert.Equal(t, auth.DefaultUserID, a.UserID)
	assert.Equal(t, "Ada", a.StudentName)
}

func TestStartAttemptEmptyBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/exams/exam-1/start", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	a := decode[session.Attempt](t, resp)
	assert.Equal(t, "Anonymous Student", a.StudentName)
}

func TestStartAttemptWindowErrors(t *testing.T) {
	srv, store := newTestServer(t)

	e, err := store.GetExam(context.Background(), "exam-1")
	require.NoError(t, err)
	e.EndTime = testNow.Add(-time.Minute)
	store.PutExam(e)

	resp := postJSON(t, srv.URL+"/api/exams/exam-1/start", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[errBody](t, resp)
	assert.Equal(t, "exam_ended", body.Error)

	resp = postJSON(t, srv.URL+"/api/exams/missing/start", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body = decode[errBody](t, resp)
	assert.Equal(t, "exam_unavailable", body.Error)
}

func TestSaveAnswerEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	a := startAttempt(t, srv)

	resp := postJSON(t, srv.URL+"/api/attempts/"+a.ID+"/answers", map[string]any{
		"question_id": "q1",
		"user_answer": "A",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ans := decode[session.Answer](t, resp)
	assert.Equal(t, "q1", ans.QuestionID)
	assert.Equal(t, "A", *ans.UserAnswer)

	// Missing question_id fails request validation.
	resp = postJSON(t, srv.URL+"/api/attempts/"+a.ID+"/answers", map[string]any{
		"user_answer": "A",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	// A question from another exam is rejected.
	resp = postJSON(t, srv.URL+"/api/attempts/"+a.ID+"/answers", map[string]any{
		"question_id": "other-exam-q",
		"user_answer": "A",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[errBody](t, resp)
	assert.Equal(t, "question_not_in_exam", body.Error)
}

func TestSubmitAndResultsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	a := startAttempt(t, srv)

	// Results are gated until submission.
	resp, err := http.Get(srv.URL + "/api/attempts/" + a.ID + "/results")
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[errBody](t, resp)
	assert.Equal(t, "not_yet_submitted", body.Error)

	postJSON(t, srv.URL+"/api/attempts/"+a.ID+"/answers", map[string]any{
		"question_id": "q1",
		"user_answer": "A",
	}).Body.Close()

	resp = postJSON(t, srv.URL+"/api/attempts/"+a.ID+"/submit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[session.Results](t, resp)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, 50, res.Percentage)
	require.Len(t, res.Items, 2)

	// A repeat submit is a conflict.
	resp = postJSON(t, srv.URL+"/api/attempts/"+a.ID+"/submit", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body = decode[errBody](t, resp)
	assert.Equal(t, "already_submitted", body.Error)

	// Time-up after submission still serves results.
	resp = postJSON(t, srv.URL+"/api/attempts/"+a.ID+"/time-up", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res = decode[session.Results](t, resp)
	assert.Equal(t, 1, res.Score)

	resp, err = http.Get(srv.URL + "/api/attempts/" + a.ID + "/results")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res = decode[session.Results](t, resp)
	assert.Equal(t, 1, res.Score)

	// Answer writes after submission are locked out.
	resp = postJSON(t, srv.URL+"/api/attempts/"+a.ID+"/answers", map[string]any{
		"question_id": "q2",
		"user_answer": "True",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body = decode[errBody](t, resp)
	assert.Equal(t, "submission_locked", body.Error)
}

func TestAttemptLookupEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	a := startAttempt(t, srv)

	resp, err := http.Get(srv.URL + "/api/attempts/" + a.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[session.Attempt](t, resp)
	assert.Equal(t, a.ID, got.ID)

	resp, err = http.Get(srv.URL + "/api/attempts/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[errBody](t, resp)
	assert.Equal(t, "attempt_not_found", body.Error)

	resp, err = http.Get(srv.URL + "/api/attempts/" + a.ID + "/answers")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	answers := decode[[]session.Answer](t, resp)
	assert.Empty(t, answers)

	resp, err = http.Get(srv.URL + "/api/attempts")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	attempts := decode[[]session.Attempt](t, resp)
	require.Len(t, attempts, 1)
	assert.Equal(t, a.ID, attempts[0].ID)
}
