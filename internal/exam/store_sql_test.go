package exam

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examgate/examgate/internal/db"
)

func testDB(t *testing.T) *SQLStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewSQLStore(conn)
}

func sampleExam(id string) Exam {
	return Exam{
		ID:          id,
		Title:       "Midterm",
		Description: "closed book",
		DurationMin: 45,
		StartTime:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC),
		IsActive:    true,
		CreatedBy:   "admin-1",
		CreatedAt:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSQLStoreExamRoundTrip(t *testing.T) {
	store := testDB(t)
	ctx := context.Background()

	want := sampleExam("e1")
	require.NoError(t, store.PutExam(ctx, want))

	got, err := store.GetExam(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = store.GetExam(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStoreUpdateExam(t *testing.T) {
	store := testDB(t)
	ctx := context.Background()
	require.NoError(t, store.PutExam(ctx, sampleExam("e1")))

	title := "Midterm (rescheduled)"
	active := false
	got, err := store.UpdateExam(ctx, "e1", Patch{Title: &title, IsActive: &active})
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.False(t, got.IsActive)

	// A patch that breaks validation leaves the row untouched.
	badDuration := -5
	_, err = store.UpdateExam(ctx, "e1", Patch{DurationMin: &badDuration})
	require.Error(t, err)
	got, err = store.GetExam(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 45, got.DurationMin)

	_, err = store.UpdateExam(ctx, "nope", Patch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStoreDeleteExam(t *testing.T) {
	store := testDB(t)
	ctx := context.Background()
	require.NoError(t, store.PutExam(ctx, sampleExam("e1")))

	ok, err := store.DeleteExam(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.DeleteExam(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLStoreListExams(t *testing.T) {
	store := testDB(t)
	ctx := context.Background()

	a := sampleExam("e1")
	b := sampleExam("e2")
	b.IsActive = false
	b.CreatedAt = a.CreatedAt.Add(time.Hour)
	require.NoError(t, store.PutExam(ctx, a))
	require.NoError(t, store.PutExam(ctx, b))

	all, err := store.ListExams(ctx, ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "e2", all[0].ID, "newest first")

	active, err := store.ListExams(ctx, ListOpts{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "e1", active[0].ID)
}

func TestSQLStoreQuestions(t *testing.T) {
	store := testDB(t)
	ctx := context.Background()
	require.NoError(t, store.PutExam(ctx, sampleExam("e1")))

	q2 := Question{ID: "q2", ExamID: "e1", QuestionText: "Second", QuestionType: TypeFillBlank, CorrectAnswer: "x", Points: 2, OrderIndex: 1}
	q1 := Question{ID: "q1", ExamID: "e1", QuestionText: "First", QuestionType: TypeMultipleChoice, Options: []string{"A", "B", "C"}, CorrectAnswer: "A", Points: 1, OrderIndex: 0}
	require.NoError(t, store.SaveQuestion(ctx, q2))
	require.NoError(t, store.SaveQuestion(ctx, q1))

	qs, err := store.GetQuestionsForExam(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "q1", qs[0].ID, "ordered by order_index")
	assert.Equal(t, []string{"A", "B", "C"}, qs[0].Options)
	assert.Equal(t, "q2", qs[1].ID)
	assert.Equal(t, "x", qs[1].CorrectAnswer)
	assert.Empty(t, qs[1].Options)

	// Invalid questions never reach the database.
	err = store.SaveQuestion(ctx, Question{ID: "bad", ExamID: "e1", QuestionText: "t", QuestionType: "essay", CorrectAnswer: "x", Points: 1})
	require.Error(t, err)
}
