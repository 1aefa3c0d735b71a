package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/examgate/examgate/internal/exam"
)

// SQLStore implements Store and Reports over database/sql, for both the
// modernc sqlite and pgx stdlib drivers ($n placeholders work on both).
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) GetExam(ctx context.Context, id string) (exam.Exam, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, duration_minutes, start_time, end_time, is_active, created_by, created_at
		FROM exams WHERE id=$1`, id)
	var e exam.Exam
	var start, end, created int64
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.DurationMin, &start, &end, &e.IsActive, &e.CreatedBy, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return exam.Exam{}, ErrExamUnavailable
		}
		return exam.Exam{}, fmt.Errorf("load exam: %w", err)
	}
	e.StartTime = time.Unix(start, 0).UTC()
	e.EndTime = time.Unix(end, 0).UTC()
	e.CreatedAt = time.Unix(created, 0).UTC()
	return e, nil
}

func (s *SQLStore) CountQuestionsForExam(ctx context.Context, examID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE exam_id=$1`, examID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (s *SQLStore) GetQuestionsForExam(ctx context.Context, examID string) ([]exam.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, exam_id, question_text, question_type, options_json, correct_answer, points, order_index
		FROM questions WHERE exam_id=$1 ORDER BY order_index ASC`, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	out := make([]exam.Question, 0)
	for rows.Next() {
		var q exam.Question
		var oj string
		if err := rows.Scan(&q.ID, &q.ExamID, &q.QuestionText, &q.QuestionType, &oj, &q.CorrectAnswer, &q.Points, &q.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if oj != "" {
			if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
				return nil, fmt.Errorf("decode options: %w", err)
			}
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (id, exam_id, user_id, student_name, student_email, started_at, time_remaining, is_submitted, total_questions)
		VALUES ($1,$2,$3,$4,$5,$6,$7,FALSE,$8)`,
		a.ID, a.ExamID, a.UserID, a.StudentName, a.StudentEmail,
		a.StartedAt.Unix(), a.TimeRemaining, a.TotalQuestions)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

const attemptColumns = `id, exam_id, user_id, student_name, student_email, started_at, submitted_at, time_remaining, is_submitted, score, total_questions`

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE id=$1`, id)
	return scanAttempt(row)
}

func (s *SQLStore) FindAttemptForStudent(ctx context.Context, examID, userID string) (Attempt, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE exam_id=$1 AND user_id=$2 ORDER BY started_at DESC LIMIT 1`,
		examID, userID)
	a, err := scanAttempt(row)
	if errors.Is(err, ErrAttemptNotFound) {
		return Attempt{}, false, nil
	}
	if err != nil {
		return Attempt{}, false, err
	}
	return a, true, nil
}

func (s *SQLStore) FinalizeAttempt(ctx context.Context, attemptID string, submittedAt time.Time, score int, correctness map[string]bool) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin finalize tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE attempts
		SET is_submitted=TRUE, score=$1, submitted_at=$2
		WHERE id=$3 AND is_submitted=FALSE`,
		score, submittedAt.Unix(), attemptID)
	if err != nil {
		return false, fmt.Errorf("finalize attempt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM attempts WHERE id=$1`, attemptID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return false, ErrAttemptNotFound
			}
			return false, fmt.Errorf("check attempt: %w", err)
		}
		// Already submitted elsewhere; leave everything untouched.
		return false, nil
	}

	for questionID, correct := range correctness {
		if _, err := tx.ExecContext(ctx, `
			UPDATE answers SET is_correct=$1 WHERE attempt_id=$2 AND question_id=$3`,
			correct, attemptID, questionID); err != nil {
			return false, fmt.Errorf("mark answer correctness: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit finalize: %w", err)
	}
	return true, nil
}

func (s *SQLStore) UpsertAnswer(ctx context.Context, a Answer) (Answer, error) {
	var ua any
	if a.UserAnswer != nil {
		ua = *a.UserAnswer
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO answers (id, attempt_id, question_id, user_answer, is_marked_for_review)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (attempt_id, question_id)
		DO UPDATE SET user_answer=EXCLUDED.user_answer, is_marked_for_review=EXCLUDED.is_marked_for_review`,
		a.ID, a.AttemptID, a.QuestionID, ua, a.IsMarkedForReview)
	if err != nil {
		return Answer{}, fmt.Errorf("upsert answer: %w", err)
	}
	// Re-read so the caller sees the surviving row id on updates.
	row := s.db.QueryRowContext(ctx, `
		SELECT id, attempt_id, question_id, user_answer, is_correct, is_marked_for_review
		FROM answers WHERE attempt_id=$1 AND question_id=$2`,
		a.AttemptID, a.QuestionID)
	return scanAnswer(row)
}

func (s *SQLStore) GetAnswersForAttempt(ctx context.Context, attemptID string) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, attempt_id, question_id, user_answer, is_correct, is_marked_for_review
		FROM answers WHERE attempt_id=$1`, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	out := make([]Answer, 0)
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListAttemptsForExam(ctx context.Context, examID string) ([]Attempt, error) {
	return s.listAttempts(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE exam_id=$1 ORDER BY started_at DESC`, examID)
}

func (s *SQLStore) ListAttemptsForUser(ctx context.Context, userID string) ([]Attempt, error) {
	return s.listAttempts(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE user_id=$1 ORDER BY started_at DESC`, userID)
}

func (s *SQLStore) listAttempts(ctx context.Context, query string, arg any) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	out := make([]Attempt, 0)
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var started int64
	var submitted, score sql.NullInt64
	if err := row.Scan(&a.ID, &a.ExamID, &a.UserID, &a.StudentName, &a.StudentEmail,
		&started, &submitted, &a.TimeRemaining, &a.IsSubmitted, &score, &a.TotalQuestions); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, fmt.Errorf("scan attempt: %w", err)
	}
	a.StartedAt = time.Unix(started, 0).UTC()
	if submitted.Valid {
		t := time.Unix(submitted.Int64, 0).UTC()
		a.SubmittedAt = &t
	}
	if score.Valid {
		v := int(score.Int64)
		a.Score = &v
	}
	return a, nil
}

func scanAnswer(row rowScanner) (Answer, error) {
	var a Answer
	var ua sql.NullString
	var correct sql.NullBool
	if err := row.Scan(&a.ID, &a.AttemptID, &a.QuestionID, &ua, &correct, &a.IsMarkedForReview); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Answer{}, fmt.Errorf("answer vanished after upsert: %w", err)
		}
		return Answer{}, fmt.Errorf("scan answer: %w", err)
	}
	if ua.Valid {
		a.UserAnswer = &ua.String
	}
	if correct.Valid {
		a.IsCorrect = &correct.Bool
	}
	return a, nil
}
