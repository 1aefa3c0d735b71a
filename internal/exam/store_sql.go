package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLStore implements Store over database/sql. Placeholders use the $n
// form, which both the pgx stdlib driver and modernc sqlite accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exams (id, title, description, duration_minutes, start_time, end_time, is_active, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.Title, e.Description, e.DurationMin,
		e.StartTime.Unix(), e.EndTime.Unix(), e.IsActive, e.CreatedBy, e.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert exam: %w", err)
	}
	return nil
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, duration_minutes, start_time, end_time, is_active, created_by, created_at
		FROM exams WHERE id=$1`, id)
	return scanExam(row)
}

func (s *SQLStore) UpdateExam(ctx context.Context, id string, p Patch) (Exam, error) {
	e, err := s.GetExam(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	e, err = p.Apply(e)
	if err != nil {
		return Exam{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE exams
		SET title=$1, description=$2, duration_minutes=$3, start_time=$4, end_time=$5, is_active=$6
		WHERE id=$7`,
		e.Title, e.Description, e.DurationMin, e.StartTime.Unix(), e.EndTime.Unix(), e.IsActive, id)
	if err != nil {
		return Exam{}, fmt.Errorf("update exam: %w", err)
	}
	return e, nil
}

func (s *SQLStore) DeleteExam(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exams WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("delete exam: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) ListExams(ctx context.Context, opts ListOpts) ([]Exam, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	q := `
		SELECT id, title, description, duration_minutes, start_time, end_time, is_active, created_by, created_at
		FROM exams`
	if opts.ActiveOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, q, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	defer rows.Close()

	out := make([]Exam, 0)
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveQuestion(ctx context.Context, q Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	oj, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO questions (id, exam_id, question_text, question_type, options_json, correct_answer, points, order_index)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		q.ID, q.ExamID, q.QuestionText, q.QuestionType, string(oj), q.CorrectAnswer, q.Points, q.OrderIndex)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (s *SQLStore) GetQuestionsForExam(ctx context.Context, examID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, exam_id, question_text, question_type, options_json, correct_answer, points, order_index
		FROM questions WHERE exam_id=$1 ORDER BY order_index ASC`, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	out := make([]Question, 0)
	for rows.Next() {
		var q Question
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExam(row rowScanner) (Exam, error) {
	var e Exam
	var start, end, created int64
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.DurationMin, &start, &end, &e.IsActive, &e.CreatedBy, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrNotFound
		}
		return Exam{}, fmt.Errorf("scan exam: %w", err)
	}
	e.StartTime = time.Unix(start, 0).UTC()
	e.EndTime = time.Unix(end, 0).UTC()
	e.CreatedAt = time.Unix(created, 0).UTC()
	return e, nil
}
