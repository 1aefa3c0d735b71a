package exam

import (
	"errors"
	"time"
)

// Question types accepted by the authoring API and understood by scoring.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeFillBlank      = "fill_blank"
)

var ErrNotFound = errors.New("exam not found")

type Exam struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DurationMin int       `json:"duration_minutes"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsActive    bool      `json:"is_active"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Validate enforces the authoring invariants: positive duration and an
// open exam window.
func (e Exam) Validate() error {
	if e.Title == "" {
		return errors.New("title required")
	}
	if e.DurationMin <= 0 {
		return errors.New("duration must be positive")
	}
	if !e.StartTime.Before(e.EndTime) {
		return errors.New("start_time must be before end_time")
	}
	return nil
}

type Question struct {
	ID           string   `json:"id"`
	ExamID       string   `json:"exam_id"`
	QuestionText string   `json:"question_text"`
	QuestionType string   `json:"question_type"`
	Options      []string `json:"options,omitempty"`
	// CorrectAnswer is stripped before serving questions to students.
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Points        int    `json:"points"`
	OrderIndex    int    `json:"order_index"`
}

func (q Question) Validate() error {
	if q.ExamID == "" {
		return errors.New("exam_id required")
	}
	if q.QuestionText == "" {
		return errors.New("question_text required")
	}
	switch q.QuestionType {
	case TypeMultipleChoice:
		if len(q.Options) < 2 {
			return errors.New("multiple_choice requires at least two options")
		}
	case TypeTrueFalse, TypeFillBlank:
	default:
		return errors.New("unknown question_type")
	}
	if q.CorrectAnswer == "" {
		return errors.New("correct_answer required")
	}
	if q.Points < 1 {
		return errors.New("points must be >= 1")
	}
	return nil
}

// Patch is a partial update to an exam. Nil fields are left unchanged.
type Patch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DurationMin *int       `json:"duration_minutes,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

// Apply folds the patch into e and re-validates the result.
func (p Patch) Apply(e Exam) (Exam, error) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.DurationMin != nil {
		e.DurationMin = *p.DurationMin
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.IsActive != nil {
		e.IsActive = *p.IsActive
	}
	if err := e.Validate(); err != nil {
		return Exam{}, err
	}
	return e, nil
}

// StripAnswers clears grading material from questions before they are
// served to a student taking the exam.
func StripAnswers(qs []Question) []Question {
	out := make([]Question, len(qs))
	copy(out, qs)
	for i := range out {
		out[i].CorrectAnswer = ""
	}
	return out
}
