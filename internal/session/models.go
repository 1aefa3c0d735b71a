package session

import (
	"time"

	"github.com/examgate/examgate/internal/exam"
)

// StudentIdentity is who is taking the attempt. In anonymous deployments
// UserID is a shared placeholder and Name/Email come from the start request;
// in authenticated deployments UserID is the token subject.
type StudentIdentity struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// Attempt is one student's timed instance of taking an exam.
//
// IsSubmitted transitions false->true exactly once; Score and SubmittedAt
// are set together with that transition and never change afterwards.
type Attempt struct {
	ID           string     `json:"id"`
	ExamID       string     `json:"exam_id"`
	UserID       string     `json:"user_id"`
	StudentName  string     `json:"student_name,omitempty"`
	StudentEmail string     `json:"student_email,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	// TimeRemaining is the seconds granted at start, bounded by both the
	// exam's duration and its hard end time.
	TimeRemaining  int  `json:"time_remaining"`
	IsSubmitted    bool `json:"is_submitted"`
	Score          *int `json:"score,omitempty"`
	TotalQuestions int  `json:"total_questions"`
}

// Answer is the stored response to one question of one attempt. At most one
// row exists per (attempt, question); writes are upserts. IsCorrect is nil
// until the attempt is submitted.
type Answer struct {
	ID                string  `json:"id"`
	AttemptID         string  `json:"attempt_id"`
	QuestionID        string  `json:"question_id"`
	UserAnswer        *string `json:"user_answer"`
	IsCorrect         *bool   `json:"is_correct,omitempty"`
	IsMarkedForReview bool    `json:"is_marked_for_review"`
}

// ResultItem pairs a question with the student's stored answer.
type ResultItem struct {
	Question      exam.Question `json:"question"`
	UserAnswer    *string       `json:"user_answer"`
	CorrectAnswer string        `json:"correct_answer"`
	IsCorrect     bool          `json:"is_correct"`
}

// Results is the post-submission view of an attempt.
type Results struct {
	Attempt        Attempt      `json:"attempt"`
	Items          []ResultItem `json:"results"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"total_questions"`
	Percentage     int          `json:"percentage"`
	WeightedPoints int          `json:"weighted_points"`
	MaxPoints      int          `json:"max_points"`
}
