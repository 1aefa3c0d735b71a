package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/examgate/examgate/internal/exam"
)

// MemoryStore is an in-process Store for tests and single-node offline use.
type MemoryStore struct {
	mu        sync.RWMutex
	exams     map[string]exam.Exam
	questions map[string][]exam.Question // examID -> questions
	attempts  map[string]Attempt
	answers   map[string]map[string]Answer // attemptID -> questionID -> answer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		exams:     map[string]exam.Exam{},
		questions: map[string][]exam.Question{},
		attempts:  map[string]Attempt{},
		answers:   map[string]map[string]Answer{},
	}
}

// PutExam seeds or replaces an exam.
func (m *MemoryStore) PutExam(e exam.Exam) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exams[e.ID] = e
}

// PutQuestion seeds a question under its exam.
func (m *MemoryStore) PutQuestion(q exam.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	qs := append(m.questions[q.ExamID], q)
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].OrderIndex < qs[j].OrderIndex })
	m.questions[q.ExamID] = qs
}

func (m *MemoryStore) GetExam(_ context.Context, id string) (exam.Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return exam.Exam{}, ErrExamUnavailable
	}
	return e, nil
}

func (m *MemoryStore) CountQuestionsForExam(_ context.Context, examID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.questions[examID]), nil
}

func (m *MemoryStore) GetQuestionsForExam(_ context.Context, examID string) ([]exam.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qs := m.questions[examID]
	out := make([]exam.Question, len(qs))
	copy(out, qs)
	return out, nil
}

func (m *MemoryStore) CreateAttempt(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[a.ID] = a
	m.answers[a.ID] = map[string]Answer{}
	return nil
}

func (m *MemoryStore) GetAttempt(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, nil
}

func (m *MemoryStore) FindAttemptForStudent(_ context.Context, examID, userID string) (Attempt, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.attempts {
		if a.ExamID == examID && a.UserID == userID {
			return a, true, nil
		}
	}
	return Attempt{}, false, nil
}

func (m *MemoryStore) FinalizeAttempt(_ context.Context, attemptID string, submittedAt time.Time, score int, correctness map[string]bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return false, ErrAttemptNotFound
	}
	if a.IsSubmitted {
		return false, nil
	}
	a.IsSubmitted = true
	a.Score = &score
	t := submittedAt
	a.SubmittedAt = &t
	m.attempts[attemptID] = a

	for questionID, correct := range correctness {
		if ans, ok := m.answers[attemptID][questionID]; ok {
			c := correct
			ans.IsCorrect = &c
			m.answers[attemptID][questionID] = ans
		}
	}
	return true, nil
}

func (m *MemoryStore) UpsertAnswer(_ context.Context, a Answer) (Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byQuestion, ok := m.answers[a.AttemptID]
	if !ok {
		return Answer{}, ErrAttemptNotFound
	}
	if existing, ok := byQuestion[a.QuestionID]; ok {
		a.ID = existing.ID
	}
	a.IsCorrect = nil
	byQuestion[a.QuestionID] = a
	return a, nil
}

func (m *MemoryStore) GetAnswersForAttempt(_ context.Context, attemptID string) ([]Answer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byQuestion := m.answers[attemptID]
	out := make([]Answer, 0, len(byQuestion))
	for _, a := range byQuestion {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (m *MemoryStore) ListAttemptsForExam(_ context.Context, examID string) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Attempt, 0)
	for _, a := range m.attempts {
		if a.ExamID == examID {
			out = append(out, a)
		}
	}
	sortAttempts(out)
	return out, nil
}

func (m *MemoryStore) ListAttemptsForUser(_ context.Context, userID string) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Attempt, 0)
	for _, a := range m.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sortAttempts(out)
	return out, nil
}

func sortAttempts(as []Attempt) {
	sort.Slice(as, func(i, j int) bool { return as[i].StartedAt.After(as[j].StartedAt) })
}
