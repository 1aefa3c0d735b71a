package session

import "sync"

// attemptLocks serializes operations per attempt id. Submit and answer
// writes for the same attempt take the same lock, which is what makes
// "submission started" visible to late answer writes instead of losing
// them silently. Entries are reference-counted so the table stays small.
type attemptLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newAttemptLocks() *attemptLocks {
	return &attemptLocks{entries: make(map[string]*lockEntry)}
}

// lock blocks until the per-attempt lock is held and returns the release
// function.
func (t *attemptLocks) lock(id string) func() {
	t.mu.Lock()
	e, ok := t.entries[id]
	if !ok {
		e = &lockEntry{}
		t.entries[id] = e
	}
	e.refs++
	t.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		t.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(t.entries, id)
		}
		t.mu.Unlock()
	}
}
