package session

import "time"

// Clock is the single source of "now" for all timing decisions, injected so
// tests can pin it.
type Clock func() time.Time
