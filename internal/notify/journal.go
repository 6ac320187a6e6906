package notify

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

const (
	DefaultJournalLimit = 200

	warnPrefix = "⚠️ "
)

// Journal keeps the most recent notifications, newest first, each stamped
// with the wall clock time it was written.
type Journal struct {
	mu    sync.Mutex
	lines []string
	limit int
	now   func() time.Time
}

type JournalOpt func(*Journal)

func WithLimit(n int) JournalOpt {
	return func(j *Journal) {
		j.limit = n
	}
}

func WithClock(now func() time.Time) JournalOpt {
	return func(j *Journal) {
		j.now = now
	}
}

func NewJournal(opts ...JournalOpt) *Journal {
	j := &Journal{
		limit: DefaultJournalLimit,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

func (j *Journal) Log(msg string) {
	j.add(msg)
}

func (j *Journal) Warn(msg string) {
	j.add(warnPrefix + msg)
}

func (j *Journal) add(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	line := fmt.Sprintf("[%s] %s", j.now().Format(time.TimeOnly), msg)
	j.lines = slices.Insert(j.lines, 0, line)
	if len(j.lines) > j.limit {
		j.lines = j.lines[:j.limit]
	}
}

// Lines returns up to n lines, newest first. n <= 0 returns all of them.
func (j *Journal) Lines(n int) []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	if n <= 0 || n > len(j.lines) {
		n = len(j.lines)
	}
	return slices.Clone(j.lines[:n])
}

// Restore replaces the journal with persisted lines.
func (j *Journal) Restore(lines []string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.lines = slices.Clone(lines[:min(len(lines), j.limit)])
}

func (j *Journal) Clear() {
	j.Restore(nil)
}
