package capture

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/poketrainer/internal/game/creature"
)

// Entry records one confirmed capture.
type Entry struct {
	MemberID   uuid.UUID
	Creature   creature.Creature
	CapturedAt time.Time
}

// Log is the trainer's capture history, newest first.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

// NewLog creates a Log seeded with history, which must be newest first.
func NewLog(history ...Entry) *Log {
	return &Log{entries: append([]Entry(nil), history...)}
}

// Record prepends e.
func (l *Log) Record(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]Entry{e}, l.entries...)
}

// Entries returns a copy of the history, newest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of recorded captures.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
