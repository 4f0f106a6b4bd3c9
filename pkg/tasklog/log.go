// Package tasklog keeps the append-only AgentTask history shared by the
// pipeline stages, with an optional on-disk archive.
package tasklog

import (
	"sync"

	"github.com/cpunion/slidegen/pkg/types"
)

// DefaultLimit is the number of tasks retained in memory.
const DefaultLimit = 1000

// Sink receives every finished task after it is recorded.
type Sink interface {
	Write(task types.AgentTask) error
}

// Config holds log configuration.
type Config struct {
	Limit int  // retained tasks; 0 = unbounded
	Sink  Sink // optional
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{Limit: DefaultLimit}
}

// Log is a concurrency-safe task history. When bounded it behaves as a ring:
// the oldest task is evicted once Limit is reached.
type Log struct {
	mu sync.Mutex

	limit    int
	sink     Sink
	buf      []types.AgentTask
	head     int // index of the oldest task once the ring is full
	appended int64
}

// New creates a task log.
func New(cfg Config) *Log {
	if cfg.Limit < 0 {
		cfg.Limit = 0
	}
	return &Log{limit: cfg.Limit, sink: cfg.Sink}
}

// Append records a task. Tasks are expected to be finished; once appended they
// are never modified. A sink failure is returned after the task is recorded.
func (l *Log) Append(task types.AgentTask) error {
	l.mu.Lock()
	if l.limit > 0 && len(l.buf) == l.limit {
		l.buf[l.head] = task
		l.head = (l.head + 1) % l.limit
	} else {
		l.buf = append(l.buf, task)
	}
	l.appended++
	sink := l.sink
	l.mu.Unlock()

	if sink != nil {
		return sink.Write(task)
	}
	return nil
}

// Snapshot returns the retained tasks, oldest first.
func (l *Log) Snapshot() []types.AgentTask {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]types.AgentTask, 0, len(l.buf))
	out = append(out, l.buf[l.head:]...)
	out = append(out, l.buf[:l.head]...)
	return out
}

// Len returns the number of retained tasks.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buf)
}

// Appended returns the number of tasks ever appended, including evicted ones.
func (l *Log) Appended() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appended
}

// Stats summarizes retained tasks of the given type; an empty type selects all.
func (l *Log) Stats(typ types.TaskType) Stats {
	return Summarize(l.Snapshot(), typ)
}
