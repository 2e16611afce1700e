// Package activity keeps a bounded in-memory history of record
// mutations. It subscribes to the event bus and answers "what happened
// to this record" queries for the JSON activity endpoint.
package activity

import (
	"context"
	"sync"
	"time"

	"github.com/matthewbaird/cruder/internal/event"
)

// DefaultCapacity bounds the log; the oldest entries are dropped first.
const DefaultCapacity = 1000

// Entry is one recorded mutation.
type Entry struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Resource   string    `json:"resource"`
	RecordID   string    `json:"record_id"`
	Action     string    `json:"action"`
	Actor      []string  `json:"actor,omitempty"`
	Summary    string    `json:"summary"`
}

// Log stores entries in memory, newest last. Intended for demos and
// operational visibility — no database required.
type Log struct {
	mu       sync.RWMutex
	capacity int
	entries  []Entry
}

// NewLog creates a Log holding at most capacity entries.
func NewLog(capacity int) *Log {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// HandleEvent implements the event bus Handler by recording the event.
func (l *Log) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	entry := Entry{
		EventID:    evt.ID,
		EventType:  evt.EventType,
		OccurredAt: evt.OccurredAt,
		Resource:   evt.Resource,
		RecordID:   evt.RecordID,
		Action:     evt.Action,
		Actor:      evt.Actor,
		Summary:    evt.Summary,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
	return nil
}

// QueryOptions filter the history. Zero values match everything.
type QueryOptions struct {
	Resource string
	RecordID string
	Limit    int
}

// Query returns matching entries, newest first.
func (l *Log) Query(opts QueryOptions) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	limit := opts.Limit
	if limit < 1 || limit > l.capacity {
		limit = l.capacity
	}

	var out []Entry
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := l.entries[i]
		if opts.Resource != "" && e.Resource != opts.Resource {
			continue
		}
		if opts.RecordID != "" && e.RecordID != opts.RecordID {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Len reports the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
