// Package store defines the data-store collaborator for the CRUD engine.
// The engine only calls these operations; it never implements persistence
// semantics itself. Two implementations ship: an insertion-ordered memory
// store for demos and tests, and a SQLite-backed store.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// ConstraintError reports a persistence constraint violation (uniqueness,
// foreign keys). The form builder converts column-attributable violations
// into field-level validation errors.
type ConstraintError struct {
	Column  string // offending column, "" when unknown
	Message string
}

func (e *ConstraintError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("constraint violation on %s: %s", e.Column, e.Message)
	}
	return "constraint violation: " + e.Message
}

// Record is one typed row of a resource. Values are keyed by field name;
// value types follow the field's semantic type (string, int64, float64,
// bool).
type Record struct {
	ID        uuid.UUID
	Values    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecord allocates a record with a fresh id.
func NewRecord(values map[string]any) Record {
	now := time.Now().UTC()
	return Record{
		ID:        uuid.New(),
		Values:    values,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers cannot alias stored state.
func (r Record) Clone() Record {
	values := make(map[string]any, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	out := r
	out.Values = values
	return out
}

// Store exposes create/read/update/delete/list over records of a single
// resource. Implementations must keep List order stable across calls for
// the same data snapshot.
type Store interface {
	Insert(ctx context.Context, rec Record) error
	Get(ctx context.Context, id uuid.UUID) (Record, error)
	Update(ctx context.Context, rec Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]Record, error)
}

// Searcher is an optional Store extension that pushes multi-field substring
// search down into the backing engine. Stores without it fall back to the
// in-memory list engine.
type Searcher interface {
	Search(ctx context.Context, fields []string, query string) ([]Record, error)
}

// constraintColumn extracts the column name from a SQLite constraint
// message such as "UNIQUE constraint failed: contacts.email".
func constraintColumn(msg string) string {
	i := strings.LastIndex(msg, ": ")
	if i < 0 {
		return ""
	}
	qualified := strings.TrimSpace(msg[i+2:])
	if j := strings.LastIndex(qualified, "."); j >= 0 {
		qualified = qualified[j+1:]
	}
	if qualified == "" || strings.ContainsAny(qualified, " (") {
		return ""
	}
	return qualified
}
