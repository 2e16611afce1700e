// Package event defines the domain events emitted after record
// mutations. Every successful create, update, and delete publishes one
// event so subscribers (logging, live feeds) can observe changes without
// coupling to the request path.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/cruder/internal/permission"
)

// DomainEvent carries the canonical shape of every record event.
type DomainEvent struct {
	ID         string            `json:"id"`
	EventType  string            `json:"event_type"`
	OccurredAt time.Time         `json:"occurred_at"`
	Resource   string            `json:"resource"`
	RecordID   string            `json:"record_id"`
	Action     string            `json:"action"`
	Actor      []string          `json:"actor,omitempty"` // roles of the caller
	Summary    string            `json:"summary"`
	Payload    json.RawMessage   `json:"payload,omitempty"`
}

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// RecordPayload carries the field values involved in a mutation.
type RecordPayload struct {
	Values map[string]any `json:"values,omitempty"`
}

// NewRecordCreated reports a successful create.
func NewRecordCreated(resource string, recordID uuid.UUID, roles []string, values map[string]any) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  resource + "_created",
		OccurredAt: time.Now(),
		Resource:   resource,
		RecordID:   recordID.String(),
		Action:     permission.ActionCreate.String(),
		Actor:      roles,
		Summary:    fmt.Sprintf("Created %s %s", resource, short(recordID)),
		Payload:    mustJSON(RecordPayload{Values: values}),
	}
}

// NewRecordUpdated reports a successful update.
func NewRecordUpdated(resource string, recordID uuid.UUID, roles []string, values map[string]any) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  resource + "_updated",
		OccurredAt: time.Now(),
		Resource:   resource,
		RecordID:   recordID.String(),
		Action:     permission.ActionUpdate.String(),
		Actor:      roles,
		Summary:    fmt.Sprintf("Updated %s %s", resource, short(recordID)),
		Payload:    mustJSON(RecordPayload{Values: values}),
	}
}

// NewRecordDeleted reports a successful delete.
func NewRecordDeleted(resource string, recordID uuid.UUID, roles []string) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  resource + "_deleted",
		OccurredAt: time.Now(),
		Resource:   resource,
		RecordID:   recordID.String(),
		Action:     permission.ActionDelete.String(),
		Actor:      roles,
		Summary:    fmt.Sprintf("Deleted %s %s", resource, short(recordID)),
	}
}

func short(id uuid.UUID) string { return id.String()[:8] }
