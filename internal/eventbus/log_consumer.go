package eventbus

import (
	"context"
	"log"

	"github.com/matthewbaird/cruder/internal/event"
)

// LogConsumer logs all record events for observability.
type LogConsumer struct{}

func NewLogConsumer() *LogConsumer { return &LogConsumer{} }

func (c *LogConsumer) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	log.Printf("event: %s [%s] %s — record=%s",
		evt.EventType, evt.Action, evt.Summary, evt.RecordID)
	return nil
}
