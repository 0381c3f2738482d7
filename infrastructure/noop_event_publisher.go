package infrastructure

import (
	"drawbot/domain/events"
	"drawbot/domain/interfaces"
)

var _ interfaces.EventPublisher = (*NoopEventPublisher)(nil)

// NoopEventPublisher drops lottery events. The run command falls back to it when
// NATS_SERVERS is empty, so draws never depend on a broker being configured.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a publisher that discards every event
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish accepts the event and discards it
func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
