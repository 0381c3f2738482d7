package interfaces

import (
	"context"

	"drawbot/domain/entities"
	"drawbot/domain/events"
)

// LotteryStore defines durable access to the lottery document
type LotteryStore interface {
	// Load returns a copy of the persisted state. A store with nothing written yet
	// returns an empty state.
	Load(ctx context.Context) (*entities.State, error)

	// Update performs a read-modify-write of the state. If fn returns an error nothing
	// is written and that error is returned unchanged.
	Update(ctx context.Context, fn func(state *entities.State) error) error

	// Close releases any underlying resources
	Close() error
}

// EventPublisher defines the interface for publishing lottery events
type EventPublisher interface {
	Publish(event events.Event) error
}
