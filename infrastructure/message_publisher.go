package infrastructure

import (
	"context"
)

var _ MessagePublisher = (*NATSClient)(nil)

// MessagePublisher sends encoded lottery event envelopes to a subject. NATSClient is the
// production implementation; tests record what was sent.
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}
