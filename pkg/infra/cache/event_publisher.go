package cache

import (
	"context"

	"github.com/NeuralTrust/TrustFrame/pkg/infra/cache/event"
)

type Channel string

const FramingEventsChannel Channel = "trustframe:framing-events"

type EventPublisher interface {
	Publish(ctx context.Context, ev event.Event) error
}
