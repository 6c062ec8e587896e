package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/NeuralTrust/TrustFrame/pkg/infra/cache/event"
)

var errNoRedis = errors.New("cache: redis client is not configured")

type redisEventPublisher struct {
	client  Client
	channel Channel
}

func NewRedisEventPublisher(client Client, channel Channel) EventPublisher {
	return &redisEventPublisher{
		client:  client,
		channel: channel,
	}
}

func (p *redisEventPublisher) Publish(ctx context.Context, ev event.Event) error {
	if p.client == nil || p.client.RedisClient() == nil {
		return errNoRedis
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	envelope := RedisMessage{
		Type:  ev.Type(),
		Event: b,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return p.client.RedisClient().Publish(ctx, string(p.channel), data).Err()
}
