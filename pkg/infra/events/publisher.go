package events

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const DefaultChannel = "moderation:verdicts"

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type redisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &redisPublisher{
		client:  client,
		channel: channel,
	}
}

func (p *redisPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := Encode(ev)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", ev.Type(), err)
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}

// NoopPublisher drops every event. Used when redis is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error {
	return nil
}
