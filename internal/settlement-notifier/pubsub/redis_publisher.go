package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/match-bid-platform/pkg/contracts/events"
)

// RedisBroadcaster publica LiveUpdate no canal de Pub/Sub lido pelo live-service
type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, u events.LiveUpdate) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, payload).Err()
}
