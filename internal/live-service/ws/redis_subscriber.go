package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/pkg/contracts/events"
)

// StartRedisSubscriber escuta o canal Redis Pub/Sub e repassa cada LiveUpdate ao Hub.
// A goroutine termina quando ctx é cancelado.
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var upd events.LiveUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil {
					log.Warn("live update unmarshal failed", zap.Error(err))
					continue
				}
				hub.Broadcast(upd)
			}
		}
	}()
}
