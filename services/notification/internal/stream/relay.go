package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"task-notify/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const relayChannelPrefix = "stream:user:"

// RedisRelay fans pushes out through Redis pub/sub so that every process
// delivers to the connections it holds. Run must be running in each
// process for its local registry to receive anything.
type RedisRelay struct {
	client redis.UniversalClient
	local  *Registry
	logger *logger.Logger
}

func NewRedisRelay(client redis.UniversalClient, local *Registry, logger *logger.Logger) *RedisRelay {
	return &RedisRelay{client: client, local: local, logger: logger}
}

// PushToUser publishes the event. The count is the number of processes
// that received it, not connections.
func (r *RedisRelay) PushToUser(ctx context.Context, userID string, event Event) (int, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	n, err := r.client.Publish(ctx, relayChannelPrefix+userID, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	return int(n), nil
}

// Run subscribes to every user channel and hands events to the local
// registry until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.PSubscribe(ctx, relayChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to relay: %w", err)
	}
	r.logger.Info("[STREAM] Redis relay subscribed to %s*", relayChannelPrefix)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.deliver(ctx, msg)
		}
	}
}

func (r *RedisRelay) deliver(ctx context.Context, msg *redis.Message) {
	userID := strings.TrimPrefix(msg.Channel, relayChannelPrefix)

	var event Event
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		r.logger.Warn("[STREAM] Dropping malformed relay message on %s: %v", msg.Channel, err)
		return
	}
	if _, err := r.local.PushToUser(ctx, userID, event); err != nil {
		r.logger.Warn("[STREAM] Local delivery to %s failed: %v", userID, err)
	}
}
