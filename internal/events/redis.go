package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe3d/internal/entity"
)

// RedisBus relays events through redis pub/sub so that every server instance can
// push them to its own websocket clients. Nothing is stored in redis.
type RedisBus struct {
	logger *slog.Logger
	client *redis.Client
}

func NewRedisBus(logger *slog.Logger, client *redis.Client) *RedisBus {
	return &RedisBus{
		logger: logger.With("component", "events.redis"),
		client: client,
	}
}

func channelName(gameID string) string {
	return "game:" + gameID + ":events"
}

func (that *RedisBus) Publish(ctx context.Context, event entity.Event) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	if err = that.client.Publish(ctx, channelName(event.Payload.GameID), eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (that *RedisBus) Subscribe(ctx context.Context, gameID string) (<-chan entity.Event, func(), error) {
	log := that.logger.With("method", "Subscribe", "gameID", gameID)

	pubsub := that.client.Subscribe(ctx, channelName(gameID))

	// wait for the confirmation so no event published after return is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan entity.Event, subscriberBuffer)

	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var event entity.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Error("failed to unmarshal event", "error", err)
					continue
				}

				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, cancel, nil
}
