package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/openquest/dungeonmaster/pkg/state"
)

const channelPrefix = "dungeonmaster:events:"

// GameEvent is a store change notification on the wire, tagged with the
// game it belongs to.
type GameEvent struct {
	GameID    string          `json:"game_id"`
	Type      state.EventType `json:"type"`
	MessageID string          `json:"message_id,omitempty"`
}

// Broadcaster relays store change events through Redis Pub/Sub so
// listeners outside the request path (the events SSE endpoint, other
// API replicas) see mutations as they happen.
type Broadcaster struct {
	client *redis.Client
	logger *slog.Logger
}

// NewBroadcaster creates a broadcaster on an existing Redis client.
func NewBroadcaster(client *redis.Client, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		client: client,
		logger: logger,
	}
}

// Publish sends a store event to the game's channel. Publish failures
// are logged and swallowed; event delivery is best effort and never
// blocks game progress.
func (b *Broadcaster) Publish(ctx context.Context, gameID uuid.UUID, ev state.Event) {
	event := GameEvent{
		GameID:    gameID.String(),
		Type:      ev.Type,
		MessageID: ev.MessageID,
	}

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "type", ev.Type)
		return
	}

	channel := channelPrefix + gameID.String()
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", ev.Type)
}

// Subscribe listens for events on a game's channel. The returned
// channel closes when ctx is cancelled or the returned stop function is
// called.
func (b *Broadcaster) Subscribe(ctx context.Context, gameID uuid.UUID) (<-chan GameEvent, func()) {
	channel := channelPrefix + gameID.String()
	sub := b.client.Subscribe(ctx, channel)

	// Wait for the subscription confirmation so no event published
	// after this call returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		b.logger.Error("Failed to subscribe", "error", err, "channel", channel)
	}

	out := make(chan GameEvent)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var event GameEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("Skipping malformed event", "error", err, "channel", channel)
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() {
		_ = sub.Close()
	}
	return out, stop
}
