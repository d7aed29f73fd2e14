package websocket

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/go-redis/redis/v8"
)

// roomChannelPrefix namespaces the Redis channels that carry room events
// between the REST processes and the ws-server.
const roomChannelPrefix = "support:room:"

func roomChannel(room string) string {
	return roomChannelPrefix + room
}

// Publisher sends events to rooms hosted by another process.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, room, event string, data interface{}) error {
	if room == "" {
		return fmt.Errorf("websocket publish: room required")
	}
	if p == nil || p.client == nil {
		return fmt.Errorf("websocket publish: redis client not initialised")
	}

	frame, err := encodeEnvelope(event, data)
	if err != nil {
		return fmt.Errorf("websocket publish: marshal payload: %w", err)
	}

	if err := p.client.Publish(ctx, roomChannel(room), string(frame)).Err(); err != nil {
		return fmt.Errorf("websocket publish: redis publish: %w", err)
	}
	return nil
}

// Relay forwards every published room event to the local hub until ctx ends.
func Relay(ctx context.Context, client *redis.Client, hub *Hub) {
	pattern := roomChannelPrefix + "*"
	log.Printf("[WEBSOCKET] subscribing to redis pattern %s", pattern)
	sub := client.PSubscribe(ctx, pattern)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[WEBSOCKET] relay stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				log.Printf("[WEBSOCKET] relay channel closed")
				return
			}
			room := strings.TrimPrefix(msg.Channel, roomChannelPrefix)
			if room == "" {
				continue
			}
			hub.forwardRoom(room, []byte(msg.Payload))
		}
	}
}
