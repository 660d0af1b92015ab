package ws

import (
	"context"
	"encoding/json"
	"log"

	rkeys "github.com/playmatatu/ballbattle/internal/redis"
	"github.com/redis/go-redis/v9"
)

// StartEventSubscriber relays match events published by any server instance
// to the clients connected here.
func StartEventSubscriber(ctx context.Context, rdb *redis.Client, h *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, rkeys.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", rkeys.EventsChannel)
		for msg := range ch {
			h.handleEvent(msg.Payload)
		}
	}()
}

// handleEvent decodes one published event and broadcasts it to the match room.
func (h *Hub) handleEvent(payload string) {
	var event struct {
		Type      string `json:"type"`
		GameToken string `json:"game_token"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		log.Printf("[WS] invalid event payload: %v", err)
		return
	}

	switch event.Type {
	case "match_expired", "match_cancelled":
		if h.RoomSize(event.GameToken) == 0 {
			log.Printf("[WS] no room for match %s; %s will not be broadcast", event.GameToken, event.Type)
			return
		}
		log.Printf("[WS] broadcasting %s for match %s (room_size=%d)", event.Type, event.GameToken, h.RoomSize(event.GameToken))
		h.BroadcastToGame(event.GameToken, Message{Type: event.Type, Message: event.Message})
	default:
		log.Printf("[WS] unknown event type: %s", event.Type)
	}
}
