package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Keys and channels shared by the session manager, the idle worker and the
// websocket layer.
const (
	IdleSet       = "match_idle"
	EventsChannel = "match_events"
	SnapshotTTL   = time.Hour
)

// SnapshotKey is where the latest encoded snapshot of a match lives.
func SnapshotKey(gameToken string) string {
	return "match:" + gameToken + ":snapshot"
}

// Connect establishes a connection to Redis
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
