package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	rkeys "github.com/playmatatu/ballbattle/internal/redis"
	"github.com/redis/go-redis/v9"
)

// StartIdleWorker starts a background worker that expires matches nobody has
// touched for IdleExpirySeconds. Expiry times live in a Redis sorted set so
// several server instances can share the work; ZRem decides who claims a
// member.
func StartIdleWorker(ctx context.Context, gm *GameManager) {
	if gm == nil || gm.rdb == nil || gm.config == nil {
		log.Println("[IDLE] Redis or config missing; idle worker not started")
		return
	}

	interval := time.Duration(gm.config.IdleWorkerPollInterval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}

	log.Println("[IDLE] Idle worker started")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case <-ticker.C:
				gm.expireIdle(ctx, time.Now())
			}
		}
	}()
}

// expireIdle ends every match whose expiry score is at or before now and
// returns how many it claimed.
func (gm *GameManager) expireIdle(ctx context.Context, now time.Time) int {
	members, err := gm.rdb.ZRangeByScore(ctx, rkeys.IdleSet, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
	if err != nil {
		log.Printf("[IDLE] Failed to fetch idle matches: %v", err)
		return 0
	}

	claimed := 0
	for _, token := range members {
		// Attempt to remove (race-safe)
		removed, err := gm.rdb.ZRem(ctx, rkeys.IdleSet, token).Result()
		if err != nil || removed == 0 {
			continue
		}
		claimed++

		if s, err := gm.GetSession(token); err == nil {
			idle := time.Since(s.LastActivity())
			if idle < time.Duration(gm.config.IdleExpirySeconds)*time.Second {
				// Touched after the score was written; reschedule.
				gm.Touch(token)
				continue
			}
			if err := gm.EndSession(token, StatusExpired); err != nil {
				log.Printf("[IDLE] Failed to end idle match %s: %v", token, err)
			}
		}

		payload := map[string]interface{}{
			"type":       "match_expired",
			"game_token": token,
			"message":    "Match closed after inactivity",
		}
		b, _ := json.Marshal(payload)
		if n, err := gm.rdb.Publish(ctx, rkeys.EventsChannel, b).Result(); err != nil {
			log.Printf("[IDLE] publish expiry failed: game=%s err=%v", token, err)
		} else {
			log.Printf("[IDLE] published expiry: game=%s subscribers=%d", token, n)
		}
	}
	return claimed
}
