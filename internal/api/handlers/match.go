package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/ballbattle/internal/auth"
	"github.com/playmatatu/ballbattle/internal/config"
	"github.com/playmatatu/ballbattle/internal/game"
	rkeys "github.com/playmatatu/ballbattle/internal/redis"
	"github.com/playmatatu/ballbattle/internal/ws"
	"github.com/redis/go-redis/v9"
)

// CreateMatch starts a new match and hands back the player token that
// controls its home side.
func CreateMatch(gm *game.GameManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := gm.CreateSession()
		if err != nil {
			log.Printf("[SESSION] Create failed: %v", err)
			sessionError(c, err)
			return
		}

		ttl := time.Duration(cfg.PlayerTokenTTLMinutes) * time.Minute
		pt, err := auth.IssuePlayerToken(cfg.JWTSecret, s.Token, ttl)
		if err != nil {
			log.Printf("Failed to sign player token: %v", err)
			if err := gm.EndSession(s.Token, game.StatusCancelled); err != nil {
				log.Printf("[SESSION] Failed to end match %s after token error: %v", s.Token, err)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"game_token":   s.Token,
			"player_token": pt,
			"ws_url":       fmt.Sprintf("/api/v1/match/%s/ws?pt=%s", s.Token, pt),
			"expires_in":   int(ttl.Seconds()),
		})
	}
}

// GetMatch returns the current snapshot of a match. Matches no longer hosted
// here are served from the last copy in Redis.
func GetMatch(gm *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		snap, err := gm.Snapshot(token)
		if err != nil {
			sessionError(c, err)
			return
		}

		resp := gin.H{
			"game_token": token,
			"live":       false,
			"snapshot":   snap,
		}
		if s, err := gm.GetSession(token); err == nil {
			resp["live"] = true
			resp["status"] = s.Status()
			resp["launches"] = s.Launches()
		}
		c.JSON(http.StatusOK, resp)
	}
}

// RestartMatch re-racks a match for its player.
func RestartMatch(gm *game.GameManager, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ownsMatch(c) {
			return
		}
		token := c.Param("token")

		s, err := gm.GetSession(token)
		if err != nil {
			sessionError(c, err)
			return
		}

		s.Match.Restart()
		gm.Touch(token)
		snap := s.Match.Snapshot()
		hub.BroadcastSnapshot(token, snap)

		c.JSON(http.StatusOK, gin.H{"game_token": token, "snapshot": snap})
	}
}

// EndMatch cancels a match and tells everyone watching it.
func EndMatch(gm *game.GameManager, hub *ws.Hub, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ownsMatch(c) {
			return
		}
		token := c.Param("token")

		if err := gm.EndSession(token, game.StatusCancelled); err != nil {
			sessionError(c, err)
			return
		}

		event := ws.Message{Type: "match_cancelled", Message: "Match ended by player"}
		if rdb != nil {
			b, _ := json.Marshal(map[string]interface{}{
				"type":       event.Type,
				"game_token": token,
				"message":    event.Message,
			})
			if err := rdb.Publish(context.Background(), rkeys.EventsChannel, b).Err(); err != nil {
				log.Printf("[WS] publish cancel failed: game=%s err=%v", token, err)
				hub.BroadcastToGame(token, event)
			}
		} else {
			hub.BroadcastToGame(token, event)
		}

		c.JSON(http.StatusOK, gin.H{"game_token": token, "status": game.StatusCancelled})
	}
}

// GetMatchHistory returns the stored record and launches of a match.
func GetMatchHistory(gm *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ms, launches, err := gm.GetMatchHistory(c.Param("token"))
		if err != nil {
			sessionError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"match": ms, "launches": launches})
	}
}
