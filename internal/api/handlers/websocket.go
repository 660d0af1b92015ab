package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/ballbattle/internal/config"
	"github.com/playmatatu/ballbattle/internal/game"
	"github.com/playmatatu/ballbattle/internal/ws"
)

// HandleMatchWebSocket handles real-time match communication
func HandleMatchWebSocket(gm *game.GameManager, hub *ws.Hub, cfg *config.Config) gin.HandlerFunc {
	return ws.HandleWebSocket(hub, gm, cfg)
}
