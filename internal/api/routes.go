package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/ballbattle/internal/api/handlers"
	"github.com/playmatatu/ballbattle/internal/config"
	"github.com/playmatatu/ballbattle/internal/game"
	"github.com/playmatatu/ballbattle/internal/middleware"
	"github.com/playmatatu/ballbattle/internal/ws"
	"github.com/redis/go-redis/v9"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, gm *game.GameManager, hub *ws.Hub, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(gm))

		match := v1.Group("/match")
		{
			match.POST("", handlers.CreateMatch(gm, cfg))
			match.GET("/:token", handlers.GetMatch(gm))
			match.GET("/:token/history", handlers.GetMatchHistory(gm))
			match.GET("/:token/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleMatchWebSocket(gm, hub, cfg))

			owned := match.Group("/:token", handlers.PlayerAuth(cfg))
			{
				owned.POST("/restart", handlers.RestartMatch(gm, hub))
				owned.DELETE("", handlers.EndMatch(gm, hub, rdb))
			}
		}
	}
}
