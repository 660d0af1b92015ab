package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/ballbattle/internal/config"
)

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	log.Printf("[CORS] Environment: %s, FrontendURL: %s", cfg.Environment, cfg.FrontendURL)

	corsConfig := cors.Config{
		AllowMethods: []string{
			"GET", "POST", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"X-Game-Token", "Accept", "Cache-Control", "X-Requested-With",
		},
		ExposeHeaders: []string{
			"Content-Length", "X-Game-Token",
		},
		MaxAge:           12 * time.Hour, // Cache preflight responses
		AllowCredentials: true,
	}

	if cfg.Environment == "development" {
		corsConfig.AllowOriginFunc = func(origin string) bool {
			return isLocalOrigin(origin)
		}
	} else {
		corsConfig.AllowOrigins = productionOrigins(cfg)
		if len(corsConfig.AllowOrigins) == 0 {
			log.Println("[CORS] FRONTEND_URL empty; rejecting all cross-origin requests")
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		}
		log.Printf("[CORS] Production allowed origins: %v", corsConfig.AllowOrigins)
	}

	return cors.New(corsConfig)
}

// OriginAllowed reports whether a browser origin may open a websocket.
func OriginAllowed(cfg *config.Config, origin string) bool {
	if origin == "" {
		return false
	}
	if cfg.Environment == "development" {
		return isLocalOrigin(origin)
	}
	for _, o := range productionOrigins(cfg) {
		if origin == o {
			return true
		}
	}
	return false
}

// WebSocketCORSCheck validates WebSocket upgrade origins
func WebSocketCORSCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only check for WebSocket upgrade requests
		if strings.ToLower(c.GetHeader("Connection")) != "upgrade" ||
			strings.ToLower(c.GetHeader("Upgrade")) != "websocket" {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			c.AbortWithStatusJSON(400, gin.H{"error": "WebSocket origin required"})
			return
		}
		if !OriginAllowed(cfg, origin) {
			c.AbortWithStatusJSON(403, gin.H{"error": "WebSocket origin not allowed"})
			return
		}

		c.Next()
	}
}

func isLocalOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") ||
		strings.HasPrefix(origin, "http://127.0.0.1:")
}

// productionOrigins splits FRONTEND_URL, which may list several origins
// separated by commas.
func productionOrigins(cfg *config.Config) []string {
	var out []string
	for _, o := range strings.Split(cfg.FrontendURL, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}
