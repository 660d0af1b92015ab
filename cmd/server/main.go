package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/playmatatu/ballbattle/internal/api"
	"github.com/playmatatu/ballbattle/internal/config"
	"github.com/playmatatu/ballbattle/internal/database"
	"github.com/playmatatu/ballbattle/internal/game"
	"github.com/playmatatu/ballbattle/internal/migrations"
	"github.com/playmatatu/ballbattle/internal/redis"
	"github.com/playmatatu/ballbattle/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()
	if err := cfg.Arena().Validate(); err != nil {
		log.Fatalf("Invalid arena configuration: %v", err)
	}

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if cfg.MigrateOnStart {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Game Manager with Redis and config, snapshots fan out through the hub
	game.InitializeManager(db, rdb, cfg)
	game.Manager.SetBroadcaster(ws.GameHub)

	// Relay match events published by any instance to local websocket clients
	ws.StartEventSubscriber(ctx, rdb, ws.GameHub)

	// Start idle worker for abandoned matches
	game.StartIdleWorker(ctx, game.Manager)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, game.Manager, ws.GameHub, rdb, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		log.Printf("Starting Ball Battle server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	game.Manager.Shutdown()
	log.Println("Server stopped")
}
