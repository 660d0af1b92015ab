package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/playmatatu/ballbattle/internal/arena"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Sessions
	TickRate               int
	BroadcastEveryTicks    int
	SnapshotSaveSeconds    int
	IdleExpirySeconds      int
	IdleWorkerPollInterval int
	MaxSessions            int

	// Arena tuning
	ArenaWidth       float64
	ArenaHeight      float64
	BallRadius       float64
	BallsPerSide     int
	ArenaGravity     float64
	ArenaFriction    float64
	ArenaRestitution float64
	ActorDelayMinMs  int
	ActorDelayMaxMs  int
	ActorSpeedMin    float64
	ActorSpeedMax    float64

	// Security
	JWTSecret             string
	PlayerTokenTTLMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/ballbattle?sslmode=disable"),
		MigrateOnStart: getEnv("MIGRATE_ON_START", "false") == "true",

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Sessions
		TickRate:               getEnvInt("TICK_RATE", arena.DefaultTickRate),
		BroadcastEveryTicks:    getEnvInt("BROADCAST_EVERY_TICKS", 2),
		SnapshotSaveSeconds:    getEnvInt("SNAPSHOT_SAVE_SECONDS", 5),
		IdleExpirySeconds:      getEnvInt("IDLE_EXPIRY_SECONDS", 600),
		IdleWorkerPollInterval: getEnvInt("IDLE_WORKER_POLL_INTERVAL", 5),
		MaxSessions:            getEnvInt("MAX_SESSIONS", 200),

		// Arena tuning
		ArenaWidth:       getEnvFloat("ARENA_WIDTH", arena.DefaultWidth),
		ArenaHeight:      getEnvFloat("ARENA_HEIGHT", arena.DefaultHeight),
		BallRadius:       getEnvFloat("BALL_RADIUS", arena.DefaultBallRadius),
		BallsPerSide:     getEnvInt("BALLS_PER_SIDE", arena.DefaultBallsPerSide),
		ArenaGravity:     getEnvFloat("ARENA_GRAVITY", arena.DefaultGravity),
		ArenaFriction:    getEnvFloat("ARENA_FRICTION", arena.DefaultFriction),
		ArenaRestitution: getEnvFloat("ARENA_RESTITUTION", arena.DefaultRestitution),
		ActorDelayMinMs:  getEnvInt("ACTOR_DELAY_MIN_MS", 500),
		ActorDelayMaxMs:  getEnvInt("ACTOR_DELAY_MAX_MS", 1000),
		ActorSpeedMin:    getEnvFloat("ACTOR_SPEED_MIN", arena.ActorSpeedMin),
		ActorSpeedMax:    getEnvFloat("ACTOR_SPEED_MAX", arena.ActorSpeedMax),

		// Security
		JWTSecret:             getEnv("JWT_SECRET", "change-me-in-production"),
		PlayerTokenTTLMinutes: getEnvInt("PLAYER_TOKEN_TTL_MINUTES", 120),
	}
}

// Arena builds the simulation tuning from the environment overrides. The
// gap always scales with the ball radius.
func (c *Config) Arena() arena.Config {
	ac := arena.DefaultConfig()
	ac.Width = c.ArenaWidth
	ac.Height = c.ArenaHeight
	ac.BallRadius = c.BallRadius
	ac.GapRadius = 2 * c.BallRadius
	ac.BallsPerSide = c.BallsPerSide
	ac.TickRate = c.TickRate
	ac.Gravity = c.ArenaGravity
	ac.Friction = c.ArenaFriction
	ac.Restitution = c.ArenaRestitution
	ac.ActorDelayMin = time.Duration(c.ActorDelayMinMs) * time.Millisecond
	ac.ActorDelayMax = time.Duration(c.ActorDelayMaxMs) * time.Millisecond
	ac.ActorSpeedMin = c.ActorSpeedMin
	ac.ActorSpeedMax = c.ActorSpeedMax
	return ac
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
