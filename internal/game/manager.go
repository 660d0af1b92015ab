package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/ballbattle/internal/arena"
	"github.com/playmatatu/ballbattle/internal/config"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many active sessions")
)

// Broadcaster pushes snapshots to whoever is watching a match. The websocket
// hub implements it.
type Broadcaster interface {
	BroadcastSnapshot(gameToken string, snap arena.Snapshot)
}

// GameManager owns every running session.
type GameManager struct {
	sessions    map[string]*Session // keyed by game token
	rdb         *redis.Client       // Redis client for snapshots and idle tracking
	db          *sqlx.DB            // SQL DB for match history
	config      *config.Config
	broadcaster Broadcaster
	mu          sync.RWMutex
}

var (
	// Global game manager instance
	Manager *GameManager
)

// InitializeManager initializes the global game manager with Redis, DB and config
func InitializeManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewGameManager(db, rdb, cfg)
}

// NewGameManager creates a manager. db and rdb may be nil; persistence is
// then skipped.
func NewGameManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *GameManager {
	return &GameManager{
		sessions: make(map[string]*Session),
		rdb:      rdb,
		db:       db,
		config:   cfg,
	}
}

// SetBroadcaster wires the snapshot fan-out.
func (gm *GameManager) SetBroadcaster(b Broadcaster) {
	gm.mu.Lock()
	gm.broadcaster = b
	gm.mu.Unlock()
}

// GetConfig returns the application config the manager was built with.
func (gm *GameManager) GetConfig() *config.Config {
	return gm.config
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// CreateSession racks a new match and starts ticking it. The tick loop runs
// until EndSession or Shutdown.
func (gm *GameManager) CreateSession() (*Session, error) {
	gm.mu.Lock()
	if gm.config.MaxSessions > 0 && len(gm.sessions) >= gm.config.MaxSessions {
		gm.mu.Unlock()
		return nil, ErrTooManySessions
	}

	s := &Session{
		Token:        generateToken(16),
		CreatedAt:    time.Now(),
		gm:           gm,
		done:         make(chan struct{}),
		writes:       make(chan func(), 256),
		flushed:      make(chan struct{}),
		status:       StatusInProgress,
		lastActivity: time.Now(),
	}
	m, err := arena.NewMatch(gm.config.Arena(), arena.WithObserver(sessionObserver{s: s}))
	if err != nil {
		gm.mu.Unlock()
		return nil, err
	}
	s.Match = m
	gm.sessions[s.Token] = s
	gm.mu.Unlock()

	s.ID = gm.insertSession(s.Token, m.Config().BallsPerSide)
	gm.Touch(s.Token)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.persist()
	go s.run(ctx, gm.broadcastEvery(), gm.saveEvery(m.Config()))

	log.Printf("[SESSION] Created match %s (session_id=%d, balls_per_side=%d)", s.Token, s.ID, m.Config().BallsPerSide)
	return s, nil
}

// GetSession returns a running session.
func (gm *GameManager) GetSession(token string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	s, ok := gm.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// EndSession stops the tick loop and forgets the session. The final status is
// written after every write the match already queued. Redis keeps the last
// snapshot until it expires.
func (gm *GameManager) EndSession(token string, status SessionStatus) error {
	gm.mu.Lock()
	s, ok := gm.sessions[token]
	if !ok {
		gm.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(gm.sessions, token)
	gm.mu.Unlock()

	s.cancel()
	<-s.done

	if s.Status() != StatusCompleted {
		s.setStatus(status)
	}
	final, remaining := s.Status(), s.Match.Remaining()
	s.finish(func() { gm.markEnded(s.ID, final, remaining) })
	gm.clearIdle(token)

	log.Printf("[SESSION] Ended match %s with status %s after %d launches", token, s.Status(), s.Launches())
	return nil
}

// ActiveSessions is the number of running sessions.
func (gm *GameManager) ActiveSessions() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.sessions)
}

// Snapshot returns the live state of a running match, or the last copy saved
// to Redis for one that is no longer hosted here.
func (gm *GameManager) Snapshot(token string) (arena.Snapshot, error) {
	if s, err := gm.GetSession(token); err == nil {
		return s.Match.Snapshot(), nil
	}
	return gm.LoadSnapshot(token)
}

// Shutdown ends every running session as cancelled.
func (gm *GameManager) Shutdown() {
	gm.mu.RLock()
	tokens := make([]string, 0, len(gm.sessions))
	for t := range gm.sessions {
		tokens = append(tokens, t)
	}
	gm.mu.RUnlock()

	for _, t := range tokens {
		if err := gm.EndSession(t, StatusCancelled); err != nil {
			log.Printf("[SESSION] Shutdown of %s failed: %v", t, err)
		}
	}
}

func (gm *GameManager) broadcast(token string, snap arena.Snapshot) {
	gm.mu.RLock()
	b := gm.broadcaster
	gm.mu.RUnlock()
	if b != nil {
		b.BroadcastSnapshot(token, snap)
	}
}

func (gm *GameManager) broadcastEvery() int {
	if gm.config.BroadcastEveryTicks < 1 {
		return 1
	}
	return gm.config.BroadcastEveryTicks
}

func (gm *GameManager) saveEvery(ac arena.Config) int {
	n := gm.config.SnapshotSaveSeconds * ac.TickRate
	if n < 1 {
		return ac.TickRate
	}
	return n
}
