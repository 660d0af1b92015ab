package game

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/playmatatu/ballbattle/internal/arena"
	"github.com/playmatatu/ballbattle/internal/models"
	rkeys "github.com/playmatatu/ballbattle/internal/redis"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// EncodeSnapshot packs a snapshot for Redis and binary websocket frames.
func EncodeSnapshot(snap arena.Snapshot) ([]byte, error) {
	return msgpack.Marshal(&snap)
}

// DecodeSnapshot reverses EncodeSnapshot.
func DecodeSnapshot(data []byte) (arena.Snapshot, error) {
	var snap arena.Snapshot
	err := msgpack.Unmarshal(data, &snap)
	return snap, err
}

// === Redis ===

func (gm *GameManager) saveSnapshot(token string, snap arena.Snapshot) {
	if gm.rdb == nil {
		return
	}
	data, err := EncodeSnapshot(snap)
	if err != nil {
		log.Printf("[SESSION] Failed to encode snapshot for %s: %v", token, err)
		return
	}
	if err := gm.rdb.SetEx(context.Background(), rkeys.SnapshotKey(token), data, rkeys.SnapshotTTL).Err(); err != nil {
		log.Printf("[SESSION] Failed to save snapshot for %s: %v", token, err)
	}
}

// LoadSnapshot reads the last saved snapshot of a match from Redis.
func (gm *GameManager) LoadSnapshot(token string) (arena.Snapshot, error) {
	if gm.rdb == nil {
		return arena.Snapshot{}, ErrSessionNotFound
	}
	data, err := gm.rdb.Get(context.Background(), rkeys.SnapshotKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return arena.Snapshot{}, ErrSessionNotFound
	}
	if err != nil {
		return arena.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return DecodeSnapshot(data)
}

// Touch pushes back the idle expiry of a match.
func (gm *GameManager) Touch(token string) {
	if s, err := gm.GetSession(token); err == nil {
		s.touch()
	}
	if gm.rdb == nil {
		return
	}
	expireAt := time.Now().Add(time.Duration(gm.config.IdleExpirySeconds) * time.Second).Unix()
	if err := gm.rdb.ZAdd(context.Background(), rkeys.IdleSet, redis.Z{Score: float64(expireAt), Member: token}).Err(); err != nil {
		log.Printf("[IDLE] Failed to schedule expiry for %s: %v", token, err)
	}
}

func (gm *GameManager) clearIdle(token string) {
	if gm.rdb == nil {
		return
	}
	gm.rdb.ZRem(context.Background(), rkeys.IdleSet, token)
}

// === Postgres ===

func (gm *GameManager) insertSession(token string, ballsPerSide int) int {
	if gm.db == nil {
		return 0
	}
	var id int
	err := gm.db.Get(&id,
		`INSERT INTO match_sessions (game_token, status, balls_per_side, home_remaining, away_remaining, created_at)
		 VALUES ($1, $2, $3, $3, $3, NOW()) RETURNING id`,
		token, string(StatusInProgress), ballsPerSide)
	if err != nil {
		log.Printf("[DB] Failed to insert match session %s: %v", token, err)
		return 0
	}
	return id
}

func (gm *GameManager) recordLaunch(sessionID, launchNo int, l arena.Launch) {
	if gm.db == nil || sessionID == 0 {
		return
	}
	row := models.Launch{
		SessionID: sessionID,
		LaunchNo:  launchNo,
		Tick:      l.Tick,
		BodyID:    l.BodyID,
		Side:      string(l.Side),
		Actor:     string(l.Actor),
		OriginX:   l.Origin.X,
		OriginY:   l.Origin.Y,
		VelocityX: l.Velocity.X,
		VelocityY: l.Velocity.Y,
	}
	_, err := gm.db.NamedExec(
		`INSERT INTO launches (session_id, launch_no, tick, body_id, side, actor, origin_x, origin_y, velocity_x, velocity_y, created_at)
		 VALUES (:session_id, :launch_no, :tick, :body_id, :side, :actor, :origin_x, :origin_y, :velocity_x, :velocity_y, NOW())`,
		row)
	if err != nil {
		log.Printf("[DB] Failed to record launch %d for session %d: %v", launchNo, sessionID, err)
	}
}

func (gm *GameManager) updateRemaining(sessionID int, r arena.Remaining) {
	if gm.db == nil || sessionID == 0 {
		return
	}
	if _, err := gm.db.Exec(`UPDATE match_sessions SET home_remaining=$1, away_remaining=$2 WHERE id=$3`, r.Home, r.Away, sessionID); err != nil {
		log.Printf("[DB] Failed to update remaining for session %d: %v", sessionID, err)
	}
}

func (gm *GameManager) markCompleted(sessionID int, winner arena.Side, r arena.Remaining) {
	if gm.db == nil || sessionID == 0 {
		return
	}
	w := sql.NullString{String: string(winner), Valid: winner != arena.SideNone}
	_, err := gm.db.Exec(
		`UPDATE match_sessions SET status=$1, winner=$2, home_remaining=$3, away_remaining=$4, completed_at=NOW() WHERE id=$5`,
		string(StatusCompleted), w, r.Home, r.Away, sessionID)
	if err != nil {
		log.Printf("[DB] Failed to mark session %d completed: %v", sessionID, err)
	}
}

func (gm *GameManager) markRestarted(sessionID, restarts, ballsPerSide int) {
	if gm.db == nil || sessionID == 0 {
		return
	}
	_, err := gm.db.Exec(
		`UPDATE match_sessions SET status=$1, restarts=$2, winner=NULL, home_remaining=$3, away_remaining=$3, completed_at=NULL WHERE id=$4`,
		string(StatusInProgress), restarts, ballsPerSide, sessionID)
	if err != nil {
		log.Printf("[DB] Failed to record restart for session %d: %v", sessionID, err)
	}
}

func (gm *GameManager) markEnded(sessionID int, status SessionStatus, r arena.Remaining) {
	if gm.db == nil || sessionID == 0 || status == StatusCompleted {
		return
	}
	_, err := gm.db.Exec(
		`UPDATE match_sessions SET status=$1, home_remaining=$2, away_remaining=$3, completed_at=COALESCE(completed_at, NOW()) WHERE id=$4`,
		string(status), r.Home, r.Away, sessionID)
	if err != nil {
		log.Printf("[DB] Failed to mark session %d %s: %v", sessionID, status, err)
	}
}

// GetMatchHistory returns the stored row and launches for a match.
func (gm *GameManager) GetMatchHistory(token string) (*models.MatchSession, []models.Launch, error) {
	if gm.db == nil {
		return nil, nil, ErrSessionNotFound
	}
	var ms models.MatchSession
	if err := gm.db.Get(&ms, `SELECT * FROM match_sessions WHERE game_token=$1`, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("load match session: %w", err)
	}
	var launches []models.Launch
	if err := gm.db.Select(&launches, `SELECT * FROM launches WHERE session_id=$1 ORDER BY launch_no`, ms.ID); err != nil {
		return nil, nil, fmt.Errorf("load launches: %w", err)
	}
	return &ms, launches, nil
}
