package models

import (
	"database/sql"
	"time"
)

// MatchSession is one arena match as recorded in Postgres.
type MatchSession struct {
	ID            int            `db:"id" json:"id"`
	GameToken     string         `db:"game_token" json:"game_token"`
	Status        string         `db:"status" json:"status"`
	BallsPerSide  int            `db:"balls_per_side" json:"balls_per_side"`
	HomeRemaining int            `db:"home_remaining" json:"home_remaining"`
	AwayRemaining int            `db:"away_remaining" json:"away_remaining"`
	Winner        sql.NullString `db:"winner" json:"winner,omitempty"`
	Restarts      int            `db:"restarts" json:"restarts"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	CompletedAt   sql.NullTime   `db:"completed_at" json:"completed_at,omitempty"`
}

// Launch is a single shot, human or automated.
type Launch struct {
	ID        int       `db:"id" json:"id"`
	SessionID int       `db:"session_id" json:"session_id"`
	LaunchNo  int       `db:"launch_no" json:"launch_no"`
	Tick      int       `db:"tick" json:"tick"`
	BodyID    int       `db:"body_id" json:"body_id"`
	Side      string    `db:"side" json:"side"`
	Actor     string    `db:"actor" json:"actor"`
	OriginX   float64   `db:"origin_x" json:"origin_x"`
	OriginY   float64   `db:"origin_y" json:"origin_y"`
	VelocityX float64   `db:"velocity_x" json:"velocity_x"`
	VelocityY float64   `db:"velocity_y" json:"velocity_y"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
