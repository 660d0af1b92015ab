package game

// SessionStatus is the lifecycle of a hosted match as stored in
// match_sessions.status.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "IN_PROGRESS"
	StatusCompleted  SessionStatus = "COMPLETED"
	StatusCancelled  SessionStatus = "CANCELLED"
	StatusExpired    SessionStatus = "EXPIRED"
)

// Terminal reports whether a session in this status has been shut down.
func (s SessionStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusExpired
}
