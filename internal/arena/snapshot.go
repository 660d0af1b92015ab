package arena

// BodySnapshot is a read-only copy of one body.
type BodySnapshot struct {
	ID     int     `json:"id" msgpack:"id"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	VX     float64 `json:"vx" msgpack:"vx"`
	VY     float64 `json:"vy" msgpack:"vy"`
	Radius float64 `json:"radius" msgpack:"radius"`
	Side   Side    `json:"side" msgpack:"side"`
	Moving bool    `json:"moving" msgpack:"moving"`
	Scored bool    `json:"scored" msgpack:"scored"`
}

// Snapshot is everything a renderer or scoreboard needs for one tick. It
// shares no memory with the match.
type Snapshot struct {
	Tick      int            `json:"tick" msgpack:"tick"`
	State     TurnState      `json:"state" msgpack:"state"`
	Bounds    Bounds         `json:"bounds" msgpack:"bounds"`
	Obstacle  Obstacle       `json:"obstacle" msgpack:"obstacle"`
	Bodies    []BodySnapshot `json:"bodies" msgpack:"bodies"`
	Remaining Remaining      `json:"remaining" msgpack:"remaining"`
	GameOver  bool           `json:"game_over" msgpack:"game_over"`
	Winner    Side           `json:"winner,omitempty" msgpack:"winner,omitempty"`
	Drag      DragState      `json:"drag" msgpack:"drag"`
	Restarts  int            `json:"restarts" msgpack:"restarts"`
}

// Snapshot copies the current state.
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	bodies := make([]BodySnapshot, len(m.all))
	for i, b := range m.all {
		bodies[i] = BodySnapshot{
			ID:     b.ID,
			X:      b.Pos.X,
			Y:      b.Pos.Y,
			VX:     b.Vel.X,
			VY:     b.Vel.Y,
			Radius: b.Radius(),
			Side:   b.Side,
			Moving: b.Moving,
			Scored: b.Scored(),
		}
	}

	state := m.turn.State()
	return Snapshot{
		Tick:      m.tick,
		State:     state,
		Bounds:    m.bounds,
		Obstacle:  m.obstacle,
		Bodies:    bodies,
		Remaining: m.remainingLocked(),
		GameOver:  state == StateGameOver,
		Winner:    m.winner,
		Drag:      m.turn.Drag(),
		Restarts:  m.restarts,
	}
}

// Body looks up a body by ID.
func (s Snapshot) Body(id int) (BodySnapshot, bool) {
	for _, b := range s.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return BodySnapshot{}, false
}
