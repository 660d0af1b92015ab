package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/playmatatu/ballbattle/internal/arena"
)

// Session is one hosted match: the simulation plus the goroutine that ticks
// it and the bookkeeping needed to persist what happens.
type Session struct {
	ID        int // match_sessions.id, 0 when running without a database
	Token     string
	Match     *arena.Match
	CreatedAt time.Time

	gm      *GameManager
	cancel  context.CancelFunc
	done    chan struct{}
	writes  chan func()
	flushed chan struct{}

	mu           sync.Mutex
	status       SessionStatus
	launches     int
	lastActivity time.Time
	closed       bool
}

// Status returns the current lifecycle status.
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Launches is the number of shots taken since the session was created.
func (s *Session) Launches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launches
}

// LastActivity is when a launch, restart or touch last happened.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Done is closed once the tick loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) setStatus(st SessionStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// run ticks the match at its configured rate until ctx is cancelled.
func (s *Session) run(ctx context.Context, broadcastEvery, saveEvery int) {
	defer close(s.done)

	ticker := time.NewTicker(s.Match.Config().TickDuration())
	defer ticker.Stop()

	var (
		ticks int
		last  arena.Snapshot
	)
	for {
		select {
		case <-ctx.Done():
			s.gm.saveSnapshot(s.Token, s.Match.Snapshot())
			log.Printf("[SESSION] Tick loop for %s stopped after %d ticks", s.Token, ticks)
			return
		case <-ticker.C:
			s.Match.Step()
			ticks++

			if ticks%broadcastEvery == 0 {
				snap := s.Match.Snapshot()
				if changed(last, snap) {
					s.gm.broadcast(s.Token, snap)
				}
				last = snap
			}
			if ticks%saveEvery == 0 {
				s.gm.saveSnapshot(s.Token, s.Match.Snapshot())
			}
		}
	}
}

// persist drains queued database writes in order. Observer callbacks run
// under the match lock, so they only enqueue.
func (s *Session) persist() {
	defer close(s.flushed)
	for w := range s.writes {
		w()
	}
}

func (s *Session) enqueue(w func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.writes <- w:
	default:
		log.Printf("[DB] Write queue full for session %s, dropping write", s.Token)
	}
}

// finish queues last behind every pending write, closes the queue and
// waits for it to drain. Later enqueues are dropped.
func (s *Session) finish(last func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.flushed
		return
	}
	s.closed = true
	s.writes <- last
	close(s.writes)
	s.mu.Unlock()
	<-s.flushed
}

// changed reports whether a snapshot is worth sending. A field at rest with
// no state change produces the same frame every tick.
func changed(prev, cur arena.Snapshot) bool {
	if prev.Bodies == nil {
		return true
	}
	if prev.State != cur.State || prev.Remaining != cur.Remaining || prev.Restarts != cur.Restarts || prev.Drag != cur.Drag {
		return true
	}
	for _, b := range cur.Bodies {
		if b.Moving {
			return true
		}
	}
	for _, b := range prev.Bodies {
		if b.Moving {
			return true
		}
	}
	return false
}

// sessionObserver records match events for one session.
type sessionObserver struct {
	s *Session
}

func (o sessionObserver) OnLaunch(l arena.Launch) {
	s := o.s
	s.mu.Lock()
	s.launches++
	n := s.launches
	s.lastActivity = time.Now()
	s.mu.Unlock()

	s.enqueue(func() { s.gm.recordLaunch(s.ID, n, l) })
}

func (o sessionObserver) OnScore(r arena.Remaining) {
	s := o.s
	s.enqueue(func() { s.gm.updateRemaining(s.ID, r) })
}

func (o sessionObserver) OnGameOver(winner arena.Side, r arena.Remaining) {
	s := o.s
	s.setStatus(StatusCompleted)
	log.Printf("[SESSION] Match %s over: winner=%q home=%d away=%d", s.Token, winner, r.Home, r.Away)
	s.enqueue(func() { s.gm.markCompleted(s.ID, winner, r) })
}

func (o sessionObserver) OnRestart(restarts int) {
	s := o.s
	s.setStatus(StatusInProgress)
	s.touch()
	n := s.Match.Config().BallsPerSide
	s.enqueue(func() { s.gm.markRestarted(s.ID, restarts, n) })
}
