package arena

import "sort"

type taskKind int

const (
	taskActorAct taskKind = iota
)

func (k taskKind) String() string {
	switch k {
	case taskActorAct:
		return "actor_act"
	}
	return "unknown"
}

type task struct {
	due  int
	seq  int
	kind taskKind
}

// Scheduler is a tick-indexed task queue. It is drained once per simulation
// step, so a delayed action can never run between two physics updates and a
// cancelled task can never fire into a reset match.
type Scheduler struct {
	tasks []task
	seq   int
}

// After queues kind to run once now+ticks is reached.
func (s *Scheduler) After(now, ticks int, kind taskKind) {
	s.seq++
	s.tasks = append(s.tasks, task{due: now + ticks, seq: s.seq, kind: kind})
}

// Due removes and returns every task whose tick has arrived, oldest first.
func (s *Scheduler) Due(now int) []taskKind {
	if len(s.tasks) == 0 {
		return nil
	}
	sort.Slice(s.tasks, func(i, j int) bool {
		if s.tasks[i].due != s.tasks[j].due {
			return s.tasks[i].due < s.tasks[j].due
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})

	n := 0
	for n < len(s.tasks) && s.tasks[n].due <= now {
		n++
	}
	if n == 0 {
		return nil
	}
	due := make([]taskKind, n)
	for i := 0; i < n; i++ {
		due[i] = s.tasks[i].kind
	}
	s.tasks = append(s.tasks[:0], s.tasks[n:]...)
	return due
}

// Cancel drops everything queued.
func (s *Scheduler) Cancel() {
	s.tasks = nil
}

// Pending is the number of queued tasks.
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}
