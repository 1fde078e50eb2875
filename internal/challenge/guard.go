package challenge

import (
	"sync"
	"time"
)

// Guard is the process-wide mutual exclusion for challenge handling.
// The scheduler can invoke login from overlapping triggers (cron tick
// plus a manual API run); only one of them may sit in a manual wait for
// the same account at a time.
type Guard struct {
	mu            sync.Mutex
	inProgress    bool
	lastCompleted time.Time
}

func NewGuard() *Guard {
	return &Guard{}
}

// TryAcquire claims the guard. Returns false if another run already
// holds it.
func (g *Guard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inProgress {
		return false
	}
	g.inProgress = true
	return true
}

// Release marks the current handling attempt finished and stamps the
// completion time other runs wait on.
func (g *Guard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inProgress = false
	g.lastCompleted = time.Now()
}

// WaitForCompletion blocks (bounded) until the holder releases the
// guard. Returns true if it was released within the timeout.
func (g *Guard) WaitForCompletion(timeout, tick time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		g.mu.Lock()
		busy := g.inProgress
		g.mu.Unlock()
		if !busy {
			return true
		}
		time.Sleep(tick)
	}
	return false
}

// LastCompleted returns when the most recent handling attempt finished.
func (g *Guard) LastCompleted() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastCompleted
}
