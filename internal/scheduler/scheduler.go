// Recurring automation scheduler.
//
// A cron timer drives the posting/monitoring pass. Ticks are
// single-flight: a tick that finds the previous one still running skips
// instead of stacking a second browser session on the same account.

package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Stats aggregates one automation pass.
type Stats struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Monitored  int `json:"monitored"`
}

// Runner executes one full posting/monitoring pass.
type Runner interface {
	ProcessPendingJobs(ctx context.Context) (Stats, error)
}

// WorkChecker answers the cheap "is there anything to do" question that
// gates the expensive browser startup.
type WorkChecker interface {
	PendingWork(ctx context.Context) (bool, error)
}

// Status is what the admin API reports.
type Status struct {
	Scheduled       bool      `json:"scheduled"`
	Running         bool      `json:"running"`
	Enabled         bool      `json:"enabled"`
	LastScheduledAt time.Time `json:"last_scheduled_at"`
}

type Scheduler struct {
	runner  Runner
	checker WorkChecker
	cron    *cron.Cron

	mu              sync.Mutex
	running         bool
	enabled         bool
	scheduled       bool
	lastScheduledAt time.Time

	tickTimeout time.Duration
	initialKick *time.Timer
}

func New(runner Runner, checker WorkChecker) *Scheduler {
	return &Scheduler{
		runner:      runner,
		checker:     checker,
		cron:        cron.New(),
		enabled:     true,
		tickTimeout: 10 * time.Minute,
	}
}

// Start registers the recurring tick and kicks off one initial pass
// shortly after boot, once the rest of the process has settled.
func (s *Scheduler) Start(expr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduled {
		return fmt.Errorf("scheduler already running")
	}
	if expr == "" {
		expr = "* * * * *"
	}

	if _, err := s.cron.AddFunc(expr, s.tick); err != nil {
		return fmt.Errorf("failed to register cron schedule: %w", err)
	}
	s.cron.Start()
	s.scheduled = true
	log.Printf("🚀 Job post scheduler started: %s", expr)

	s.initialKick = time.AfterFunc(30*time.Second, func() {
		log.Println("🚀 Running initial job post processing...")
		s.tick()
	})

	return nil
}

// tick runs one guarded pass. All failures are logged and absorbed; the
// next scheduled tick simply tries again.
func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Println("⏳ Previous job processing still running, skipping...")
		return
	}
	if !s.enabled {
		s.mu.Unlock()
		log.Println("⏸ Auto-scheduling disabled, skipping tick")
		return
	}
	s.running = true
	s.lastScheduledAt = time.Now()
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Automation pass panicked: %v", r)
		}
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.tickTimeout)
	defer cancel()

	pending, err := s.checker.PendingWork(ctx)
	if err != nil {
		log.Printf("❌ Pending-work check failed: %v", err)
		return
	}
	if !pending {
		log.Println("📭 No pending work, skipping browser startup")
		return
	}

	log.Println("🔄 Running scheduled job post automation...")
	stats, err := s.runner.ProcessPendingJobs(ctx)
	if err != nil {
		log.Printf("❌ Scheduled automation failed: %v", err)
		return
	}
	log.Printf("✅ Job post automation completed: %d/%d posts successful, %d posts monitored",
		stats.Successful, stats.Total, stats.Monitored)
}

// RunNow triggers one pass outside the cron cadence. It respects the
// single-flight guard but ignores the enabled flag, since it is an
// explicit operator action. Errors propagate so the API can surface
// them directly.
func (s *Scheduler) RunNow(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return Stats{}, fmt.Errorf("automation pass already running")
	}
	s.running = true
	s.lastScheduledAt = time.Now()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	return s.runner.ProcessPendingJobs(ctx)
}

func (s *Scheduler) Enable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
	log.Println("▶️ Auto-scheduling enabled")
}

func (s *Scheduler) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
	log.Println("⏸ Auto-scheduling disabled")
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Scheduled:       s.scheduled,
		Running:         s.running,
		Enabled:         s.enabled,
		LastScheduledAt: s.lastScheduledAt,
	}
}

// Stop cancels the timer. An in-flight pass is left to finish on its
// own; post statuses are recorded per job/group pair so a half-finished
// pass resumes cleanly next start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.scheduled {
		return
	}
	if s.initialKick != nil {
		s.initialKick.Stop()
	}
	s.cron.Stop()
	s.scheduled = false
	log.Println("🛑 Job post scheduler stopped")
}
