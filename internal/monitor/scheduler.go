package monitor

import (
	"context"
	"runtime/debug"
	"time"

	"codeberg.org/mutker/lhmoled/internal/logger"
)

// DefaultTick is how often the scheduler checks for due tasks.
const DefaultTick = 200 * time.Millisecond

type task struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context)
	lastRun  time.Time
}

// Scheduler runs periodic tasks one at a time on a single goroutine. It
// ticks at a fixed base interval and runs the tasks that are due, in the
// order they were added. A task first runs one interval after Run starts.
type Scheduler struct {
	tick  time.Duration
	now   func() time.Time
	tasks []*task
}

func NewScheduler(tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Scheduler{tick: tick, now: time.Now}
}

// Every registers fn to run every interval.
func (s *Scheduler) Every(name string, interval time.Duration, fn func(ctx context.Context)) {
	s.tasks = append(s.tasks, &task{name: name, interval: interval, run: fn})
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	start := s.now()
	for _, t := range s.tasks {
		t.lastRun = start
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.runDue(ctx, s.now())
		}
	}
}

// runDue runs every task whose interval has elapsed at now.
//
// lastRun is set when a task starts, so a slow task shifts its own schedule
// by its run time.
func (s *Scheduler) runDue(ctx context.Context, now time.Time) {
	for _, t := range s.tasks {
		if ctx.Err() != nil {
			return
		}
		if now.Sub(t.lastRun) < t.interval {
			continue
		}
		t.lastRun = now
		s.safeRun(ctx, t)
	}
}

func (s *Scheduler) safeRun(ctx context.Context, t *task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("task", t.name).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Task panicked")
		}
	}()

	t.run(ctx)
}
