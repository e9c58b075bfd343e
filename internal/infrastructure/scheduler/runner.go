package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"partmatch/pkg/logger"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Runner executes a job on every tick of a cron expression. A tick that fires
// while the previous run is still going is skipped.
type Runner struct {
	name string
	cron string
	job  Job

	mutex   sync.Mutex
	running bool

	now        func() time.Time
	retryAfter time.Duration
}

func NewRunner(name, cronExpr string, job Job) (*Runner, error) {
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid cron expression for %s: %q", name, cronExpr)
	}
	return &Runner{
		name:       name,
		cron:       cronExpr,
		job:        job,
		now:        time.Now,
		retryAfter: 30 * time.Second,
	}, nil
}

// Next returns the first tick strictly after t.
func (r *Runner) Next(t time.Time) (time.Time, error) {
	return gronx.NextTickAfter(r.cron, t, false)
}

// Start runs the schedule loop until ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	logger.Info("Scheduler %s enabled with cron %q", r.name, r.cron)
	go r.loop(ctx)
}

func (r *Runner) loop(ctx context.Context) {
	for {
		next, err := r.Next(r.now())
		if err != nil {
			logger.Error("Scheduler %s: next tick failed: %v", r.name, err)
			if !sleep(ctx, r.retryAfter) {
				return
			}
			continue
		}

		if !sleep(ctx, next.Sub(r.now())) {
			logger.Info("Scheduler %s stopped", r.name)
			return
		}
		r.RunOnce(ctx)
	}
}

// RunOnce executes the job now unless a run is already in progress. It reports
// whether the job ran.
func (r *Runner) RunOnce(ctx context.Context) bool {
	r.mutex.Lock()
	if r.running {
		r.mutex.Unlock()
		logger.Warn("Scheduler %s: previous run still in progress, skipping", r.name)
		return false
	}
	r.running = true
	r.mutex.Unlock()

	defer func() {
		r.mutex.Lock()
		r.running = false
		r.mutex.Unlock()
	}()

	start := r.now()
	if err := r.job(ctx); err != nil {
		logger.Error("Scheduler %s run failed: %v", r.name, err)
		return true
	}
	logger.Info("Scheduler %s run finished in %s", r.name, r.now().Sub(start))
	return true
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
