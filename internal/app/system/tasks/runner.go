// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single run. Zero means 30 seconds.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Runner runs each registered job on its own ticker until Stop is called.
type Runner struct {
	log    *zap.Logger
	jobs   []Job
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{
		log:    logger,
		stopCh: make(chan struct{}),
	}
}

// Add registers a job. Jobs added after Start are ignored.
func (r *Runner) Add(job Job) {
	r.jobs = append(r.jobs, job)
}

// Start launches one goroutine per job. Jobs first run after one interval.
func (r *Runner) Start() {
	for _, job := range r.jobs {
		if job.Interval <= 0 || job.Run == nil {
			r.log.Warn("skipping background job with no interval or run func",
				zap.String("job", job.Name))
			continue
		}
		r.wg.Add(1)
		go r.loop(job)
		r.log.Info("background job started",
			zap.String("job", job.Name),
			zap.Duration("interval", job.Interval))
	}
}

// Stop signals every job loop to exit and waits for in-flight runs.
// It is safe to call more than once.
func (r *Runner) Stop() {
	r.once.Do(func() {
		close(r.stopCh)
	})
	r.wg.Wait()
	r.log.Info("background jobs stopped")
}

func (r *Runner) loop(job Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.runOnce(job)
		}
	}
}

func (r *Runner) runOnce(job Job) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		r.log.Error("background job failed",
			zap.String("job", job.Name),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
	}
}
