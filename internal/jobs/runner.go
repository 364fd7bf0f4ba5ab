// Package jobs runs periodic background tasks on tickers.
package jobs

import (
	"context"
	"sync"
	"time"

	"timeclock/internal/logger"
)

type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Func adapts a function to Job.
type Func struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (f Func) Name() string                  { return f.JobName }
func (f Func) Run(ctx context.Context) error { return f.Fn(ctx) }

type schedule struct {
	job      Job
	interval time.Duration
}

// Runner ticks each job on its own interval until the context is cancelled.
// Errors are logged; a failing job keeps its schedule.
type Runner struct {
	schedules []schedule
	wg        sync.WaitGroup
}

func NewRunner() *Runner {
	return &Runner{}
}

// Every registers job to run each interval. Must be called before Start.
func (r *Runner) Every(interval time.Duration, job Job) {
	r.schedules = append(r.schedules, schedule{job: job, interval: interval})
}

func (r *Runner) Start(ctx context.Context) {
	for _, s := range r.schedules {
		r.wg.Add(1)
		go r.loop(ctx, s)
	}
}

// Wait blocks until every loop has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, s schedule) {
	defer r.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info("job.started", "job", s.job.Name(), "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("job.stopped", "job", s.job.Name())
			return
		case <-ticker.C:
			r.runOnce(ctx, s.job)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, job Job) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("job.panic", "job", job.Name(), "panic", p)
		}
	}()
	if err := job.Run(ctx); err != nil {
		logger.Error("job.failed", "job", job.Name(), "err", err)
	}
}
