// Package scheduler runs recurring background jobs until the process
// context is cancelled.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/metrics"
)

// Job is a recurring task. Next returns the first run time strictly after t.
type Job struct {
	Name string
	Next func(t time.Time) time.Time
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	jobs    []Job
	logger  logger.ILogger
	metrics *metrics.Metrics

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

func New(log logger.ILogger, m *metrics.Metrics, jobs ...Job) *Scheduler {
	return &Scheduler{
		jobs:    jobs,
		logger:  log,
		metrics: m,
		now:     time.Now,
		after:   time.After,
	}
}

func (s *Scheduler) Jobs() []Job {
	return append([]Job(nil), s.jobs...)
}

// Run blocks until ctx is done and every job in flight has returned.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			s.loop(ctx, job)
		}(job)
	}
	s.logger.Info("Scheduler", "Scheduled jobs started", map[string]interface{}{"jobs": len(s.jobs)})
	wg.Wait()
	s.logger.Info("Scheduler", "Scheduled jobs stopped", nil)
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	for {
		now := s.now()
		wait := job.Next(now).Sub(now)

		select {
		case <-ctx.Done():
			return
		case <-s.after(wait):
		}
		if ctx.Err() != nil {
			return
		}
		s.runOnce(ctx, job)
	}
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	start := s.now()
	result := "ok"
	defer func() {
		if r := recover(); r != nil {
			result = "panic"
			s.logger.Error("Scheduler", "Job panicked", map[string]interface{}{
				"job":   job.Name,
				"panic": fmt.Sprint(r),
			})
		}
		if s.metrics != nil {
			s.metrics.JobRuns.WithLabelValues(job.Name, result).Inc()
		}
	}()

	if err := job.Run(ctx); err != nil {
		result = "error"
		s.logger.Error("Scheduler", "Job failed", map[string]interface{}{
			"job":   job.Name,
			"error": err.Error(),
		})
		return
	}
	s.logger.Info("Scheduler", "Job finished", map[string]interface{}{
		"job":      job.Name,
		"duration": s.now().Sub(start).String(),
	})
}

// Weekly fires on day at hour:00 in the location of the time it is given.
func Weekly(day time.Weekday, hour int) func(time.Time) time.Time {
	return func(t time.Time) time.Time {
		next := time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
		next = next.AddDate(0, 0, (int(day)-int(t.Weekday())+7)%7)
		if !next.After(t) {
			next = next.AddDate(0, 0, 7)
		}
		return next
	}
}

// Daily fires every day at hour:00.
func Daily(hour int) func(time.Time) time.Time {
	return func(t time.Time) time.Time {
		next := time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
		if !next.After(t) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	}
}
