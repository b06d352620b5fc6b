// Package scheduler drives independently cadenced periodic jobs. Each job
// runs on its own ticker with an overlap guard: a tick that arrives while the
// previous cycle is still running is skipped, never queued, so at most one
// cycle per job is in flight at any time.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Job is one periodic action with its own cadence.
type Job struct {
	name      string
	interval  time.Duration
	immediate bool
	run       func(ctx context.Context) error

	running atomic.Bool
}

// Scheduler owns a set of jobs and runs them until the context is cancelled.
type Scheduler struct {
	jobs   []*Job
	logger zerolog.Logger
	wg     sync.WaitGroup
}

// New creates an empty scheduler.
func New(logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// Add registers a periodic job. With immediate set, the first cycle starts
// right away instead of waiting one full interval. Add must not be called
// once Run has started.
func (s *Scheduler) Add(name string, interval time.Duration, immediate bool, run func(ctx context.Context) error) {
	s.jobs = append(s.jobs, &Job{
		name:      name,
		interval:  interval,
		immediate: immediate,
		run:       run,
	})
}

// Run starts every job loop and blocks until the context is cancelled. A
// cancellation is honored at cycle boundaries: loops stop scheduling new
// cycles immediately, and Run returns only after every in-flight cycle has
// finished, so no cycle is ever cut off halfway.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.jobs) == 0 {
		return errors.New("no jobs registered")
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, job := range s.jobs {
		job := job
		g.Go(func() error {
			return s.loop(ctx, job)
		})
	}

	err := g.Wait()
	s.wg.Wait()
	s.logger.Info().Msg("Scheduler stopped")

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func (s *Scheduler) loop(ctx context.Context, job *Job) error {
	logger := s.logger.With().Str("job", job.name).Logger()
	logger.Info().Dur("interval", job.interval).Msg("Job scheduled")

	if job.immediate {
		s.launch(ctx, job, logger)
	}

	ticker := time.NewTicker(job.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("Job loop stopping")
			return ctx.Err()
		case <-ticker.C:
			s.launch(ctx, job, logger)
		}
	}
}

func (s *Scheduler) launch(ctx context.Context, job *Job, logger zerolog.Logger) {
	if !job.running.CompareAndSwap(false, true) {
		logger.Warn().Msg("Previous cycle still running, skipping tick")
		return
	}

	// The cycle keeps the parent's values but survives its cancellation, so
	// a stop request takes effect at the next cycle boundary, never mid-cycle.
	cycleCtx := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer job.running.Store(false)

		started := time.Now()
		if err := job.run(cycleCtx); err != nil {
			logger.Error().Err(err).Dur("elapsed", time.Since(started)).Msg("Cycle failed")
			return
		}
		logger.Debug().Dur("elapsed", time.Since(started)).Msg("Cycle completed")
	}()
}
