package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRun_ExecutesOnInterval(t *testing.T) {
	var runs atomic.Int32
	s := New(zerolog.Nop())
	s.Add("evaluate", 20*time.Millisecond, false, func(_ context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}

	if got := runs.Load(); got < 3 {
		t.Errorf("expected at least 3 cycles, got %d", got)
	}
}

func TestRun_ImmediateJob(t *testing.T) {
	var runs atomic.Int32
	s := New(zerolog.Nop())
	s.Add("report", time.Hour, true, func(_ context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}

	if got := runs.Load(); got != 1 {
		t.Errorf("expected exactly 1 immediate cycle, got %d", got)
	}
}

func TestRun_OverlappingTicksSkipped(t *testing.T) {
	var starts atomic.Int32
	release := make(chan struct{})

	s := New(zerolog.Nop())
	s.Add("evaluate", 10*time.Millisecond, true, func(_ context.Context) error {
		starts.Add(1)
		<-release
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Let several ticks elapse while the first cycle is blocked, then
		// stop the scheduler and unblock the cycle so Run can drain.
		time.Sleep(100 * time.Millisecond)
		cancel()
		close(release)
	}()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}

	if got := starts.Load(); got != 1 {
		t.Errorf("expected overlapping ticks to be skipped, got %d cycle starts", got)
	}
}

func TestRun_StopDrainsInFlightCycle(t *testing.T) {
	var completed atomic.Bool
	s := New(zerolog.Nop())
	s.Add("evaluate", 10*time.Millisecond, true, func(_ context.Context) error {
		time.Sleep(60 * time.Millisecond)
		completed.Store(true)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}

	// Run must not return while a cycle is still in flight.
	if !completed.Load() {
		t.Error("expected the in-flight cycle to finish before Run returned")
	}
}

func TestRun_CycleContextSurvivesStop(t *testing.T) {
	var interrupted atomic.Bool
	s := New(zerolog.Nop())
	s.Add("evaluate", 10*time.Millisecond, true, func(ctx context.Context) error {
		time.Sleep(60 * time.Millisecond)
		if ctx.Err() != nil {
			interrupted.Store(true)
		}
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}

	if interrupted.Load() {
		t.Error("expected the cycle context to stay live through a stop request")
	}
}

func TestRun_CycleErrorKeepsScheduling(t *testing.T) {
	var runs atomic.Int32
	s := New(zerolog.Nop())
	s.Add("evaluate", 20*time.Millisecond, true, func(_ context.Context) error {
		runs.Add(1)
		return errors.New("cycle failed")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("expected cycle errors to stay contained, got %v", err)
	}

	if got := runs.Load(); got < 2 {
		t.Errorf("expected failing job to keep being scheduled, got %d runs", got)
	}
}

func TestRun_IndependentCadences(t *testing.T) {
	var fast, slow atomic.Int32
	s := New(zerolog.Nop())
	s.Add("fast", 10*time.Millisecond, false, func(_ context.Context) error {
		fast.Add(1)
		return nil
	})
	s.Add("slow", 60*time.Millisecond, false, func(_ context.Context) error {
		slow.Add(1)
		// A slow cycle must not hold up the fast job.
		time.Sleep(30 * time.Millisecond)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}

	if fast.Load() <= slow.Load() {
		t.Errorf("expected the fast job to run more often: fast=%d slow=%d", fast.Load(), slow.Load())
	}
	if slow.Load() < 1 {
		t.Errorf("expected the slow job to run at least once, got %d", slow.Load())
	}
}

func TestRun_NoJobs(t *testing.T) {
	s := New(zerolog.Nop())
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error when no jobs are registered, got nil")
	}
}
