package tasks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/studyhub/internal/app/lifecycle"
	"github.com/dalemusser/studyhub/internal/app/system/tasks"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRunner_RunsJobUntilStopped(t *testing.T) {
	var runs atomic.Int32
	r := tasks.NewRunner(zap.NewNop())
	r.Add(tasks.Job{
		Name:     "count",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	r.Start()
	waitFor(t, func() bool { return runs.Load() >= 2 })
	r.Stop()

	after := runs.Load()
	time.Sleep(40 * time.Millisecond)
	if runs.Load() != after {
		t.Errorf("job ran after Stop: %d -> %d", after, runs.Load())
	}

	// Second Stop must not panic.
	r.Stop()
}

func TestRunner_LogsJobErrors(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := tasks.NewRunner(zap.New(core))
	r.Add(tasks.Job{
		Name:     "failing",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			return errors.New("boom")
		},
	})

	r.Start()
	waitFor(t, func() bool { return logs.Len() > 0 })
	r.Stop()

	if got := logs.All()[0].ContextMap()["job"]; got != "failing" {
		t.Errorf("job field = %v, want failing", got)
	}
}

func TestRunner_SkipsInvalidJobs(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := tasks.NewRunner(zap.New(core))
	r.Add(tasks.Job{Name: "no-interval", Run: func(ctx context.Context) error { return nil }})

	r.Start()
	r.Stop()

	if logs.FilterMessage("skipping background job with no interval or run func").Len() != 1 {
		t.Error("expected invalid job to be skipped with a warning")
	}
}

type stubSweeper struct {
	calls atomic.Int32
	res   lifecycle.SweepResult
	err   error
}

func (s *stubSweeper) Sweep(ctx context.Context) (lifecycle.SweepResult, error) {
	s.calls.Add(1)
	return s.res, s.err
}

func TestExpiredGroupSweepJob(t *testing.T) {
	sweeper := &stubSweeper{res: lifecycle.SweepResult{Groups: 2, Files: 3}}
	core, logs := observer.New(zap.InfoLevel)

	job := tasks.ExpiredGroupSweepJob(sweeper, zap.New(core), time.Minute)
	if job.Name != "expired-group-sweep" || job.Interval != time.Minute {
		t.Fatalf("unexpected job %q every %v", job.Name, job.Interval)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if sweeper.calls.Load() != 1 {
		t.Errorf("Sweep called %d times, want 1", sweeper.calls.Load())
	}
	entries := logs.FilterMessage("swept expired groups").All()
	if len(entries) != 1 {
		t.Fatalf("expected one sweep log entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["groups"] != int64(2) {
		t.Errorf("groups field = %v", entries[0].ContextMap()["groups"])
	}
}

func TestExpiredGroupSweepJob_PropagatesError(t *testing.T) {
	sweeper := &stubSweeper{err: errors.New("mongo down")}
	job := tasks.ExpiredGroupSweepJob(sweeper, zap.NewNop(), time.Minute)

	if err := job.Run(context.Background()); err == nil {
		t.Error("expected sweep error to be returned")
	}
}
