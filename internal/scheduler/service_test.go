package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"

	logx "randommotd/pkg/logx"
)

func waitFor(t *testing.T, ch <-chan struct{}, d time.Duration, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(d):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestImmediateScheduleFirstRun(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s := &immediateSchedule{base: cron.Every(time.Minute)}

	if got := s.Next(now); !got.Equal(now) {
		t.Fatalf("first Next = %v, want %v", got, now)
	}
	if got, want := s.Next(now), now.Add(time.Minute); !got.Equal(want) {
		t.Fatalf("second Next = %v, want %v", got, want)
	}
}

func TestEveryFiresImmediately(t *testing.T) {
	t.Parallel()
	s := New(logx.Nop())
	s.Start()
	defer s.Stop(context.Background())

	fired := make(chan struct{}, 4)
	if err := s.Every("rotate", time.Hour, func(ctx context.Context) { fired <- struct{}{} }); err != nil {
		t.Fatalf("Every: %v", err)
	}
	waitFor(t, fired, 2*time.Second, "immediate run")

	entries := s.Entries()
	if len(entries) != 1 || entries[0].Name != "rotate" || entries[0].Every != time.Hour {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestEveryBeforeStart(t *testing.T) {
	t.Parallel()
	s := New(logx.Nop())
	fired := make(chan struct{}, 4)
	if err := s.Every("rotate", time.Hour, func(ctx context.Context) { fired <- struct{}{} }); err != nil {
		t.Fatalf("Every: %v", err)
	}
	select {
	case <-fired:
		t.Fatal("job ran before Start")
	case <-time.After(50 * time.Millisecond):
	}
	s.Start()
	defer s.Stop(context.Background())
	waitFor(t, fired, 2*time.Second, "run after Start")
}

func TestEveryRepeats(t *testing.T) {
	t.Parallel()
	s := New(logx.Nop())
	s.Start()
	defer s.Stop(context.Background())

	var n atomic.Int32
	second := make(chan struct{}, 1)
	err := s.Every("fast", time.Second, func(ctx context.Context) {
		if n.Add(1) == 2 {
			second <- struct{}{}
		}
	})
	if err != nil {
		t.Fatalf("Every: %v", err)
	}
	waitFor(t, second, 3*time.Second, "second run")
}

func TestPanickingJobIsRecovered(t *testing.T) {
	t.Parallel()
	s := New(logx.Nop())
	s.Start()
	defer s.Stop(context.Background())

	var n atomic.Int32
	again := make(chan struct{}, 1)
	err := s.Every("boom", time.Second, func(ctx context.Context) {
		if n.Add(1) == 2 {
			again <- struct{}{}
			return
		}
		panic("boom")
	})
	if err != nil {
		t.Fatalf("Every: %v", err)
	}
	waitFor(t, again, 3*time.Second, "run after panic")
}

func TestEveryValidation(t *testing.T) {
	t.Parallel()
	s := New(logx.Nop())
	job := func(ctx context.Context) {}
	if err := s.Every("", time.Second, job); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := s.Every("x", 0, job); err == nil {
		t.Fatal("expected error for zero interval")
	}
	if err := s.Every("x", time.Second, nil); err == nil {
		t.Fatal("expected error for nil job")
	}
}

func TestRemoveAndUpsert(t *testing.T) {
	t.Parallel()
	s := New(logx.Nop())
	job := func(ctx context.Context) {}
	_ = s.Every("x", time.Minute, job)
	_ = s.Every("x", time.Hour, job)

	entries := s.Entries()
	if len(entries) != 1 || entries[0].Every != time.Hour {
		t.Fatalf("upsert failed: %+v", entries)
	}
	if !s.Remove("x") {
		t.Fatal("Remove reported nothing removed")
	}
	if s.Remove("x") {
		t.Fatal("second Remove should report false")
	}
	if len(s.Entries()) != 0 {
		t.Fatal("entries should be empty")
	}
}

func TestStopCancelsJobContext(t *testing.T) {
	t.Parallel()
	s := New(logx.Nop())
	s.Start()

	started := make(chan struct{})
	done := make(chan struct{})
	err := s.Every("long", time.Hour, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(done)
	})
	if err != nil {
		t.Fatalf("Every: %v", err)
	}
	waitFor(t, started, 2*time.Second, "job start")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Stop(ctx)
	waitFor(t, done, time.Second, "job to observe cancellation")
}
