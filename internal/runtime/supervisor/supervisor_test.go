package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStopWaitsForGoroutines(t *testing.T) {
	s := New(context.Background())
	exited := make(chan struct{})
	s.Go("waiter", func(ctx context.Context) error {
		<-ctx.Done()
		close(exited)
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case <-exited:
	default:
		t.Fatal("goroutine did not exit before Stop returned")
	}
	if s.Err() != nil {
		t.Fatalf("context.Canceled should not be recorded, got %v", s.Err())
	}
}

func TestPanicIsRecovered(t *testing.T) {
	s := New(context.Background(), WithCancelOnError(true))
	s.Go("boom", func(ctx context.Context) error { panic("boom") })

	select {
	case <-s.Context().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("cancel-on-error did not cancel context")
	}
	_ = s.Stop(context.Background())
	if s.Err() == nil || s.Counters().Panics != 1 {
		t.Fatalf("err=%v counters=%+v", s.Err(), s.Counters())
	}
}

func TestFirstErrorWins(t *testing.T) {
	s := New(context.Background())
	first := errors.New("first")
	done := make(chan struct{})
	s.Go("a", func(ctx context.Context) error { defer close(done); return first })
	<-done
	s.Go("b", func(ctx context.Context) error { return errors.New("second") })
	_ = s.Stop(context.Background())

	if !errors.Is(s.Err(), first) {
		t.Fatalf("Err = %v, want wrapping %v", s.Err(), first)
	}
	if got := s.Counters().Started; got != 2 {
		t.Fatalf("Started = %d, want 2", got)
	}
}
