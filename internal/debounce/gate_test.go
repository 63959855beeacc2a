package debounce

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedule_CollapsesBurstToLastOperation(t *testing.T) {
	g := New(nil)
	defer g.Close()

	var mu sync.Mutex
	var applied []string
	started := int32(0)

	mk := func(name string) Operation {
		return func(ctx context.Context) (func(), error) {
			atomic.AddInt32(&started, 1)
			return func() {
				mu.Lock()
				applied = append(applied, name)
				mu.Unlock()
			}, nil
		}
	}

	g.Schedule("script", 50*time.Millisecond, mk("application"))
	g.Schedule("script", 50*time.Millisecond, mk("portfolio"))
	g.Schedule("script", 50*time.Millisecond, mk("decline"))

	time.Sleep(200 * time.Millisecond)

	if n := atomic.LoadInt32(&started); n != 1 {
		t.Fatalf("expected exactly 1 operation started, got %d", n)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(applied) != 1 || applied[0] != "decline" {
		t.Fatalf("expected only decline applied, got %v", applied)
	}
}

func TestSchedule_LastScheduledWins(t *testing.T) {
	g := New(nil)
	defer g.Close()

	var mu sync.Mutex
	var winner string

	r1Release := make(chan struct{})
	r1 := func(ctx context.Context) (func(), error) {
		<-r1Release // resolves after r2
		return func() {
			mu.Lock()
			winner = "r1"
			mu.Unlock()
		}, nil
	}
	r2 := func(ctx context.Context) (func(), error) {
		return func() {
			mu.Lock()
			winner = "r2"
			mu.Unlock()
		}, nil
	}

	g.Schedule("analyze", 0, r1)
	time.Sleep(20 * time.Millisecond) // let r1 start
	g.Schedule("analyze", 0, r2)
	time.Sleep(50 * time.Millisecond) // let r2 apply
	close(r1Release)                  // r1 resolves late
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if winner != "r2" {
		t.Fatalf("expected r2 to win, got %q", winner)
	}
}

func TestSchedule_SupersededOperationIsCancelled(t *testing.T) {
	g := New(func(key string, err error) {
		t.Errorf("unexpected error callback for %s: %v", key, err)
	})
	defer g.Close()

	cancelled := make(chan struct{})
	slow := func(ctx context.Context) (func(), error) {
		<-ctx.Done()
		close(cancelled)
		return func() { t.Error("superseded apply must not run") }, ctx.Err()
	}
	fast := func(ctx context.Context) (func(), error) {
		return nil, nil
	}

	g.Schedule("k", 0, slow)
	time.Sleep(20 * time.Millisecond)
	g.Schedule("k", 0, fast)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatalf("expected in-flight operation to observe cancellation")
	}
	time.Sleep(50 * time.Millisecond)
}

func TestSchedule_FailureSurfacedExactlyOnce(t *testing.T) {
	var calls int32
	g := New(func(key string, err error) {
		atomic.AddInt32(&calls, 1)
	})
	defer g.Close()

	boom := errors.New("boom")
	g.Schedule("k", 0, func(ctx context.Context) (func(), error) {
		return nil, boom
	})

	time.Sleep(100 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected 1 failure callback, got %d", n)
	}
}

func TestCancel_DiscardsSilently(t *testing.T) {
	g := New(func(key string, err error) {
		t.Errorf("unexpected error callback: %v", err)
	})
	defer g.Close()

	g.Schedule("k", 0, func(ctx context.Context) (func(), error) {
		<-ctx.Done()
		return func() { t.Error("cancelled apply must not run") }, ctx.Err()
	})
	time.Sleep(20 * time.Millisecond)
	g.Cancel("k")
	time.Sleep(50 * time.Millisecond)
}

func TestClose_StopsPendingTimers(t *testing.T) {
	g := New(nil)

	ran := int32(0)
	g.Schedule("k", 30*time.Millisecond, func(ctx context.Context) (func(), error) {
		atomic.AddInt32(&ran, 1)
		return nil, nil
	})
	g.Close()

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&ran) != 0 {
		t.Fatalf("expected no operation after Close")
	}

	// Scheduling after Close is a no-op.
	g.Schedule("k", 0, func(ctx context.Context) (func(), error) {
		atomic.AddInt32(&ran, 1)
		return nil, nil
	})
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&ran) != 0 {
		t.Fatalf("expected no operation scheduled after Close")
	}
}
