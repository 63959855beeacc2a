package debounce

import (
	"context"
	"sync"
	"time"
)

// Operation performs the asynchronous work for a scheduled key.
//
// It must honor ctx: when ctx is cancelled the operation has been superseded
// (or the gate closed) and its result will be discarded, so it should stop
// early rather than finish expensive work.
//
// The returned apply func carries the state mutation. The gate invokes apply
// only when the operation is still the most recently scheduled one for its
// key, so callers never need their own staleness bookkeeping.
type Operation func(ctx context.Context) (apply func(), err error)

// Gate collapses bursts of triggers into one effective asynchronous operation
// per key.
//
// Contract:
// - Schedule replaces any pending timer for the key.
// - When the timer fires, any in-flight operation for the key is cancelled
//   before the new one starts.
// - At most one non-cancelled in-flight operation per key.
// - Only the most recently scheduled operation's apply is ever invoked
//   (last-scheduled-wins, enforced via a per-key generation counter).
// - A cancelled operation is discarded silently: no apply, no error callback.
// - A non-cancelled failure is reported to the failure handler exactly once.
type Gate struct {
	mu sync.Mutex

	closed   bool
	timers   map[string]*time.Timer
	inflight map[string]context.CancelFunc
	gen      map[string]uint64

	onError func(key string, err error)
}

// New builds a gate. onError may be nil; failures are then dropped.
func New(onError func(key string, err error)) *Gate {
	return &Gate{
		timers:   make(map[string]*time.Timer),
		inflight: make(map[string]context.CancelFunc),
		gen:      make(map[string]uint64),
		onError:  onError,
	}
}

// Schedule arms (or re-arms) the debounce timer for key. A delay <= 0 fires
// the operation on the spot, still subject to the same supersession rules.
func (g *Gate) Schedule(key string, delay time.Duration, op Operation) {
	if op == nil {
		return
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.gen[key]++
	gen := g.gen[key]
	if t, ok := g.timers[key]; ok {
		t.Stop()
		delete(g.timers, key)
	}
	if delay <= 0 {
		g.mu.Unlock()
		g.fire(key, gen, op)
		return
	}
	g.timers[key] = time.AfterFunc(delay, func() {
		g.fire(key, gen, op)
	})
	g.mu.Unlock()
}

// Cancel drops the pending timer and cancels any in-flight operation for key.
// The cancelled operation's result is discarded silently.
func (g *Gate) Cancel(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked(key)
}

// Close cancels everything and rejects further scheduling. Safe to call more
// than once; cleanup is unconditional.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	for key := range g.timers {
		g.timers[key].Stop()
		delete(g.timers, key)
	}
	for key, cancel := range g.inflight {
		cancel()
		delete(g.inflight, key)
	}
}

func (g *Gate) cancelLocked(key string) {
	// Bump the generation so a completed-but-unapplied operation stays stale.
	g.gen[key]++
	if t, ok := g.timers[key]; ok {
		t.Stop()
		delete(g.timers, key)
	}
	if cancel, ok := g.inflight[key]; ok {
		cancel()
		delete(g.inflight, key)
	}
}

func (g *Gate) fire(key string, gen uint64, op Operation) {
	g.mu.Lock()
	if g.closed || g.gen[key] != gen {
		g.mu.Unlock()
		return
	}
	delete(g.timers, key)
	if cancel, ok := g.inflight[key]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	g.inflight[key] = cancel
	g.mu.Unlock()

	go g.run(ctx, cancel, key, gen, op)
}

func (g *Gate) run(ctx context.Context, cancel context.CancelFunc, key string, gen uint64, op Operation) {
	defer cancel()

	apply, err := op(ctx)

	g.mu.Lock()
	current := !g.closed && g.gen[key] == gen && ctx.Err() == nil
	if g.inflight[key] != nil && current {
		delete(g.inflight, key)
	}
	onError := g.onError
	g.mu.Unlock()

	if !current {
		// Superseded or torn down: discard silently.
		return
	}
	if err != nil {
		if onError != nil {
			onError(key, err)
		}
		return
	}
	if apply != nil {
		apply()
	}
}
