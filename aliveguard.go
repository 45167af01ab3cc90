package tasktree

import "sync"

// aliveGuard lets a node register callbacks that fire when Release is
// called — the Go stand-in for the original's Drop-triggered guard (see
// DESIGN.md). onFinished always fires; onCancel fires after it, only if
// set.
type aliveGuard struct {
	mu         sync.Mutex
	onFinished func()
	onCancel   func()
	released   bool
	log        *Logger
	name       string
}

func newAliveGuard(log *Logger, name string) *aliveGuard {
	return &aliveGuard{log: log, name: name}
}

// OnFinished registers the callback invoked unconditionally on Release.
// Must not be called more than once.
func (g *aliveGuard) OnFinished(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.onFinished != nil {
		panic("tasktree: OnFinished already registered")
	}
	g.onFinished = fn
}

// OnCancel registers the callback invoked on Release after OnFinished,
// used to propagate cancellation into a parent-owned collection. Must not
// be called more than once.
func (g *aliveGuard) OnCancel(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.onCancel != nil {
		panic("tasktree: OnCancel already registered")
	}
	g.onCancel = fn
}

// Release fires the registered callbacks exactly once. Idempotent.
func (g *aliveGuard) Release() {
	g.mu.Lock()
	if g.released {
		g.mu.Unlock()
		return
	}
	g.released = true
	finished, cancel := g.onFinished, g.onCancel
	g.mu.Unlock()

	if finished != nil {
		finished()
	} else if g.log != nil {
		g.log.Warning().Str("subsystem", g.name).Log("no finished callback was registered in alive guard")
	}
	if cancel != nil {
		cancel()
	}
}
