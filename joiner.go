package tasktree

import "sync"

// OnError is invoked when a descendant raises a failure. Returning a
// non-nil error passes it on to the next ancestor; returning nil means
// the error was absorbed at this level.
type OnError func(err *SubsystemError) *SubsystemError

// joinerToken tracks a node's own liveness and the number of live
// descendants, and carries the ancestor-walking error-raise chain.
//
// Go has no destructors, so where the original relies on a value's Drop
// implementation to mark it dead and decrement every ancestor, this type
// requires an explicit Release() call (see DESIGN.md, "explicit release
// vs RAII"). Every owner of a joinerToken releases it from a defer in the
// surrounding runner.
type joinerToken struct {
	mu       sync.Mutex
	alive    bool
	children uint32
	changed  chan struct{} // closed and replaced whenever alive/children changes
	parent   *joinerToken
	onError  OnError
	released bool
}

// newJoinerToken creates the root of a new joiner tree.
func newJoinerToken(onError OnError) *joinerToken {
	return &joinerToken{
		alive:   true,
		changed: make(chan struct{}),
		onError: onError,
	}
}

func (t *joinerToken) snapshot() (alive bool, children uint32, ch chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alive, t.children, t.changed
}

func (t *joinerToken) notifyLocked() {
	close(t.changed)
	t.changed = make(chan struct{})
}

// ChildToken creates a new child of this token, incrementing the live
// child counter on every ancestor up to and including this one.
func (t *joinerToken) ChildToken(onError OnError) *joinerToken {
	for n := t; n != nil; n = n.parent {
		n.mu.Lock()
		n.children++
		n.notifyLocked()
		n.mu.Unlock()
	}
	return &joinerToken{
		alive:   true,
		changed: make(chan struct{}),
		parent:  t,
		onError: onError,
	}
}

// Count returns the number of live descendants, for tests/diagnostics.
func (t *joinerToken) Count() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.children
}

// Alive reports whether this token has not yet been released.
func (t *joinerToken) Alive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alive
}

// JoinChildren blocks until this token's live child count reaches zero,
// or done is closed.
func (t *joinerToken) JoinChildren(done <-chan struct{}) {
	for {
		_, children, changed := t.snapshot()
		if children == 0 {
			return
		}
		select {
		case <-changed:
		case <-done:
			return
		}
	}
}

// Join blocks until this token is both released and has no live children,
// or done is closed. Safe to call concurrently with Release.
func (t *joinerToken) Join(done <-chan struct{}) {
	for {
		alive, children, changed := t.snapshot()
		if !alive && children == 0 {
			return
		}
		select {
		case <-changed:
		case <-done:
			return
		}
	}
}

// RaiseFailure walks the ancestor chain, offering the error to each
// level's OnError callback in turn until one absorbs it (returns nil) or
// the chain is exhausted, in which case the caller should route it to the
// root sink.
func (t *joinerToken) RaiseFailure(err *SubsystemError) *SubsystemError {
	remaining := err
	for n := t; n != nil && remaining != nil; n = n.parent {
		remaining = n.onError(remaining)
	}
	return remaining
}

// Release marks this token dead and decrements the live-child counter of
// every ancestor. Idempotent: calling it more than once has no further
// effect. This is the explicit stand-in for the original's Drop impl.
func (t *joinerToken) Release() {
	t.mu.Lock()
	if t.released {
		t.mu.Unlock()
		return
	}
	t.released = true
	t.alive = false
	t.notifyLocked()
	t.mu.Unlock()

	for n := t.parent; n != nil; n = n.parent {
		n.mu.Lock()
		n.children--
		n.notifyLocked()
		n.mu.Unlock()
	}
}
