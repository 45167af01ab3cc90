package tasktree

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Bootstrap is the root subsystem body supplied to New/NewWithShutdownToken.
type Bootstrap func(ctx context.Context, root *SubsystemHandle) error

// Toplevel owns the root subsystem node and the top-level (global
// shutdown) cancellation token. It is the entry point for every
// interaction with this package. Grounded on the original's toplevel.rs
// and the teacher's engineRoot.go (superviseRoot), generalized from
// "run one root task" into "own a root node and drive the shutdown state
// machine".
type Toplevel struct {
	rootToken *CancelToken
	root      *SubsystemHandle
	toplevel  *NestedSubsystem
	log       *Logger

	// rootErrors accumulates uncaught errors as they reach the root sink.
	// Appended to concurrently from any subsystem's reporting goroutine
	// (via the joiner's error-routing callback), so it is guarded by its
	// own mutex rather than relying on incidental ordering — the original
	// uses an mpsc channel for the same reason.
	rootErrorsMu sync.Mutex
	rootErrors   []*SubsystemError

	// hooksMu guards hooks, which is swapped in by
	// HandleShutdownRequestsWithHooks before the state machine starts
	// waiting, but is also read from the joiner's error-routing callback,
	// which can fire from any subsystem's reporting goroutine at any time
	// — including before HandleShutdownRequests is ever called.
	hooksMu sync.Mutex
	hooks   ShutdownHooks
}

// New creates a Toplevel with a fresh top-level cancellation token,
// running bootstrap as the root subsystem's body.
func New(bootstrap Bootstrap) *Toplevel {
	return NewWithShutdownToken(bootstrap, NewCancelToken())
}

// NewWithShutdownToken creates a Toplevel using an existing CancelToken as
// the global shutdown token, so shutdown can be triggered externally.
func NewWithShutdownToken(bootstrap Bootstrap, shutdownToken *CancelToken) *Toplevel {
	log := NewDefaultLogger()
	return newToplevel(bootstrap, shutdownToken, log)
}

func newToplevel(bootstrap Bootstrap, shutdownToken *CancelToken, log *Logger) *Toplevel {
	t := &Toplevel{rootToken: shutdownToken, log: log, hooks: &DefaultShutdownHooks{}}

	joinerRoot := newJoinerToken(func(e *SubsystemError) *SubsystemError {
		if e.Kind == Panicked {
			log.Crit().Str("subsystem", e.Name).Log("uncaught panic from subsystem")
		} else if e.Kind == Failed {
			log.Err().Str("subsystem", e.Name).Err(e.Cause).Log("uncaught error from subsystem")
		}
		t.rootErrorsMu.Lock()
		t.rootErrors = append(t.rootErrors, e)
		t.rootErrorsMu.Unlock()

		t.hooksMu.Lock()
		hooks := t.hooks
		t.hooksMu.Unlock()
		hooks.OnUncaughtError(e)

		shutdownToken.Cancel()
		return nil
	})

	t.root = newHandle("", shutdownToken, shutdownToken, joinerRoot, log)
	t.toplevel = t.root.Start(NewSubsystem("", func(ctx context.Context, h *SubsystemHandle) error {
		return bootstrap(ctx, h)
	}))
	return t
}

// CatchSignals registers a goroutine that cancels the global token on
// SIGINT/SIGTERM (the Unix signal set named by the spec; Go's os/signal
// package is the canonical stdlib primitive for this — see DESIGN.md).
func (t *Toplevel) CatchSignals() *Toplevel {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			t.rootToken.Cancel()
		case <-t.rootToken.Done():
		}
		signal.Stop(ch)
	}()
	return t
}

// HandleShutdownRequests runs the top-level shutdown state machine
// described in spec.md §4.8, returning once the tree has drained or the
// timeout elapsed.
func (t *Toplevel) HandleShutdownRequests(ctx context.Context, shutdownTimeout time.Duration) error {
	return t.HandleShutdownRequestsWithHooks(ctx, shutdownTimeout, &loggingHooks{log: t.log})
}

// HandleShutdownRequestsWithHooks is HandleShutdownRequests with
// caller-supplied observational hooks instead of the default logging
// ones.
func (t *Toplevel) HandleShutdownRequestsWithHooks(ctx context.Context, shutdownTimeout time.Duration, hooks ShutdownHooks) error {
	t.hooksMu.Lock()
	t.hooks = hooks
	t.hooksMu.Unlock()

	finished := t.toplevel.Finished()

	select {
	case <-finished:
		hooks.OnSubsystemsFinished()
		t.root.RequestShutdown() // idempotent; for good measure, as upstream does
		return t.drain(hooks, false)

	case <-t.rootToken.Done():
		hooks.OnShutdownRequested()
	case <-ctx.Done():
		hooks.OnShutdownRequested()
		t.rootToken.Cancel()
	}

	timer := time.NewTimer(shutdownTimeout)
	defer timer.Stop()

	select {
	case <-finished:
		return t.drain(hooks, false)
	case <-timer.C:
		hooks.OnShutdownTimeout()
		return t.drain(hooks, true)
	}
}

func (t *Toplevel) drain(hooks ShutdownHooks, timedOut bool) error {
	t.rootErrorsMu.Lock()
	errs := t.rootErrors
	t.rootErrors = nil
	t.rootErrorsMu.Unlock()

	if !timedOut {
		hooks.OnShutdownFinished(errs)
		if len(errs) == 0 {
			return nil
		}
		return &GracefulShutdownError{Kind: SubsystemsFailed, Errors: errs}
	}
	hooks.OnShutdownFinished(errs)
	return &GracefulShutdownError{Kind: ShutdownTimeout, Errors: errs}
}

// Root returns the root subsystem handle, for advanced callers that want
// to start further top-level children outside the bootstrap closure
// (most callers should start everything from within bootstrap instead).
func (t *Toplevel) Root() *SubsystemHandle { return t.root }
