package tasktree

import (
	"context"
	"strings"
	"sync"
)

// SubsystemHandle is the only user-facing object passed to a subsystem
// body. It must not be retained beyond the body's own lifetime (see
// spec's handle-lifecycle invariant and DESIGN.md's context-attachment
// deviation note).
type SubsystemHandle struct {
	name                string // absolute, hierarchical
	token               *CancelToken
	rootToken           *CancelToken
	joiner              *joinerToken
	guard               *aliveGuard
	log                 *Logger
	children     *remoteSlots[*subsystemRunner]
	childNamesMu sync.Mutex
	childNames   map[string]struct{}
}

func newHandle(name string, token, rootToken *CancelToken, joiner *joinerToken, log *Logger) *SubsystemHandle {
	h := &SubsystemHandle{
		name:       name,
		token:      token,
		rootToken:  rootToken,
		joiner:     joiner,
		guard:      newAliveGuard(log, name),
		log:        log,
		children:   newRemoteSlots[*subsystemRunner](),
		childNames: make(map[string]struct{}),
	}
	return h
}

// Start spawns a child subsystem under this node. The child begins
// running on its own goroutine before Start returns, and is observable
// via this node's owned collection immediately afterward.
func (h *SubsystemHandle) Start(b *SubsystemBuilder) *NestedSubsystem {
	h.childNamesMu.Lock()
	localName := resolveName(b.name, h.childNames, b.nameStrategy)
	h.childNames[localName] = struct{}{}
	h.childNamesMu.Unlock()

	absName := strings.TrimSuffix(h.name, "/") + "/" + localName

	childCancelParent := h.token
	if b.detached {
		childCancelParent = NewCancelToken() // independent root, per spec §4.6
	}
	childToken := childCancelParent.Child()

	policy := newErrorPolicy()
	policy.SetFailureAction(b.onFailure)
	policy.SetPanicAction(b.onPanic)

	errCh := make(chan *SubsystemError, 16)

	joinerChild := h.joiner.ChildToken(func(e *SubsystemError) *SubsystemError {
		action := policy.actionFor(e.Kind)
		switch action {
		case CatchAndLocalShutdown:
			select {
			case errCh <- e:
			default:
				h.log.Warning().Str("subsystem", e.Name).Log("an error got dropped because the local catch buffer was full")
			}
			childToken.Cancel()
			return nil
		default:
			return e
		}
	})

	childHandle := newHandle(absName, childToken, h.rootToken, joinerChild, h.log)

	// The callback is registered before the runner starts, so a body that
	// returns at once still releases its slot and joiner; it waits for the
	// slot, which only exists once the runner has been inserted.
	slotReady := make(chan *RemoteDrop[*subsystemRunner], 1)
	childHandle.guard.OnFinished(func() {
		(<-slotReady).Release()
		joinerChild.Release()
	})

	runner := startRunner(absName, localName, b.task, childHandle, h.log)

	slotReady <- h.children.Insert(runner)

	return &NestedSubsystem{
		name:   absName,
		joiner: joinerChild,
		token:  childToken,
		errors: errCh,
		policy: policy,
		runner: runner,
	}
}

// OnShutdownRequested blocks until this node's local token is cancelled
// (which happens immediately if it already is).
func (h *SubsystemHandle) OnShutdownRequested(ctx context.Context) {
	select {
	case <-h.token.Done():
	case <-ctx.Done():
	}
}

// OnShutdownRequestedChan exposes the local token's Done channel directly,
// for use in select statements inside a subsystem body.
func (h *SubsystemHandle) OnShutdownRequestedChan() <-chan struct{} {
	return h.token.Done()
}

// IsShutdownRequested is a non-blocking read of this node's local token.
func (h *SubsystemHandle) IsShutdownRequested() bool {
	return h.token.IsCancelled()
}

// RequestShutdown cancels the root (top-level) token, initiating a global
// shutdown.
func (h *SubsystemHandle) RequestShutdown() {
	h.rootToken.Cancel()
}

// InitiateLocalShutdown cancels this node's own local token only,
// shutting down this subtree without affecting the rest of the tree.
func (h *SubsystemHandle) InitiateLocalShutdown() {
	h.token.Cancel()
}

// WaitForChildren blocks until every immediate/transitive child of this
// node has finished.
func (h *SubsystemHandle) WaitForChildren(ctx context.Context) {
	h.joiner.JoinChildren(ctx.Done())
}

// CreateCancellationToken returns a fresh token, child of this node's
// local token, for user code that needs an independent clonable
// cancellation source without being handed the handle itself.
func (h *SubsystemHandle) CreateCancellationToken() *CancelToken {
	return h.token.Child()
}

// PerformPartialShutdown shuts down one named nested child and waits for
// its whole subtree to drain, aggregating the errors encountered.
// Supplemented from the original's perform_partial_shutdown (see
// SPEC_FULL.md) — not present in the distilled spec's operation list, but
// not excluded by its Non-goals either.
func (h *SubsystemHandle) PerformPartialShutdown(ctx context.Context, nested *NestedSubsystem) error {
	if h.rootToken.IsCancelled() {
		return &PartialShutdownError{Kind: AlreadyShuttingDown}
	}

	found := false
	for _, r := range h.children.Snapshot() {
		if r == nested.runner {
			found = true
			break
		}
	}
	if !found {
		return &PartialShutdownError{Kind: SubsystemNotFound}
	}

	nested.InitiateShutdown()
	if err := nested.Join(ctx); err != nil {
		if je, ok := err.(*SubsystemJoinError); ok {
			return &PartialShutdownError{Kind: SubsystemFailed, Errors: je.Errors}
		}
		return err
	}
	return nil
}
