package tasktree

import "sync/atomic"

// ErrorAction controls how a node reacts to a failure/panic raised by
// itself or forwarded up from one of its descendants.
type ErrorAction int32

const (
	// Forward passes the error on to the parent, without reacting to it
	// locally.
	Forward ErrorAction = iota
	// CatchAndLocalShutdown stores the error (retrievable through
	// NestedSubsystem.Join) and initiates a shutdown of the subsystem and
	// its children, without forwarding the error further up the tree.
	CatchAndLocalShutdown
)

func (a ErrorAction) String() string {
	if a == CatchAndLocalShutdown {
		return "catch_and_local_shutdown"
	}
	return "forward"
}

// errorPolicy holds a node's current reaction to child failures/panics,
// mutable at any time via NestedSubsystem.ChangeFailureAction/
// ChangePanicAction.
type errorPolicy struct {
	failureAction atomic.Int32
	panicAction   atomic.Int32
}

func newErrorPolicy() *errorPolicy {
	p := &errorPolicy{}
	p.failureAction.Store(int32(Forward))
	p.panicAction.Store(int32(Forward))
	return p
}

func (p *errorPolicy) FailureAction() ErrorAction { return ErrorAction(p.failureAction.Load()) }
func (p *errorPolicy) PanicAction() ErrorAction   { return ErrorAction(p.panicAction.Load()) }

func (p *errorPolicy) SetFailureAction(a ErrorAction) { p.failureAction.Store(int32(a)) }
func (p *errorPolicy) SetPanicAction(a ErrorAction)   { p.panicAction.Store(int32(a)) }

// actionFor returns the configured action for the given error kind. Only
// ever called with Failed or Panicked: a Cancelled-kind SubsystemError is
// never raised through the joiner (see errors.go), so it never reaches
// policy dispatch.
func (p *errorPolicy) actionFor(kind SubsystemErrorKind) ErrorAction {
	if kind == Panicked {
		return p.PanicAction()
	}
	return p.FailureAction()
}
