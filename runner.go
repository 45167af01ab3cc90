package tasktree

import (
	"fmt"
	"sync"
)

// subsystemRunner spawns and supervises the goroutine driving one
// subsystem body. Grounded on the original's runner.rs, generalized from
// a single fork-join engine into the general per-node runner; the
// panic-recovery shape is adapted from the teacher's engineShared.go
// childLaunch/siftError.
//
// token is the node's cooperative local-shutdown token — the same one
// exposed to the body via SubsystemHandle.OnShutdownRequested* — and is
// read only by the body and by runBody (to attach it to the body's
// context). supervise never selects on it: per the original's
// subsystem_tree/node.rs, the signal that tells the runner to stop
// waiting for the body is a distinct one (abort), fired only by an
// explicit Abort call. Conflating the two would make supervise give up
// on a body the instant any shutdown — graceful or forced — is
// requested, before the body has had any chance to run its own cleanup.
type subsystemRunner struct {
	name      string
	localName string
	token     *CancelToken
	joiner    *joinerToken
	guard     *aliveGuard
	log       *Logger
	children  *remoteSlots[*subsystemRunner]

	abort     chan struct{}
	abortOnce sync.Once

	done chan struct{}
}

func startRunner(name, localName string, task Task, h *SubsystemHandle, log *Logger) *subsystemRunner {
	r := &subsystemRunner{
		name:      name,
		localName: localName,
		token:     h.token,
		joiner:    h.joiner,
		guard:     h.guard,
		log:       log,
		children:  h.children,
		abort:     make(chan struct{}),
		done:      make(chan struct{}),
	}

	inner := make(chan subsystemOutcome, 1)
	go r.runBody(task, h, inner)
	go r.supervise(inner)

	return r
}

type subsystemOutcome struct {
	err     error
	panicked bool
}

// runBody executes the user body on its own goroutine, isolating panics
// exactly as the spec requires: a panic here is recovered and reclassified,
// never allowed to unwind into the runner or any sibling.
func (r *subsystemRunner) runBody(task Task, h *SubsystemHandle, result chan<- subsystemOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			result <- subsystemOutcome{err: fmt.Errorf("%v", rec), panicked: true}
		}
	}()
	err := task.Run(withName(r.token.Context(), r.localName, r.name), h)
	result <- subsystemOutcome{err: err}
}

// supervise waits for the body to finish. A plain shutdown request
// (local or global) is not reason enough to stop waiting — the body is
// expected to notice it cooperatively and return on its own, and until
// it does this node is not finished (the whole point of the cooperative
// token is to give bodies room to run their own cleanup). The only thing
// that makes supervise give up early is an explicit abort: Go cannot
// forcibly tear down a running goroutine the way the original aborts a
// tokio task, so abort instead stops waiting here and detaches a reaper
// so the real outcome, whenever the body eventually returns, is still
// classified and delivered exactly once (see DESIGN.md "no forced abort").
func (r *subsystemRunner) supervise(inner <-chan subsystemOutcome) {
	defer close(r.done)
	defer r.guard.Release()

	var outcome subsystemOutcome
	var abandoned bool

	select {
	case outcome = <-inner:
		// Best-effort handle-leak diagnostic: a body that returned while
		// still owning live children is the observable symptom of a
		// leaked handle used after return, since the original's
		// drop-redirect trick has no Go equivalent (no destructors).
		if n := r.children.Len(); n > 0 {
			r.log.Warning().Str("subsystem", r.name).Int("leaked_children", n).
				Log("subsystem body returned while still owning live children; handle may have leaked")
		}
	case <-r.abort:
		abandoned = true
		go func() {
			late := <-inner
			r.report(late, false)
		}()
	}

	r.report(outcome, abandoned)
}

func (r *subsystemRunner) report(outcome subsystemOutcome, abandoned bool) {
	if abandoned {
		// No error is raised for an abort: the original's SubsystemError
		// only has Failed/Panicked public variants, and spec-wise a
		// cancelled-without-result body is not a failure. Giving up on
		// waiting is purely local bookkeeping, not something the rest of
		// the tree needs to react to.
		r.log.Warning().Str("subsystem", r.name).Log("gave up waiting for subsystem to return after abort")
		return
	}

	var subErr *SubsystemError
	switch {
	case outcome.panicked:
		subErr = &SubsystemError{Name: r.name, Kind: Panicked, Cause: outcome.err}
	case outcome.err != nil:
		subErr = &SubsystemError{Name: r.name, Kind: Failed, Cause: outcome.err}
	default:
		return // clean completion, nothing to raise
	}

	if subErr.Kind == Panicked {
		r.log.Err().Str("subsystem", r.name).Err(subErr.Cause).Log("subsystem panicked")
	} else {
		r.log.Err().Str("subsystem", r.name).Err(subErr.Cause).Log("subsystem returned an error")
	}

	if remaining := r.joiner.RaiseFailure(subErr); remaining != nil {
		r.log.Warning().Str("subsystem", remaining.Name).Log("unhandled subsystem error reached the top without a sink")
	}
}

// Abort gives up waiting for this node's body and, as a best effort,
// also requests its cooperative shutdown so a well-behaved body notices
// and returns anyway. This is the Go rendition of the original's
// "dropping the runner aborts the task" — Go has no equivalent of
// forcibly killing a goroutine, so abort only stops the runner from
// waiting on it; see supervise.
func (r *subsystemRunner) Abort() {
	r.token.Cancel()
	r.abortOnce.Do(func() { close(r.abort) })
}

// Done is closed once this runner has finished supervising (its body has
// returned or was cancelled away from).
func (r *subsystemRunner) Done() <-chan struct{} {
	return r.done
}
