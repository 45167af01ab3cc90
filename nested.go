package tasktree

import "context"

// NestedSubsystem is returned by SubsystemHandle.Start, and is used to
// observe/steer a specific child from outside it. Grounded on the
// original's NestedSubsystem/nested_subsystem.rs.
type NestedSubsystem struct {
	name   string
	joiner *joinerToken
	token  *CancelToken
	errors chan *SubsystemError
	policy *errorPolicy
	runner *subsystemRunner
}

// Join waits for the subsystem (and its whole subtree) to finish. If its
// failure/panic action is CatchAndLocalShutdown, the returned error
// aggregates whatever was caught.
func (n *NestedSubsystem) Join(ctx context.Context) error {
	n.joiner.Join(ctx.Done())

	var errs []*SubsystemError
	for {
		select {
		case e := <-n.errors:
			errs = append(errs, e)
			continue
		default:
		}
		break
	}
	if len(errs) == 0 {
		return nil
	}
	return &SubsystemJoinError{Errors: errs}
}

// InitiateShutdown signals the subsystem and all of its children to shut
// down.
func (n *NestedSubsystem) InitiateShutdown() {
	n.token.Cancel()
}

// ChangeFailureAction changes how this subsystem reacts to a failure
// returned by itself or one of its children.
func (n *NestedSubsystem) ChangeFailureAction(action ErrorAction) {
	n.policy.SetFailureAction(action)
}

// ChangePanicAction changes how this subsystem reacts to a panic in
// itself or one of its children.
func (n *NestedSubsystem) ChangePanicAction(action ErrorAction) {
	n.policy.SetPanicAction(action)
}

// Finished returns a channel closed once the subsystem (and its whole
// subtree) is finished. Lighter-weight than Join, since it carries no
// error information.
func (n *NestedSubsystem) Finished() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		n.joiner.Join(nil)
		close(ch)
	}()
	return ch
}

// IsFinished reports whether this subsystem and all of its children have
// finished.
func (n *NestedSubsystem) IsFinished() bool {
	return !n.joiner.Alive() && n.joiner.Count() == 0
}

// IsFinishedShallow reports whether this subsystem itself (ignoring
// children) has finished.
func (n *NestedSubsystem) IsFinishedShallow() bool {
	return !n.joiner.Alive()
}

// Abort gives up on the underlying subsystem: its runner stops waiting
// for the body to return and, best-effort, requests its cooperative
// shutdown too (see DESIGN.md's "no forced abort" note — this does not
// forcibly terminate the goroutine, since Go has no equivalent of that).
func (n *NestedSubsystem) Abort() {
	n.runner.Abort()
}
