package tasktree

import "context"

// SubsystemFunc is the body contract for a subsystem: an asynchronous
// computation given the handle of the node it is running as, returning an
// error (nil on success). This is the idiomatic Go rendition of the
// language-agnostic "body is any callable producing an asynchronous
// computation returning Result" contract; the engine never stores or
// leaks this handle anywhere but the call itself (see DESIGN.md's note on
// the context-attachment deviation from the teacher).
type SubsystemFunc func(ctx context.Context, handle *SubsystemHandle) error

// Task lets a caller supply a subsystem body as a value rather than a
// bare function, grounded on the teacher's Task interface.
type Task interface {
	Run(ctx context.Context, handle *SubsystemHandle) error
}

// NamedTask implementers supply their own local name, for use with
// StartSlice where a name needs deriving from the task itself rather
// than being passed alongside it.
type NamedTask interface {
	Task
	Name() string
}

type simpleTask struct {
	fn SubsystemFunc
}

func (t simpleTask) Run(ctx context.Context, h *SubsystemHandle) error { return t.fn(ctx, h) }

// TaskOfFunc adapts a SubsystemFunc to a Task.
func TaskOfFunc(fn SubsystemFunc) Task {
	return simpleTask{fn}
}

// SteppedTask bodies are naturally expressed as a single action repeated
// until shutdown is requested, rather than as one function owning its own
// loop. Grounded on the teacher's task.go SteppedTask/RunStep sketch;
// TaskOfSteppedTask wraps one into a Task.
type SteppedTask interface {
	RunStep(ctx context.Context, handle *SubsystemHandle) error
}

// TaskOfSteppedTask adapts a SteppedTask into a Task, looping RunStep
// until the handle's shutdown is requested or a step returns an error.
func TaskOfSteppedTask(t SteppedTask) Task {
	return steppedTask{t}
}

type steppedTask struct {
	t SteppedTask
}

func (t steppedTask) Run(ctx context.Context, h *SubsystemHandle) error {
	for {
		select {
		case <-h.OnShutdownRequestedChan():
			return nil
		default:
			if err := t.t.RunStep(ctx, h); err != nil {
				return err
			}
		}
	}
}
