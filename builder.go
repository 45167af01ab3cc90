package tasktree

// SubsystemBuilder describes a child subsystem about to be started via
// SubsystemHandle.Start. Grounded on the original's SubsystemBuilder.
// Default actions for both failure and panic are Forward.
type SubsystemBuilder struct {
	name         string
	task         Task
	onFailure    ErrorAction
	onPanic      ErrorAction
	detached     bool
	nameStrategy NameSelectionFunc
}

// NewSubsystem creates a builder for a child named name, running fn.
func NewSubsystem(name string, fn SubsystemFunc) *SubsystemBuilder {
	return NewSubsystemTask(name, TaskOfFunc(fn))
}

// NewSubsystemTask creates a builder for a child named name, running the
// given Task value.
func NewSubsystemTask(name string, task Task) *SubsystemBuilder {
	return &SubsystemBuilder{name: name, task: task}
}

// OnFailure sets the error action applied when this subsystem (or one of
// its children, under Forward) returns an error.
func (b *SubsystemBuilder) OnFailure(action ErrorAction) *SubsystemBuilder {
	b.onFailure = action
	return b
}

// OnPanic sets the error action applied when this subsystem (or one of
// its children, under Forward) panics.
func (b *SubsystemBuilder) OnPanic(action ErrorAction) *SubsystemBuilder {
	b.onPanic = action
	return b
}

// Detached makes this subsystem's local cancellation token independent of
// its parent's — the parent's cancellation will not cancel it; a parent
// wishing to shut a detached child down must call InitiateShutdown on the
// returned NestedSubsystem explicitly.
func (b *SubsystemBuilder) Detached() *SubsystemBuilder {
	b.detached = true
	return b
}

// WithNameStrategy overrides the collision-resolution strategy used when
// this subsystem's requested name collides with an existing sibling.
func (b *SubsystemBuilder) WithNameStrategy(fn NameSelectionFunc) *SubsystemBuilder {
	b.nameStrategy = fn
	return b
}

// StartSlice starts one child per element of tasks, deriving each name
// from the NamedTask interface, and returns their NestedSubsystem handles
// in the same order. A convenience over calling Start in a loop; not a
// scheduling/pooling facility (see DESIGN.md's Non-goals justification
// for why the teacher's TasksFromMap/TaskGen machinery was dropped
// instead of generalized).
func StartSlice(h *SubsystemHandle, tasks []NamedTask) []*NestedSubsystem {
	out := make([]*NestedSubsystem, len(tasks))
	for i, t := range tasks {
		out[i] = h.Start(NewSubsystemTask(t.Name(), t))
	}
	return out
}

// StartMap starts one child per map entry, using the key as the local
// name, and returns their NestedSubsystem handles keyed the same way.
func StartMap(h *SubsystemHandle, tasks map[string]Task) map[string]*NestedSubsystem {
	out := make(map[string]*NestedSubsystem, len(tasks))
	for name, t := range tasks {
		out[name] = h.Start(NewSubsystemTask(name, t))
	}
	return out
}
