package tasktree

import (
	"errors"
	"fmt"
	"sort"
)

// SubsystemErrorKind classifies why a subsystem stopped abnormally.
type SubsystemErrorKind int

const (
	// Failed means the subsystem's body returned a non-nil error.
	Failed SubsystemErrorKind = iota
	// Panicked means the subsystem's body panicked; the panic value is
	// captured as the error's Cause.
	Panicked
	// Cancelled means the subsystem's runner gave up waiting for it after
	// an abort, without ever observing a result. This kind is never
	// raised through RaiseFailure and never reaches a policy, a sink, or
	// NestedSubsystem.Join/Finished; nothing in this package constructs a
	// SubsystemError of this kind (runner.go's report only logs an abort).
	// The original's SubsystemError likewise has no public Cancelled
	// variant.
	Cancelled
)

func (k SubsystemErrorKind) String() string {
	switch k {
	case Failed:
		return "failed"
	case Panicked:
		return "panicked"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// SubsystemError reports that a named subsystem stopped abnormally.
type SubsystemError struct {
	Name  string
	Kind  SubsystemErrorKind
	Cause error
}

func (e *SubsystemError) Error() string {
	switch e.Kind {
	case Panicked:
		return fmt.Sprintf("subsystem %q panicked: %v", e.Name, e.Cause)
	case Cancelled:
		return fmt.Sprintf("subsystem %q was cancelled", e.Name)
	default:
		return fmt.Sprintf("subsystem %q failed: %v", e.Name, e.Cause)
	}
}

func (e *SubsystemError) Unwrap() error { return e.Cause }

// GracefulShutdownErrorKind distinguishes the two ways a top-level
// shutdown can fail to be "clean".
type GracefulShutdownErrorKind int

const (
	// SubsystemsFailed means at least one subsystem returned an error or
	// panicked.
	SubsystemsFailed GracefulShutdownErrorKind = iota
	// ShutdownTimeout means the shutdown did not finish within the given
	// deadline.
	ShutdownTimeout
)

// GracefulShutdownError is returned by Toplevel.HandleShutdownRequests
// when the shutdown was not entirely clean.
type GracefulShutdownError struct {
	Kind   GracefulShutdownErrorKind
	Errors []*SubsystemError
}

func (e *GracefulShutdownError) Error() string {
	switch e.Kind {
	case ShutdownTimeout:
		return "shutdown timed out"
	default:
		return "at least one subsystem returned an error"
	}
}

// PartialShutdownErrorKind distinguishes the ways PerformPartialShutdown
// can fail.
type PartialShutdownErrorKind int

const (
	// SubsystemFailed means at least one subsystem in the shut-down
	// subtree returned an error.
	SubsystemFailed PartialShutdownErrorKind = iota
	// SubsystemNotFound means the given nested subsystem is not a child
	// of the handle PerformPartialShutdown was called on.
	SubsystemNotFound
	// AlreadyShuttingDown means the whole tree is already shutting down,
	// so a partial shutdown would be meaningless.
	AlreadyShuttingDown
)

// PartialShutdownError is returned by SubsystemHandle.PerformPartialShutdown.
type PartialShutdownError struct {
	Kind   PartialShutdownErrorKind
	Errors []*SubsystemError
}

func (e *PartialShutdownError) Error() string {
	switch e.Kind {
	case SubsystemNotFound:
		return "unable to find nested subsystem in given subsystem"
	case AlreadyShuttingDown:
		return "unable to perform partial shutdown, the program is already shutting down"
	default:
		return "at least one subsystem returned an error"
	}
}

// SubsystemJoinError is returned by NestedSubsystem.Join when the joined
// subtree did not exit cleanly.
type SubsystemJoinError struct {
	Errors []*SubsystemError
}

func (e *SubsystemJoinError) Error() string {
	return fmt.Sprintf("%d subsystem(s) in subtree failed", len(e.Errors))
}

// ExitState is one subsystem's name paired with a human-readable
// description of how it exited, used by FormatExitStates.
type ExitState struct {
	Name      string
	ExitState string
	Err       *SubsystemError
}

// FormatExitStates renders a column-aligned "name => state" summary of a
// set of exit states, sorted by name. Grounded on the original's
// prettify_exit_states; the tasktree-demo command uses it to print the
// errors of a failed shutdown.
func FormatExitStates(states []ExitState) []string {
	sorted := make([]ExitState, len(states))
	copy(sorted, states)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	maxLen := 0
	for _, s := range sorted {
		if len(s.Name) > maxLen {
			maxLen = len(s.Name)
		}
	}

	out := make([]string, 0, len(sorted))
	for _, s := range sorted {
		padding := maxLen - len(s.Name)
		out = append(out, s.Name+spaces(padding)+" => "+s.ExitState)
	}
	return out
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// As is a thin re-export of errors.As for callers that don't want to
// import "errors" themselves just to unwrap a SubsystemError out of an
// aggregate.
func As(err error, target any) bool { return errors.As(err, target) }
