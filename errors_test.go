package tasktree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubsystemErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := &SubsystemError{Name: "worker", Kind: Failed, Cause: cause}
	assert.Same(t, cause, errors.Unwrap(e))
	assert.ErrorIs(t, e, cause)
}

func TestSubsystemErrorKindString(t *testing.T) {
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "panicked", Panicked.String())
	assert.Equal(t, "cancelled", Cancelled.String())
}

func TestAsUnwrapsGracefulShutdownError(t *testing.T) {
	var wrapped error = &GracefulShutdownError{Kind: SubsystemsFailed}

	var gse *GracefulShutdownError
	assert.True(t, As(wrapped, &gse))
	assert.Equal(t, SubsystemsFailed, gse.Kind)
}

func TestFormatExitStatesSortedAndAligned(t *testing.T) {
	lines := FormatExitStates([]ExitState{
		{Name: "b", ExitState: "failed"},
		{Name: "aa", ExitState: "cancelled"},
	})

	require := assert.New(t)
	require.Len(lines, 2)
	require.Equal("aa => cancelled", lines[0])
	require.Equal("b  => failed", lines[1])
}
