package tasktree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPolicyDefaultsToForward(t *testing.T) {
	p := newErrorPolicy()
	assert.Equal(t, Forward, p.FailureAction())
	assert.Equal(t, Forward, p.PanicAction())
}

func TestErrorPolicySettersAreIndependent(t *testing.T) {
	p := newErrorPolicy()
	p.SetFailureAction(CatchAndLocalShutdown)

	assert.Equal(t, CatchAndLocalShutdown, p.FailureAction())
	assert.Equal(t, Forward, p.PanicAction())
}

func TestErrorPolicyActionForSelectsByKind(t *testing.T) {
	p := newErrorPolicy()
	p.SetFailureAction(CatchAndLocalShutdown)
	p.SetPanicAction(Forward)

	assert.Equal(t, CatchAndLocalShutdown, p.actionFor(Failed))
	assert.Equal(t, Forward, p.actionFor(Panicked))
}

func TestErrorActionString(t *testing.T) {
	assert.Equal(t, "forward", Forward.String())
	assert.Equal(t, "catch_and_local_shutdown", CatchAndLocalShutdown.String())
}
