package tasktree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAliveGuardFiresOnFinishedThenOnCancel(t *testing.T) {
	g := newAliveGuard(nopLogger(), "test")

	var order []string
	g.OnFinished(func() { order = append(order, "finished") })
	g.OnCancel(func() { order = append(order, "cancel") })

	g.Release()

	assert.Equal(t, []string{"finished", "cancel"}, order)
}

func TestAliveGuardReleaseIsIdempotent(t *testing.T) {
	g := newAliveGuard(nopLogger(), "test")

	calls := 0
	g.OnFinished(func() { calls++ })

	g.Release()
	g.Release()

	assert.Equal(t, 1, calls)
}

func TestAliveGuardOnFinishedRegisteredTwicePanics(t *testing.T) {
	g := newAliveGuard(nopLogger(), "test")
	g.OnFinished(func() {})

	assert.Panics(t, func() { g.OnFinished(func() {}) })
}

func TestAliveGuardOnCancelRegisteredTwicePanics(t *testing.T) {
	g := newAliveGuard(nopLogger(), "test")
	g.OnCancel(func() {})

	assert.Panics(t, func() { g.OnCancel(func() {}) })
}

func TestAliveGuardReleaseWithoutOnFinishedDoesNotPanic(t *testing.T) {
	g := newAliveGuard(nopLogger(), "test")
	assert.NotPanics(t, func() { g.Release() })
}
