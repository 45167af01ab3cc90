package tasktree

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleStartNameCollisionIsResolved(t *testing.T) {
	h := newTestHandle()

	done := make(chan struct{})
	block := func(ctx context.Context, h *SubsystemHandle) error {
		<-h.OnShutdownRequestedChan()
		return nil
	}
	n1 := h.Start(NewSubsystem("worker", block))
	n2 := h.Start(NewSubsystem("worker", block))

	assert.Equal(t, "/test/worker", n1.name)
	assert.Equal(t, "/test/worker+1", n2.name)

	h.token.Cancel()
	n1.Join(context.Background())
	n2.Join(context.Background())
	close(done)
}

func TestHandleWaitForChildrenBlocksUntilAllFinish(t *testing.T) {
	h := newTestHandle()

	release := make(chan struct{})
	h.Start(NewSubsystem("a", func(ctx context.Context, h *SubsystemHandle) error {
		<-release
		return nil
	}))
	h.Start(NewSubsystem("b", func(ctx context.Context, h *SubsystemHandle) error {
		<-release
		return nil
	}))

	waited := make(chan struct{})
	go func() {
		h.WaitForChildren(context.Background())
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("WaitForChildren returned before children finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)

	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("WaitForChildren never returned")
	}
}

func TestHandleDetachedChildSurvivesParentCancellation(t *testing.T) {
	h := newTestHandle()

	ran := make(chan struct{})
	childStarted := make(chan struct{})
	n := h.Start(NewSubsystem("detached", func(ctx context.Context, ch *SubsystemHandle) error {
		close(childStarted)
		<-ctx.Done()
		close(ran)
		return nil
	}).Detached())

	<-childStarted
	h.token.Cancel() // the parent's token, which in this test handle is also the root token

	select {
	case <-ran:
		t.Fatal("detached child observed cancellation from its parent")
	case <-time.After(30 * time.Millisecond):
	}

	n.InitiateShutdown()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("detached child never observed an explicit InitiateShutdown")
	}
}

func TestHandleCatchAndLocalShutdownAbsorbsError(t *testing.T) {
	h := newTestHandle()

	boom := assert.AnError
	n := h.Start(NewSubsystem("child", func(ctx context.Context, ch *SubsystemHandle) error {
		return boom
	}).OnFailure(CatchAndLocalShutdown))

	err := n.Join(context.Background())
	require.Error(t, err)
	sje, ok := err.(*SubsystemJoinError)
	require.True(t, ok)
	require.Len(t, sje.Errors, 1)
	assert.ErrorIs(t, sje.Errors[0].Cause, boom)
}

func TestHandlePerformPartialShutdown(t *testing.T) {
	h := newTestHandle()

	started := make(chan struct{})
	n := h.Start(NewSubsystem("child", func(ctx context.Context, ch *SubsystemHandle) error {
		close(started)
		<-ctx.Done()
		return nil
	}))
	<-started

	err := h.PerformPartialShutdown(context.Background(), n)
	assert.NoError(t, err)
	assert.True(t, n.IsFinishedShallow())
}

func TestHandlePerformPartialShutdownAlreadyShuttingDown(t *testing.T) {
	h := newTestHandle()
	h.rootToken.Cancel()

	n := h.Start(NewSubsystem("child", func(ctx context.Context, ch *SubsystemHandle) error { return nil }))

	err := h.PerformPartialShutdown(context.Background(), n)
	require.Error(t, err)
	pse, ok := err.(*PartialShutdownError)
	require.True(t, ok)
	assert.Equal(t, AlreadyShuttingDown, pse.Kind)
}
