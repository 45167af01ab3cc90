package tasktree

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectRecvAndThen(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 5
	recv := ReceiverChannel[int]{Chan: ch}

	var got int
	err := Select(context.Background(), recv.RecvAndThen(func(v int) error {
		got = v
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestSelectSend(t *testing.T) {
	ch := make(chan int, 1)
	send := SenderChannel[int]{Chan: ch}

	err := Select(context.Background(), send.Send(9))
	require.NoError(t, err)
	assert.Equal(t, 9, <-ch)
}

func TestSelectReturnsContextErrorOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan int)
	recv := ReceiverChannel[int]{Chan: ch}

	err := Select(ctx, recv.Recv())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSelectPropagatesCallbackError(t *testing.T) {
	boom := assert.AnError
	ch := make(chan int, 1)
	ch <- 1
	recv := ReceiverChannel[int]{Chan: ch}

	err := Select(context.Background(), recv.RecvAndThen(func(int) error { return boom }))
	assert.ErrorIs(t, err, boom)
}

func TestCancelOnShutdownReturnsFnResultWhenNoShutdown(t *testing.T) {
	root := NewCancelToken()
	h := newHandle("/test", root, root, newJoinerToken(func(e *SubsystemError) *SubsystemError { return e }), nopLogger())

	v, err := CancelOnShutdown(h, func(ctx context.Context) (int, error) {
		return 99, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 99, v)
}

func TestCancelOnShutdownReturnsImmediatelyOnShutdown(t *testing.T) {
	root := NewCancelToken()
	h := newHandle("/test", root, root, newJoinerToken(func(e *SubsystemError) *SubsystemError { return e }), nopLogger())

	started := make(chan struct{})
	h.InitiateLocalShutdown()

	_, err := CancelOnShutdown(h, func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done() // already closed: shutdown was initiated before the call
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("fn was never even started")
	}
}
