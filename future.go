package tasktree

import (
	"context"
	"reflect"
	"time"
)

// Selectable is something that can participate in Select: a single
// channel operation plus an optional overdue callback and a followup
// callback fired once the operation completes. Grounded on the teacher's
// select.go/channels.go sketches, turned from panic("todo") stubs into a
// working implementation built on reflect.Select (the teacher's own
// doc-comments on select.go already identify reflect.Select as the only
// viable mechanism for a variadic heterogeneous wait). Select does not
// consult the overdue deadline and never invokes the overdue callback.
type Selectable interface {
	Name() string
	SetOverdueReaction(deadline time.Time, callback func(Selectable)) Selectable
	SetFollowup(func(Selectable)) Selectable

	selectCase() reflect.SelectCase
	complete(recv reflect.Value, recvOK bool)
	overdue() (time.Time, func(Selectable))
}

type selectableBase struct {
	name     string
	deadline time.Time
	overdueF func(Selectable)
	followup func(Selectable)
}

func (s *selectableBase) Name() string { return s.name }

func (s *selectableBase) overdue() (time.Time, func(Selectable)) { return s.deadline, s.overdueF }

// SenderChannel wraps a chan<- for use with Select, so a send operation
// is automatically raced against context cancellation and the other
// supplied Selectables.
type SenderChannel[T any] struct {
	Chan chan<- T
}

type selectableSend[T any] struct {
	selectableBase
	ch  *SenderChannel[T]
	val T
	cb  func() error
	err error
}

// Send prepares a send of v for use with Select.
func (ch *SenderChannel[T]) Send(v T) Selectable {
	return &selectableSend[T]{selectableBase: selectableBase{name: "send"}, ch: ch, val: v}
}

// SendAndThen prepares a send of v, invoking cb once the send completes.
func (ch *SenderChannel[T]) SendAndThen(v T, cb func() error) Selectable {
	return &selectableSend[T]{selectableBase: selectableBase{name: "send"}, ch: ch, val: v, cb: cb}
}

func (s *selectableSend[T]) SetOverdueReaction(deadline time.Time, cb func(Selectable)) Selectable {
	s.deadline, s.overdueF = deadline, cb
	return s
}

func (s *selectableSend[T]) SetFollowup(cb func(Selectable)) Selectable {
	s.followup = cb
	return s
}

func (s *selectableSend[T]) selectCase() reflect.SelectCase {
	return reflect.SelectCase{Dir: reflect.SelectSend, Chan: reflect.ValueOf(s.ch.Chan), Send: reflect.ValueOf(s.val)}
}

func (s *selectableSend[T]) complete(reflect.Value, bool) {
	if s.cb != nil {
		s.err = s.cb()
	}
	if s.followup != nil {
		s.followup(s)
	}
}

func (s *selectableSend[T]) lastErr() error { return s.err }

// ReceiverChannel wraps a <-chan for use with Select.
type ReceiverChannel[T any] struct {
	Chan <-chan T
}

type selectableRecv[T any] struct {
	selectableBase
	ch     *ReceiverChannel[T]
	cb     func(T) error
	err    error
	closed bool
}

// Recv prepares a receive for use with Select, discarding the value.
func (ch *ReceiverChannel[T]) Recv() Selectable {
	return &selectableRecv[T]{selectableBase: selectableBase{name: "recv"}, ch: ch}
}

// RecvAndThen prepares a receive, invoking cb with the received value.
func (ch *ReceiverChannel[T]) RecvAndThen(cb func(T) error) Selectable {
	return &selectableRecv[T]{selectableBase: selectableBase{name: "recv"}, ch: ch, cb: cb}
}

func (s *selectableRecv[T]) SetOverdueReaction(deadline time.Time, cb func(Selectable)) Selectable {
	s.deadline, s.overdueF = deadline, cb
	return s
}

func (s *selectableRecv[T]) SetFollowup(cb func(Selectable)) Selectable {
	s.followup = cb
	return s
}

func (s *selectableRecv[T]) selectCase() reflect.SelectCase {
	return reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(s.ch.Chan)}
}

func (s *selectableRecv[T]) complete(recv reflect.Value, recvOK bool) {
	s.closed = !recvOK
	if s.cb != nil && recvOK {
		s.err = s.cb(recv.Interface().(T))
	}
	if s.followup != nil {
		s.followup(s)
	}
}

func (s *selectableRecv[T]) lastErr() error { return s.err }

// Select runs a single select over ctx.Done() plus every supplied
// Selectable, returning once any one of them fires. It always includes
// the context in the wait set, so a Select can never block past
// cancellation even if none of the Selectables themselves observe ctx.
func Select(ctx context.Context, doThese ...Selectable) error {
	cases := make([]reflect.SelectCase, 0, len(doThese)+1)
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})
	for _, s := range doThese {
		cases = append(cases, s.selectCase())
	}

	chosen, recv, recvOK := reflect.Select(cases)
	if chosen == 0 {
		return ctx.Err()
	}
	sel := doThese[chosen-1]
	sel.complete(recv, recvOK)
	if e, ok := sel.(interface{ lastErr() error }); ok {
		return e.lastErr()
	}
	return nil
}

// CancelOnShutdown races fn against the handle's shutdown signal. If
// shutdown is requested before fn returns, CancelOnShutdown returns
// context.Canceled immediately without waiting for fn; fn's own context
// is expected to observe the same cancellation so it can wind down.
// Grounded on the original's cancel_on_shutdown future combinator.
func CancelOnShutdown[T any](handle *SubsystemHandle, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx := handle.token.Context()
	resultCh := make(chan ResolvedPromise[T], 1)
	go func() {
		v, err := fn(ctx)
		resultCh <- ResolvedPromise[T]{Value: v, Error: err}
	}()

	select {
	case r := <-resultCh:
		return r.Value, r.Error
	case <-handle.OnShutdownRequestedChan():
		var zero T
		return zero, context.Canceled
	}
}
