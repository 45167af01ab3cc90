package tasktree

import "context"

// CancelToken is a node in the hierarchical cancellation tree described by
// the supervisor's data model. It is a thin wrapper over context.Context:
// the stdlib's own parent/child cancellation propagation already gives the
// idempotent, monotonic, broadcast-on-close semantics the tree needs, so
// there is no separate hand-rolled flag structure here.
type CancelToken struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCancelToken creates a root of a new cancellation tree.
func NewCancelToken() *CancelToken {
	return newCancelTokenFrom(context.Background())
}

func newCancelTokenFrom(parent context.Context) *CancelToken {
	ctx, cancel := context.WithCancel(parent)
	return &CancelToken{ctx: ctx, cancel: cancel}
}

// Child derives a new token whose cancellation is implied by this one's,
// but which can additionally be cancelled independently without affecting
// its parent or siblings.
func (t *CancelToken) Child() *CancelToken {
	return newCancelTokenFrom(t.ctx)
}

// Cancel requests cancellation of this token and every descendant. Safe to
// call more than once; only the first call has an effect.
func (t *CancelToken) Cancel() {
	t.cancel()
}

// IsCancelled reports whether this token (or an ancestor) has been
// cancelled.
func (t *CancelToken) IsCancelled() bool {
	select {
	case <-t.ctx.Done():
		return true
	default:
		return false
	}
}

// Done returns a channel closed once this token is cancelled.
func (t *CancelToken) Done() <-chan struct{} {
	return t.ctx.Done()
}

// Context exposes the underlying context.Context, for use with APIs that
// expect one directly (e.g. as a deadline/cancellation source for an
// arbitrary blocking call).
func (t *CancelToken) Context() context.Context {
	return t.ctx
}
