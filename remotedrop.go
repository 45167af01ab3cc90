package tasktree

import "sync"

// remoteSlots is an owner-side collection of items that can be removed by
// a handle held elsewhere, in O(1), via swap-with-last. Grounded on the
// original's RemotelyDroppableItems/RemoteDrop pair; here "drop" becomes
// an explicit Release() call (see DESIGN.md).
type remoteSlots[T any] struct {
	mu    sync.Mutex
	items []*remoteSlot[T]
}

type remoteSlot[T any] struct {
	item   T
	offset int
}

func newRemoteSlots[T any]() *remoteSlots[T] {
	return &remoteSlots[T]{}
}

// RemoteDrop is the handle returned by Insert; calling Release removes
// the associated item from its owning collection.
type RemoteDrop[T any] struct {
	owner *remoteSlots[T]
	slot  *remoteSlot[T]
}

// Insert adds item to the collection and returns a handle that removes it
// again when released.
func (c *remoteSlots[T]) Insert(item T) *RemoteDrop[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot := &remoteSlot[T]{item: item, offset: len(c.items)}
	c.items = append(c.items, slot)
	return &RemoteDrop[T]{owner: c, slot: slot}
}

// Len reports the current number of live items, for diagnostics/tests.
func (c *remoteSlots[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Snapshot returns a copy of the currently held items, for iteration
// (e.g. partial shutdown needing to look up a named child).
func (c *remoteSlots[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	for i, s := range c.items {
		out[i] = s.item
	}
	return out
}

// Release removes this item from its owning collection. Idempotent and
// safe to call more than once or after the collection has been
// discarded.
func (d *RemoteDrop[T]) Release() {
	if d.owner == nil {
		return
	}
	owner := d.owner
	d.owner = nil

	owner.mu.Lock()
	defer owner.mu.Unlock()

	offset := d.slot.offset
	if offset < 0 || offset >= len(owner.items) || owner.items[offset] != d.slot {
		// Already removed (or a stale handle after the collection reset).
		return
	}

	last := owner.items[len(owner.items)-1]
	owner.items = owner.items[:len(owner.items)-1]
	if offset != len(owner.items) {
		last.offset = offset
		owner.items[offset] = last
	}
	d.slot.offset = -1
}
