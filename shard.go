package distcounter

import (
	"sync/atomic"

	"golang.org/x/exp/constraints"
	"golang.org/x/sys/cpu"
)

// A Shard is a write-only part of a Counter.
//
// A shard has a single writer: one goroutine, or several goroutines that
// serialize their access to it. Its value is folded into the owning counter
// when the shard is closed, and is read by the counter's Load and Exchange
// in the meantime.
//
// Keep a shard in a local variable, in a per-worker struct, or in a slice
// indexed by worker number.
type Shard[T constraints.Integer] struct {
	value atomic.Uint64
	_     cpu.CacheLinePad // prevent false sharing

	owner *Counter[T]
	link  link[Shard[T]] // guarded by owner.mu
}

// NewShard returns a shard attached to c.
// It must be closed before c is closed.
func NewShard[T constraints.Integer](c *Counter[T]) *Shard[T] {
	s := &Shard[T]{owner: c}
	c.attach(s)
	return s
}

// NewShard returns a shard attached to c. See the package level NewShard.
func (c *Counter[T]) NewShard() *Shard[T] {
	return NewShard(c)
}

// Add adds n to the shard.
//
// The update is a separate atomic load and store, not an atomic addition,
// so concurrent calls on the same shard may lose updates. The atomics only
// make the value readable by the owning counter.
func (s *Shard[T]) Add(n T) {
	s.value.Store(s.value.Load() + uint64(n))
}

// Sub subtracts n from the shard. It has the same single writer requirement
// as Add.
func (s *Shard[T]) Sub(n T) {
	s.value.Store(s.value.Load() - uint64(n))
}

// Inc adds one.
func (s *Shard[T]) Inc() {
	s.Add(1)
}

// Dec subtracts one.
func (s *Shard[T]) Dec() {
	s.Sub(1)
}

// Counter returns the counter s is attached to.
func (s *Shard[T]) Counter() *Counter[T] {
	return s.owner
}

// Close folds the shard's value into its counter and detaches the shard.
// Closing a shard more than once has no effect. The shard must not be
// written after Close.
func (s *Shard[T]) Close() {
	s.owner.detach(s)
}
