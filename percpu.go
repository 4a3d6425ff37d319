// Package distcounter provides an integer counter whose writes are
// distributed over single-writer shards.
//
// A Counter holds a global value and a registry of attached Shards. Writers
// update their own shard without contention; readers sum the shards. Local
// wraps a Counter with one implicit shard per processor.
package distcounter

import (
	"runtime"
	"sync/atomic"
	_ "unsafe"

	"golang.org/x/exp/constraints"
	"golang.org/x/sys/cpu"
)

// A Local is a Counter with an implicit shard per processor (P).
//
// Each update pins the calling goroutine to its processor and writes that
// processor's shard, which keeps every shard single-writer without any
// coordination between goroutines. Shards are created on the first update
// made on each processor.
//
// A Local must be closed after all writers are done with it.
type Local[T constraints.Integer] struct {
	counter *Counter[T]
	pad1    cpu.CacheLinePad // prevent false sharing
	slots   []localSlot[T]
	pad2    cpu.CacheLinePad // prevent false sharing
}

type localSlot[T constraints.Integer] struct {
	shard atomic.Pointer[Shard[T]]
	_     cpu.CacheLinePad
}

// NewLocal returns a Local starting at zero, with room for a shard per
// processor as reported by GOMAXPROCS.
func NewLocal[T constraints.Integer](opts ...Option) *Local[T] {
	return &Local[T]{
		counter: NewCounter[T](0, opts...),
		slots:   make([]localSlot[T], runtime.GOMAXPROCS(0)),
	}
}

// Add adds n to the shard of the current processor.
//
// If GOMAXPROCS has grown since the Local was created, processors without a
// slot add to the counter's global value instead.
func (l *Local[T]) Add(n T) {
	for {
		pid := runtime_procPin()
		if pid >= len(l.slots) {
			runtime_procUnpin()
			l.counter.Add(n)
			return
		}
		if s := l.slots[pid].shard.Load(); s != nil {
			s.Add(n)
			runtime_procUnpin()
			return
		}
		// Attaching takes the registry lock, which must not happen while
		// pinned.
		runtime_procUnpin()
		l.attach(pid)
	}
}

// Sub subtracts n.
func (l *Local[T]) Sub(n T) {
	l.Add(-n)
}

// Inc adds one.
func (l *Local[T]) Inc() {
	l.Add(1)
}

// Dec subtracts one.
func (l *Local[T]) Dec() {
	l.Sub(1)
}

// Load computes the total counter value.
func (l *Local[T]) Load() T {
	return l.counter.Load()
}

// Exchange sets the counter to to and reports the old total.
func (l *Local[T]) Exchange(to T) T {
	return l.counter.Exchange(to)
}

// Counter returns the underlying counter.
func (l *Local[T]) Counter() *Counter[T] {
	return l.counter
}

// Close folds every processor's shard into the counter and closes it.
func (l *Local[T]) Close() {
	for i := range l.slots {
		if s := l.slots[i].shard.Swap(nil); s != nil {
			s.Close()
		}
	}
	l.counter.Close()
}

func (l *Local[T]) attach(pid int) {
	s := NewShard(l.counter)
	if !l.slots[pid].shard.CompareAndSwap(nil, s) {
		// Another goroutine on the same processor won; s is still zero.
		s.Close()
	}
}

//go:linkname runtime_procPin runtime.procPin
func runtime_procPin() int

//go:linkname runtime_procUnpin runtime.procUnpin
func runtime_procUnpin()
