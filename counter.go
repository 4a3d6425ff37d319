package distcounter

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
	"golang.org/x/sys/cpu"
)

// A Counter is an integer counter whose writes may be distributed over
// several Shards to avoid contention on a single memory location.
//
// The counter itself can be updated directly with Add and Sub; those are
// plain atomic additions to a global value. Writers that update at high
// frequency should instead use a Shard of their own: a Shard is written
// without any cross-goroutine traffic and only meets the counter again when
// it is read, exchanged or closed.
//
// Load and Exchange are O(N) in the number of attached shards and do not
// observe a consistent view of the total if they run concurrently to Add.
// For example, suppose goroutine G1 runs
//
//	shard.Add(1)
//	shard.Add(2)
//
// and, concurrently, G2 runs
//
//	t := counter.Load()
//
// The value of t may be any of 0, 1 or 3.
//
// Values wrap around according to T. Use Exchange to reset long running
// counters before they overflow.
//
// A Counter must not be copied after first use.
type Counter[T constraints.Integer] struct {
	value atomic.Uint64
	_     cpu.CacheLinePad // keep direct adds off the registry's cache line

	mu     sync.Mutex
	shards ilist[Shard[T]] // guarded by mu
	closed bool            // guarded by mu

	log *zap.Logger
}

// NewCounter returns a Counter holding initial and no shards.
func NewCounter[T constraints.Integer](initial T, opts ...Option) *Counter[T] {
	o := buildOptions(opts)
	c := &Counter[T]{log: o.logger}
	c.value.Store(uint64(initial))
	return c
}

// Add adds n to the global value.
func (c *Counter[T]) Add(n T) {
	c.value.Add(uint64(n))
}

// Sub subtracts n from the global value.
func (c *Counter[T]) Sub(n T) {
	c.value.Add(-uint64(n))
}

// Inc adds one.
func (c *Counter[T]) Inc() {
	c.Add(1)
}

// Dec subtracts one.
func (c *Counter[T]) Dec() {
	c.Sub(1)
}

// Load computes the total counter value: the global value plus the local
// value of every attached shard.
func (c *Counter[T]) Load() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	sum := c.value.Load()
	c.shards.do(func(s *Shard[T]) {
		sum += s.value.Load()
	})
	return T(sum)
}

// Exchange sets the counter to to and reports the old total.
//
// Every shard is zeroed by its own atomic swap, so a shard's value is either
// part of the result or stays in the counter. Exchange must not race with a
// write to the same shard; see Shard.Add.
func (c *Counter[T]) Exchange(to T) T {
	c.mu.Lock()
	var old uint64
	c.shards.do(func(s *Shard[T]) {
		old += s.value.Swap(0)
	})
	old += c.value.Swap(uint64(to))
	n := c.shards.len
	c.mu.Unlock()

	if c.log != nil {
		c.log.Debug("counter exchanged", zap.Int("shards", n))
	}
	return T(old)
}

// Len reports the number of attached shards.
func (c *Counter[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shards.len
}

// Close marks the end of the counter's life. All shards must have been
// closed before; a counter with live shards is a programming error that
// panics unless the counter was built WithLogger and a production logger.
func (c *Counter[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.shards.empty() {
		c.violation("counter closed with live shards", zap.Int("shards", c.shards.len))
		return
	}
	c.closed = true
}

// String implements the expvar.Var interface.
func (c *Counter[T]) String() string {
	return fmt.Sprint(c.Load())
}

func (c *Counter[T]) attach(s *Shard[T]) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.violation("shard attached to closed counter")
		c.mu.Lock()
	}
	c.shards.pushBack(&s.link, s)
	n := c.shards.len
	c.mu.Unlock()

	if c.log != nil {
		c.log.Debug("shard attached", zap.Int("shards", n))
	}
}

// detach folds the shard's value into the global value and unlinks it.
// Both happen under mu, so readers see the value in exactly one place.
func (c *Counter[T]) detach(s *Shard[T]) {
	c.mu.Lock()
	if !c.shards.remove(&s.link) {
		c.mu.Unlock()
		return
	}
	c.value.Add(s.value.Swap(0))
	n := c.shards.len
	c.mu.Unlock()

	if c.log != nil {
		c.log.Debug("shard detached", zap.Int("shards", n))
	}
}

func (c *Counter[T]) violation(msg string, fields ...zap.Field) {
	if c.log == nil {
		panic("distcounter: " + msg)
	}
	c.log.DPanic(msg, fields...)
}
