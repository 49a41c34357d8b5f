// Package fibonacci hands out consecutive Fibonacci terms from a single
// shared counter.
package fibonacci

import (
	"math/bits"

	"github.com/dmitrijs2005/fibkeeper/internal/common"
	"github.com/dmitrijs2005/fibkeeper/internal/syncx"
	"lukechampine.com/uint128"
)

// Counter holds the last two emitted terms. The zero value is not usable,
// construct it with NewCounter.
type Counter struct {
	guard syncx.Mutex
	prev  uint128.Uint128
	curr  uint128.Uint128
}

// NewCounter returns a counter whose first Next call yields 1.
func NewCounter() *Counter {
	return NewCounterAt(uint128.From64(1), uint128.Zero)
}

// NewCounterAt returns a counter positioned after the terms prev, curr.
func NewCounterAt(prev, curr uint128.Uint128) *Counter {
	return &Counter{prev: prev, curr: curr}
}

// checkedAdd returns a+b and whether the sum overflowed 128 bits.
func checkedAdd(a, b uint128.Uint128) (uint128.Uint128, bool) {
	lo, carry := bits.Add64(a.Lo, b.Lo, 0)
	hi, carry := bits.Add64(a.Hi, b.Hi, carry)
	return uint128.New(lo, hi), carry != 0
}

// Next advances the sequence by one term and returns it.
//
// On overflow the state is left untouched and common.ErrorOverflow is
// returned, so every later call fails the same way. A poisoned guard yields
// common.ErrorLock.
func (c *Counter) Next() (uint128.Uint128, error) {
	var next uint128.Uint128

	err := c.guard.Do(func() error {
		sum, overflow := checkedAdd(c.curr, c.prev)
		if overflow {
			return common.ErrorOverflow
		}
		c.prev, c.curr = c.curr, sum
		next = sum
		return nil
	})
	if err != nil {
		return uint128.Zero, err
	}

	return next, nil
}

// State returns a consistent snapshot of (prev, curr).
func (c *Counter) State() (prev, curr uint128.Uint128, err error) {
	err = c.guard.Do(func() error {
		prev, curr = c.prev, c.curr
		return nil
	})
	return prev, curr, err
}
