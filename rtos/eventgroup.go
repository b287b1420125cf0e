// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtos

import (
	"sync"
	"time"
)

// EventGroup generalizes RTOS_FLAGS / k_event: a word of up to 32
// independent bits that tasks can set, clear, and block on, waiting for
// either all or any of a requested mask.
type EventGroup struct {
	mu    sync.Mutex
	cond  *sync.Cond
	flags uint32
}

// NewEventGroup returns an initialized, all-clear EventGroup, generalizing
// RTOS_FLAGS_INIT.
func NewEventGroup() *EventGroup {
	g := &EventGroup{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// SetBits ORs bits into the flag word and wakes any waiters, generalizing
// RTOS_FLAGS_SET.
func (g *EventGroup) SetBits(bits uint32) {
	g.mu.Lock()
	g.flags |= bits
	g.mu.Unlock()
	g.cond.Broadcast()
}

// ClearBits clears bits from the flag word, generalizing RTOS_FLAGS_CLR.
func (g *EventGroup) ClearBits(bits uint32) {
	g.mu.Lock()
	g.flags &^= bits
	g.mu.Unlock()
}

// Get returns the current flag word, generalizing RTOS_FLAGS_GET.
func (g *EventGroup) Get() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.flags
}

// WaitAll blocks until every bit in mask is set, then returns the full flag
// word observed at that moment. If clear is true the matched bits are
// cleared atomically before returning, generalizing
// RTOS_PEND_ALL_FLAGS[_CLR]. A timeout <= 0 waits forever; a positive
// timeout returns the flag word observed at expiry (which may not satisfy
// mask) and ok=false.
func (g *EventGroup) WaitAll(mask uint32, clear bool, timeout time.Duration) (flags uint32, ok bool) {
	return g.wait(mask, true, clear, timeout)
}

// WaitAny blocks until at least one bit in mask is set, generalizing
// RTOS_PEND_ANY_FLAGS[_CLR]. See WaitAll for the clear and timeout
// semantics.
func (g *EventGroup) WaitAny(mask uint32, clear bool, timeout time.Duration) (flags uint32, ok bool) {
	return g.wait(mask, false, clear, timeout)
}

func (g *EventGroup) wait(mask uint32, all, clear bool, timeout time.Duration) (uint32, bool) {
	satisfied := func(f uint32) bool {
		if all {
			return f&mask == mask
		}
		return f&mask != 0
	}

	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for !satisfied(g.flags) {
		if timeout <= 0 {
			g.cond.Wait()
			continue
		}
		if !g.waitUntil(deadline) {
			return g.flags, false
		}
	}

	f := g.flags
	if clear {
		g.flags &^= mask
	}
	return f, true
}

// waitUntil blocks on the condition variable until woken or deadline
// passes, reporting whether it woke before the deadline. sync.Cond has no
// native timeout, so a watcher goroutine broadcasts on expiry.
func (g *EventGroup) waitUntil(deadline time.Time) bool {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return false
	}

	timer := time.AfterFunc(remaining, g.cond.Broadcast)
	defer timer.Stop()

	g.cond.Wait()
	return time.Now().Before(deadline)
}
