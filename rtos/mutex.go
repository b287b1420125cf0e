// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtos

import "sync"

// Mutex generalizes RTOS_MUTEX / k_mutex. It wraps sync.Mutex directly; the
// wrapper exists so call sites read Lock/Unlock/TryLock against the same
// rtos vocabulary as the rest of this package rather than mixing sync and
// rtos primitives.
type Mutex struct {
	mu sync.Mutex
}

// Lock blocks until the mutex is acquired, generalizing RTOS_MUTEX_GET.
func (m *Mutex) Lock() { m.mu.Lock() }

// Unlock releases the mutex, generalizing RTOS_MUTEX_PUT.
func (m *Mutex) Unlock() { m.mu.Unlock() }

// TryLock attempts to acquire the mutex without blocking, generalizing
// RTOS_MUTEX_GET_WAIT_ms with a zero timeout.
func (m *Mutex) TryLock() bool { return m.mu.TryLock() }
