// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtos

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// Semaphore generalizes RTOS_SEM as a counting semaphore that starts with
// all limit permits available. Take blocks until a permit is available; Give
// returns one. A limit of 1 gives a binary semaphore.
type Semaphore struct {
	w     *semaphore.Weighted
	limit int64
}

// NewSemaphore returns a Semaphore with room for up to limit outstanding
// permits, generalizing RTOS_SEM_INIT/RTOS_SEM_DEFINE.
func NewSemaphore(limit int64) *Semaphore {
	if limit <= 0 {
		limit = 1
	}
	return &Semaphore{w: semaphore.NewWeighted(limit), limit: limit}
}

// Take blocks until a permit is available, generalizing RTOS_SEM_TAKE.
func (s *Semaphore) Take(ctx context.Context) error {
	return s.w.Acquire(ctx, 1)
}

// TryTake acquires a permit only if one is immediately available,
// generalizing RTOS_SEM_TAKE_MS with a zero timeout.
func (s *Semaphore) TryTake() bool {
	return s.w.TryAcquire(1)
}

// TakeTimeout blocks up to d for a permit, generalizing RTOS_SEM_TAKE_MS. It
// reports false if d elapses first.
func (s *Semaphore) TakeTimeout(d time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return s.w.Acquire(ctx, 1) == nil
}

// Give returns a permit, generalizing RTOS_SEM_GIVE.
func (s *Semaphore) Give() {
	s.w.Release(1)
}
