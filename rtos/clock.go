// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtos

import "time"

// Clock generalizes the firmware's monotonic tick counter (k_uptime_get /
// RTOS_MS_TO_TICKS) onto Go's monotonic clock reading. It is an interface
// rather than bare time.Now() calls so a caller can substitute a fake clock;
// no other package in this module takes a Clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock backed by the real wall/monotonic clock.
type SystemClock struct{}

// Now returns time.Now(), which on every supported Go platform carries a
// monotonic reading suitable for measuring elapsed durations.
func (SystemClock) Now() time.Time { return time.Now() }
