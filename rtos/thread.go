// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rtos generalizes the RtosUtils macro layer — task creation,
// event flags, mutexes and semaphores — onto goroutines and the Go
// concurrency primitives the rest of the example pack favors
// (golang.org/x/sync). It exists so the RPC server's accept loop and
// per-connection loops are built from the same named, priority-aware task
// abstraction the original firmware used, instead of bare `go func()`.
package rtos

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Priority mirrors the original's convention: a lower number is higher
// priority. It is carried only as structured logging context; Go does not
// expose true priority scheduling, so Priority does not affect scheduling.
type Priority int

const (
	PriorityHigh   Priority = 0
	PriorityNormal Priority = 5
	PriorityLow    Priority = 10
)

// ThreadOptions configures Spawn. The zero value runs fn as an unpinned,
// unnamed task with priority 0 (PriorityHigh).
type ThreadOptions struct {
	Name     string
	Priority Priority
	// Pin locks the goroutine to its OS thread for the task's lifetime,
	// generalizing RTOS_TASK_CREATE_PINNED's core affinity. It does not
	// select a specific CPU core — Go's scheduler owns that decision — but
	// it does guarantee the task never migrates threads mid-run, which is
	// what callers pinning for thread-local state actually depend on.
	Pin bool
}

// Thread is a named, logged unit of concurrent work, generalizing
// RTOS_TASK_CREATE/RTOS_TASK_CREATE_PINNED. Unlike the firmware's static
// task table, a Thread is spawned and joined like any goroutine; Done
// reports completion instead of requiring a caller-supplied handle.
type Thread struct {
	opts ThreadOptions
	done chan struct{}
	err  error
}

// Spawn starts fn as a new Thread and returns immediately. fn's panic is not
// recovered: a task crash should crash the process exactly as a bare
// goroutine panic would.
func Spawn(opts ThreadOptions, log zerolog.Logger, fn func()) *Thread {
	t := &Thread{opts: opts, done: make(chan struct{})}
	log = log.With().Str("task", opts.Name).Int("prio", int(opts.Priority)).Logger()

	go func() {
		defer close(t.done)
		if opts.Pin {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
		}
		log.Debug().Msg("rtos: task started")
		fn()
		log.Debug().Msg("rtos: task finished")
	}()
	return t
}

// Done returns a channel closed when the thread's function returns.
func (t *Thread) Done() <-chan struct{} {
	return t.done
}

// Sleep pauses the calling goroutine, generalizing RTOS_TASK_SLEEP_ms.
// Callers needing cancellation should select on a context.Context alongside
// a timer instead; Sleep exists for the simple fire-and-forget delay case
// the original macros covered.
func Sleep(d time.Duration) {
	time.Sleep(d)
}
