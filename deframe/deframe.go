// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package deframe implements the push-style stream deframer state machines
// for COBS and SLIP framing, generalizing the original Cobs_deframer/
// slip_deframer firmware modules.
//
// A Deframer consumes arbitrarily-chunked bytes from a boundary-less stream
// and emits complete frame payloads. It never blocks: every call appends
// its input to an internal staging FIFO and returns immediately, either with
// a decoded frame or a signal that more data is required. Malformed input
// (a stray byte stream with no delimiters, an oversized frame, an invalid
// escape sequence) resynchronizes the state machine rather than failing the
// stream — see package-level Err values for the one case that is the
// caller's fault (a destination buffer too small to hold a decoded frame)
// versus the cases that are handled internally by discarding data.
package deframe

import (
	"errors"

	"github.com/rs/zerolog"

	"code.hybscloud.com/rpcframe/fifo"
)

// ErrShortBuffer reports that the caller's destination buffer is smaller
// than the decoded frame. Unlike framing violations, this is not resynced
// away: the frame is lost and the caller should retry with a larger buffer
// sized to at least the configured MTU.
var ErrShortBuffer = errors.New("deframe: destination buffer too small for frame")

type state uint8

const (
	stateInit state = iota
	stateFindSOF
	stateFindEOF
	stateDecode
)

// Deframer is the capability exposed by both the COBS and SLIP state
// machines: push a chunk of new stream bytes and attempt to produce one
// decoded frame.
type Deframer interface {
	// Push appends chunk to the staging store (chunk may be empty, to
	// resume draining a staging store that already holds buffered bytes)
	// and attempts to decode one frame into dst.
	//
	// Returns (n, true, nil) when dst[:n] holds a complete frame.
	// Returns (0, false, nil) when more input is needed.
	// Returns (0, false, err) only when dst was too small for a frame that
	// was otherwise successfully decoded (ErrShortBuffer); all other
	// malformed-input conditions resynchronize internally and are reported
	// as (0, false, nil) plus a log line.
	Push(chunk, dst []byte) (n int, ready bool, err error)

	// Reset discards any partially-received frame and staged bytes,
	// returning the deframer to its initial state.
	Reset()
}

// base holds the staging FIFO and bookkeeping shared by both protocols. The
// staging FIFO is sized to 2x the work buffer, per the original firmware's
// rule of thumb for absorbing a full frame plus resynchronization garbage.
type base struct {
	fifo  *fifo.FIFO
	work  []byte
	count int // bytes captured into work so far
	st    state
	log   zerolog.Logger
}

func newBase(mtu int, threadSafe bool, log zerolog.Logger) base {
	if mtu <= 0 {
		mtu = 4096
	}
	var f *fifo.FIFO
	if threadSafe {
		f = fifo.NewThreadSafe(2 * mtu)
	} else {
		f = fifo.New(2 * mtu)
	}
	return base{
		fifo: f,
		work: make([]byte, mtu),
		st:   stateInit,
		log:  log,
	}
}

func (b *base) reset() {
	b.fifo.Flush()
	b.count = 0
	b.st = stateInit
}

// pushChunk stages chunk into the FIFO. On overflow it flushes and
// resynchronizes, per the documented drop-partial-on-overflow policy.
func (b *base) pushChunk(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	if err := b.fifo.Write(chunk); err != nil {
		b.log.Warn().Int("len", len(chunk)).Msg("deframe: staging fifo overflow, flushing and resynchronizing")
		b.fifo.Flush()
		b.st = stateInit
	}
}
