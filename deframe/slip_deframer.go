// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package deframe

import (
	"github.com/rs/zerolog"
)

const (
	slipEnd    = 0xC0
	slipEsc    = 0xDB
	slipEscEnd = 0xDC
	slipEscEsc = 0xDD
)

// SLIP is a push-style deframer for RFC 1055 SLIP-framed streams,
// generalizing the original slip_deframer state machine. Unlike COBS, the
// escape decoding happens inline while scanning for the end delimiter: there
// is no separate decode pass.
type SLIP struct {
	base
	escaped bool
}

// NewSLIP returns a SLIP deframer whose work buffer holds up to mtu decoded
// bytes between delimiters. log receives resynchronization diagnostics.
func NewSLIP(mtu int, threadSafe bool, log zerolog.Logger) *SLIP {
	return &SLIP{base: newBase(mtu, threadSafe, log)}
}

// Reset returns the deframer to its initial state, discarding any partial
// frame and staged bytes.
func (d *SLIP) Reset() {
	d.reset()
	d.escaped = false
}

// Push implements Deframer.
func (d *SLIP) Push(chunk, dst []byte) (int, bool, error) {
	d.pushChunk(chunk)

	var b [1]byte
	for {
		if d.fifo.Read(b[:]) == 0 {
			return 0, false, nil
		}
		c := b[0]

		if d.st != stateFindEOF {
			if c == slipEnd {
				d.count = 0
				d.escaped = false
				d.st = stateFindEOF
			}
			continue
		}

		switch {
		case d.escaped:
			d.escaped = false
			var plain byte
			switch c {
			case slipEscEnd:
				plain = slipEnd
			case slipEscEsc:
				plain = slipEsc
			default:
				d.log.Warn().Msg("deframe: slip invalid escape sequence, resynchronizing")
				d.fifo.Flush()
				d.st = stateInit
				d.count = 0
				d.escaped = false
				return 0, false, nil
			}
			if d.count >= len(d.work) {
				d.log.Warn().Msg("deframe: slip frame exceeds mtu, resynchronizing")
				d.fifo.Flush()
				d.st = stateInit
				d.count = 0
				return 0, false, nil
			}
			d.work[d.count] = plain
			d.count++
		case c == slipEsc:
			d.escaped = true
		case c == slipEnd:
			if d.count == 0 {
				continue
			}
			n := d.count
			d.count = 0
			if n > len(dst) {
				return 0, false, ErrShortBuffer
			}
			copy(dst, d.work[:n])
			return n, true, nil
		default:
			if d.count >= len(d.work) {
				d.log.Warn().Msg("deframe: slip frame exceeds mtu, resynchronizing")
				d.fifo.Flush()
				d.st = stateInit
				d.count = 0
				return 0, false, nil
			}
			d.work[d.count] = c
			d.count++
		}
	}
}
