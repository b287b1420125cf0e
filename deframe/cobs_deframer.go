// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package deframe

import (
	"errors"

	"github.com/rs/zerolog"

	"code.hybscloud.com/rpcframe/cobs"
)

const cobsDelimiter = 0x00

// COBS is a push-style deframer for COBS-framed streams, generalizing the
// original Cobs_deframer state machine: INIT/FIND_SOF discard bytes until a
// 0x00 delimiter, FIND_EOF captures the encoded body up to the next 0x00,
// which doubles as the start delimiter of the following frame.
type COBS struct {
	base
}

// NewCOBS returns a COBS deframer whose work buffer holds up to mtu encoded
// bytes between delimiters. log receives resynchronization diagnostics.
func NewCOBS(mtu int, threadSafe bool, log zerolog.Logger) *COBS {
	return &COBS{base: newBase(mtu, threadSafe, log)}
}

// Reset returns the deframer to its initial state, discarding any partial
// frame and staged bytes.
func (d *COBS) Reset() {
	d.reset()
}

// Push implements Deframer.
func (d *COBS) Push(chunk, dst []byte) (int, bool, error) {
	d.pushChunk(chunk)

	var b [1]byte
	for {
		if d.fifo.Read(b[:]) == 0 {
			return 0, false, nil
		}
		c := b[0]

		if d.st != stateFindEOF {
			if c == cobsDelimiter {
				d.count = 0
				d.st = stateFindEOF
			}
			continue
		}

		if c == cobsDelimiter {
			if d.count == 0 {
				// back-to-back delimiters: empty frame, ignore and keep
				// scanning for the next one.
				continue
			}
			n, err := cobs.Decode(dst, d.work[:d.count])
			d.count = 0
			if err != nil {
				if errors.Is(err, cobs.ErrOverflow) {
					return 0, false, ErrShortBuffer
				}
				d.log.Warn().Err(err).Msg("deframe: cobs decode failed, dropping frame")
				continue
			}
			return n, true, nil
		}

		if d.count >= len(d.work) {
			d.log.Warn().Msg("deframe: cobs frame exceeds mtu, resynchronizing")
			d.fifo.Flush()
			d.st = stateInit
			d.count = 0
			return 0, false, nil
		}
		d.work[d.count] = c
		d.count++
	}
}
