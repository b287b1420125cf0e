// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package framer

import (
	"io"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"code.hybscloud.com/rpcframe/cobs"
	"code.hybscloud.com/rpcframe/deframe"
	"code.hybscloud.com/rpcframe/slip"
)

// maxStreamPayload bounds how large a single message's payload is allowed
// to be before writeStream refuses it with ErrTooLong, independent
// of ReadLimit (which only sizes the read side).
const maxStreamPayload = 1<<24 - 1

type framer struct {
	rd    io.Reader
	rdisc Discipline
	rpr   Protocol
	wr    io.Writer
	wdisc Discipline
	wpr   Protocol

	readLimit int64

	retryDelay time.Duration

	// read side: a persistent deframer carries resynchronization state
	// across calls; netbuf is the scratch buffer raw bytes are read into
	// before being pushed into the deframer.
	deframer deframe.Deframer
	netbuf   []byte

	// write side: txbuf holds the current message's encoded frame; txOff
	// tracks how much of it has been written so a partial write (in
	// non-blocking mode) can be resumed on the next writeStream call.
	txbuf []byte
	txOff int
	txLen int

	// reusable scratch buffer for Reader.WriteTo fast path
	rbuf []byte

	// reusable scratch buffer for Writer.ReadFrom fast path
	wbuf []byte
}

func newFramer(r io.Reader, w io.Writer, opts ...Option) *framer {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}

	fr := &framer{
		rd:        r,
		wr:        w,
		rdisc:     o.ReadDiscipline,
		wdisc:     o.WriteDiscipline,
		rpr:       o.ReadProto,
		wpr:       o.WriteProto,
		readLimit: int64(o.ReadLimit),

		retryDelay: o.RetryDelay,
	}
	return fr
}

func (fr *framer) mtu() int {
	if fr.readLimit > 0 {
		return int(fr.readLimit)
	}
	return defaultMTU
}

func (fr *framer) newDeframer() deframe.Deframer {
	if fr.rdisc == SLIP {
		return deframe.NewSLIP(fr.mtu(), false, zerolog.Nop())
	}
	return deframe.NewCOBS(fr.mtu(), false, zerolog.Nop())
}

func (fr *framer) maxFrameLen(payloadLen int) int {
	if fr.wdisc == SLIP {
		return slip.MaxFramedLen(payloadLen)
	}
	return cobs.MaxEncodedLen(payloadLen) + 2
}

func (fr *framer) frameInto(dst, payload []byte) (int, error) {
	if fr.wdisc == SLIP {
		return slip.Frame(dst, payload)
	}
	return cobs.Frame(dst, payload)
}

func (fr *framer) reset() {
	fr.txOff = 0
	fr.txLen = 0
}

func (fr *framer) yieldOnce() {
	// Cooperative yield to avoid burning a full core when emulating blocking
	// on top of a non-blocking transport.
	runtime.Gosched()
}

func (fr *framer) read(p []byte) (n int, err error) {
	if fr.rd == nil {
		return 0, ErrInvalidArgument
	}
	if fr.rpr.preserveBoundary() {
		return fr.readPacket(p)
	}
	return fr.readStream(p)
}

func (fr *framer) write(p []byte) (n int, err error) {
	if fr.wr == nil {
		return 0, ErrInvalidArgument
	}
	if fr.wpr.preserveBoundary() {
		return fr.writePacket(p)
	}
	return fr.writeStream(p)
}

func (fr *framer) waitOnceOnWouldBlock() bool {
	// returns whether the caller should retry
	if fr.retryDelay < 0 {
		return false
	}
	if fr.retryDelay == 0 {
		runtime.Gosched()
		return true
	}
	time.Sleep(fr.retryDelay)
	return true
}

func (fr *framer) readOnce(p []byte) (n int, err error) {
	for {
		n, err = fr.rd.Read(p)
		// Guard against broken Readers that violate the io.Reader contract by
		// returning (0, nil) on a non-empty buffer. Without this, the stream
		// state machine can spin indefinitely.
		if len(p) != 0 && n == 0 && err == nil {
			return 0, io.ErrNoProgress
		}
		if n > 0 {
			return n, err
		}
		if err != ErrWouldBlock {
			return n, err
		}
		if !fr.waitOnceOnWouldBlock() {
			return n, err
		}
	}
}

func (fr *framer) writeOnce(p []byte) (n int, err error) {
	for {
		n, err = fr.wr.Write(p)
		// Guard against broken Writers that violate the io.Writer contract by
		// returning (0, nil) on a non-empty buffer. Without this, the stream
		// writer can spin indefinitely.
		if len(p) != 0 && n == 0 && err == nil {
			return 0, io.ErrShortWrite
		}
		if n > 0 {
			return n, err
		}
		if err != ErrWouldBlock {
			return n, err
		}
		if !fr.waitOnceOnWouldBlock() {
			return n, err
		}
	}
}

func (fr *framer) readPacket(p []byte) (n int, err error) {
	n, err = fr.readOnce(p)
	if fr.readLimit > 0 && int64(n) > fr.readLimit {
		return n, ErrTooLong
	}
	return n, err
}

func (fr *framer) writePacket(p []byte) (n int, err error) {
	n, err = fr.writeOnce(p)
	if err != nil {
		return n, err
	}
	if n != len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// mapDeframeErr translates a deframe.Deframer error into the caller-facing
// error the rest of framer uses. ErrShortBuffer is the only error a Deframer
// ever surfaces to its caller (every other malformed-frame condition is
// handled by internal resynchronization); everything else is a logic error.
func (fr *framer) mapDeframeErr(err error) (int, error) {
	if err == deframe.ErrShortBuffer {
		return 0, io.ErrShortBuffer
	}
	return 0, err
}

// readStream decodes one framed message per call, generalizing the original
// length-prefix decoder with a push-style COBS/SLIP deframer. The deframer
// instance is persistent across calls so resynchronization state and
// staged-but-undelivered bytes survive a non-blocking retry.
func (fr *framer) readStream(p []byte) (n int, err error) {
	if fr.deframer == nil {
		fr.deframer = fr.newDeframer()
	}
	if fr.netbuf == nil {
		fr.netbuf = make([]byte, fr.mtu())
	}

	// Drain any bytes already staged from a previous read before asking the
	// transport for more.
	n, ready, derr := fr.deframer.Push(nil, p)
	if derr != nil {
		return fr.mapDeframeErr(derr)
	}
	if ready {
		return n, nil
	}

	for {
		rn, rerr := fr.readOnce(fr.netbuf)
		if rn > 0 {
			n, ready, derr = fr.deframer.Push(fr.netbuf[:rn], p)
			if derr != nil {
				return fr.mapDeframeErr(derr)
			}
			if ready {
				return n, nil
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				return 0, io.EOF
			}
			// ErrWouldBlock/ErrMore and any other transport error: the
			// deframer already holds whatever partial frame it has seen so
			// far, so the next readStream call resumes cleanly.
			return 0, rerr
		}
	}
}

// writeStream encodes p as a single framed message and writes it, resuming a
// partial write across calls (tracked via txOff/txLen) when the transport
// returns ErrWouldBlock mid-frame.
func (fr *framer) writeStream(p []byte) (n int, err error) {
	if len(p) > maxStreamPayload {
		return 0, ErrTooLong
	}

	if fr.txOff == 0 && fr.txLen == 0 {
		need := fr.maxFrameLen(len(p))
		if cap(fr.txbuf) < need {
			fr.txbuf = make([]byte, need)
		}
		fn, ferr := fr.frameInto(fr.txbuf[:need], p)
		if ferr != nil {
			return 0, ferr
		}
		fr.txLen = fn
	}

	for fr.txOff < fr.txLen {
		wn, we := fr.writeOnce(fr.txbuf[fr.txOff:fr.txLen])
		fr.txOff += wn
		if we != nil {
			return 0, we
		}
	}

	fr.reset()
	return len(p), nil
}
