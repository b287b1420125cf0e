// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package framer

import "time"

// Protocol describes the expected message-boundary behavior of the underlying transport.
//
// The framer logic adapts its algorithm based on this setting:
//   - BinaryStream: boundaries are not preserved (e.g., TCP, a serial line). Framer applies
//     its configured Discipline (COBS or SLIP) to delimit messages.
//   - SeqPacket / Datagram: boundaries are preserved. Framer is pass-through.
type Protocol uint8

const (
	BinaryStream Protocol = 1
	SeqPacket    Protocol = 2
	Datagram     Protocol = 3
)

func (p Protocol) preserveBoundary() bool {
	switch p {
	case SeqPacket, Datagram:
		return true
	default:
		return false
	}
}

// Discipline selects the byte-stuffing scheme BinaryStream framing uses to
// delimit messages on a boundary-less transport.
type Discipline uint8

const (
	// COBS delimits frames with 0x00 and removes every embedded 0x00 from
	// the payload at a bounded overhead cost. It is the default: it never
	// doubles the size of pathological input the way SLIP can.
	COBS Discipline = iota
	// SLIP (RFC 1055) delimits frames with 0xC0, escaping any embedded
	// 0xC0/0xDB bytes. It is the conventional choice for serial links.
	SLIP
)

const defaultMTU = 4096

// Options configures framing behavior.
type Options struct {
	ReadDiscipline  Discipline
	WriteDiscipline Discipline
	ReadProto       Protocol
	WriteProto      Protocol

	// ReadLimit caps the size of a single decoded message and sizes the
	// deframer's internal work buffer. Zero selects a default of 4096 bytes.
	ReadLimit int

	// RetryDelay controls how the framer handles iox.ErrWouldBlock from the underlying transport:
	//   - negative: nonblock, return ErrWouldBlock immediately
	//   - zero: yield (runtime.Gosched) and retry
	//   - positive: sleep for the duration and retry
	RetryDelay time.Duration
}

var defaultOptions = Options{
	ReadDiscipline:  COBS,
	WriteDiscipline: COBS,
	ReadProto:       BinaryStream,
	WriteProto:      BinaryStream,
	ReadLimit:       0,
	RetryDelay:      -1, // default: nonblock
}

type Option func(*Options)

// WithDiscipline sets the byte-stuffing discipline for both read and write sides.
func WithDiscipline(d Discipline) Option {
	return func(o *Options) {
		o.ReadDiscipline = d
		o.WriteDiscipline = d
	}
}

func WithReadDiscipline(d Discipline) Option {
	return func(o *Options) { o.ReadDiscipline = d }
}

func WithWriteDiscipline(d Discipline) Option {
	return func(o *Options) { o.WriteDiscipline = d }
}

func WithProtocol(proto Protocol) Option {
	return func(o *Options) {
		o.ReadProto = proto
		o.WriteProto = proto
	}
}

func WithReadProtocol(proto Protocol) Option {
	return func(o *Options) { o.ReadProto = proto }
}

func WithWriteProtocol(proto Protocol) Option {
	return func(o *Options) { o.WriteProto = proto }
}

func WithReadLimit(limit int) Option {
	return func(o *Options) { o.ReadLimit = limit }
}

// WithRetryDelay sets the retry/wait policy used when the underlying transport returns iox.ErrWouldBlock.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelay = d }
}

// WithBlock enables cooperative blocking (yield-and-retry) on iox.ErrWouldBlock.
func WithBlock() Option {
	return func(o *Options) { o.RetryDelay = 0 }
}

// WithNonblock forces non-blocking behavior (return iox.ErrWouldBlock immediately).
func WithNonblock() Option {
	return func(o *Options) { o.RetryDelay = -1 }
}
