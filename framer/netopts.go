// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package framer

// Network option helpers and mapping.
//
// Single source of truth — transport → (Protocol, Discipline):
//   - TCP          → BinaryStream, COBS   // no inherent boundaries; byte-stuff
//   - Serial       → BinaryStream, SLIP   // classic RFC 1055 use case
//   - UDP          → Datagram,     n/a    // boundaries preserved; pass-through
//   - WebSocket    → SeqPacket,    n/a    // boundaries preserved
//   - SCTP         → SeqPacket,    n/a    // boundaries preserved
//   - Unix (stream)     → BinaryStream, COBS
//   - UnixPacket   → Datagram,     n/a
//   - Local (stream)    → BinaryStream, COBS
//
// Discipline policy: every stream transport defaults to COBS, which bounds
// overhead regardless of payload content. Serial is the one named exception:
// SLIP is the conventional framing for serial lines and is what a peer
// expects there.

type netKind uint8

const (
	netTCP netKind = iota
	netSerial
	netUDP
	netWebSocket
	netSCTP
	netUnixStream
	netUnixPacket
	netLocalStream
)

func defaultsFor(kind netKind) (Protocol, Discipline) {
	switch kind {
	case netTCP:
		return BinaryStream, COBS
	case netSerial:
		return BinaryStream, SLIP
	case netUDP:
		return Datagram, COBS // Discipline unused; boundaries already preserved.
	case netWebSocket:
		return SeqPacket, COBS
	case netSCTP:
		return SeqPacket, COBS
	case netUnixStream:
		return BinaryStream, COBS
	case netUnixPacket:
		return Datagram, COBS
	case netLocalStream:
		return BinaryStream, COBS
	default:
		return BinaryStream, COBS
	}
}

// WithReadTCP configures the reader side for TCP: BinaryStream framed with COBS.
func WithReadTCP() Option {
	return func(o *Options) {
		p, d := defaultsFor(netTCP)
		o.ReadProto = p
		o.ReadDiscipline = d
	}
}

// WithWriteTCP configures the writer side for TCP: BinaryStream framed with COBS.
func WithWriteTCP() Option {
	return func(o *Options) {
		p, d := defaultsFor(netTCP)
		o.WriteProto = p
		o.WriteDiscipline = d
	}
}

// WithReadSerial configures the reader side for a serial line: BinaryStream framed with SLIP.
func WithReadSerial() Option {
	return func(o *Options) {
		p, d := defaultsFor(netSerial)
		o.ReadProto = p
		o.ReadDiscipline = d
	}
}

// WithWriteSerial configures the writer side for a serial line: BinaryStream framed with SLIP.
func WithWriteSerial() Option {
	return func(o *Options) {
		p, d := defaultsFor(netSerial)
		o.WriteProto = p
		o.WriteDiscipline = d
	}
}

// WithReadUDP configures the reader side for UDP: Datagram (pass-through).
func WithReadUDP() Option {
	return func(o *Options) {
		p, d := defaultsFor(netUDP)
		o.ReadProto = p
		o.ReadDiscipline = d
	}
}

// WithWriteUDP configures the writer side for UDP: Datagram (pass-through).
func WithWriteUDP() Option {
	return func(o *Options) {
		p, d := defaultsFor(netUDP)
		o.WriteProto = p
		o.WriteDiscipline = d
	}
}

// WithReadWebSocket configures the reader side for WebSocket: SeqPacket (boundaries preserved).
func WithReadWebSocket() Option {
	return func(o *Options) {
		p, d := defaultsFor(netWebSocket)
		o.ReadProto = p
		o.ReadDiscipline = d
	}
}

// WithWriteWebSocket configures the writer side for WebSocket: SeqPacket (boundaries preserved).
func WithWriteWebSocket() Option {
	return func(o *Options) {
		p, d := defaultsFor(netWebSocket)
		o.WriteProto = p
		o.WriteDiscipline = d
	}
}

// WithReadSCTP configures the reader side for SCTP: SeqPacket (boundaries preserved).
func WithReadSCTP() Option {
	return func(o *Options) {
		p, d := defaultsFor(netSCTP)
		o.ReadProto = p
		o.ReadDiscipline = d
	}
}

// WithWriteSCTP configures the writer side for SCTP: SeqPacket (boundaries preserved).
func WithWriteSCTP() Option {
	return func(o *Options) {
		p, d := defaultsFor(netSCTP)
		o.WriteProto = p
		o.WriteDiscipline = d
	}
}

// WithReadUnix configures the reader side for Unix stream sockets: BinaryStream framed with COBS.
func WithReadUnix() Option {
	return func(o *Options) {
		p, d := defaultsFor(netUnixStream)
		o.ReadProto = p
		o.ReadDiscipline = d
	}
}

// WithWriteUnix configures the writer side for Unix stream sockets: BinaryStream framed with COBS.
func WithWriteUnix() Option {
	return func(o *Options) {
		p, d := defaultsFor(netUnixStream)
		o.WriteProto = p
		o.WriteDiscipline = d
	}
}

// WithReadUnixPacket configures the reader side for Unix datagram sockets: Datagram (pass-through).
func WithReadUnixPacket() Option {
	return func(o *Options) {
		p, d := defaultsFor(netUnixPacket)
		o.ReadProto = p
		o.ReadDiscipline = d
	}
}

// WithWriteUnixPacket configures the writer side for Unix datagram sockets: Datagram (pass-through).
func WithWriteUnixPacket() Option {
	return func(o *Options) {
		p, d := defaultsFor(netUnixPacket)
		o.WriteProto = p
		o.WriteDiscipline = d
	}
}

// WithReadLocal configures the reader side for local (stream) transports: BinaryStream framed with COBS.
func WithReadLocal() Option {
	return func(o *Options) {
		p, d := defaultsFor(netLocalStream)
		o.ReadProto = p
		o.ReadDiscipline = d
	}
}

// WithWriteLocal configures the writer side for local (stream) transports: BinaryStream framed with COBS.
func WithWriteLocal() Option {
	return func(o *Options) {
		p, d := defaultsFor(netLocalStream)
		o.WriteProto = p
		o.WriteDiscipline = d
	}
}
