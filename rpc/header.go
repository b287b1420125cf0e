// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rpc

import (
	"encoding/binary"
	"errors"
)

// Header generalizes ProtoRpcHeader: a small fixed set of routing and
// bookkeeping fields carried alongside every call and reply.
type Header struct {
	Seqn         uint32
	NoReply      bool
	WhichCallset uint32
	Status       Status
}

// ErrHeaderTruncated reports that a message ended before a complete header
// could be decoded. A truncated header is silently dropped by the
// dispatcher rather than answered, since there is no reliable seqn to
// address a reply to.
var ErrHeaderTruncated = errors.New("rpc: truncated header")

// ErrBlobTruncated reports that a length-delimited blob's declared size ran
// past the end of the input.
var ErrBlobTruncated = errors.New("rpc: truncated length-delimited blob")

// appendDelimited writes body's length as a uvarint followed by body itself,
// the length-delimiting scheme an RPC envelope uses to concatenate its
// header and callset blobs without either needing to be self-terminating.
func appendDelimited(dst, body []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(body)))
	return append(dst, body...)
}

// readDelimited reads one length-delimited blob from the front of data and
// returns it alongside the unconsumed remainder.
func readDelimited(data []byte) (blob, rest []byte, err error) {
	size, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, nil, ErrBlobTruncated
	}
	data = data[n:]
	if uint64(len(data)) < size {
		return nil, nil, ErrBlobTruncated
	}
	return data[:size], data[size:], nil
}

// encodeHeaderBody appends the varint-encoded header fields to dst. This is
// the bare field encoding carried inside the header's length-delimited
// blob; it is not itself self-terminating.
func encodeHeaderBody(dst []byte, h Header) []byte {
	dst = binary.AppendUvarint(dst, uint64(h.Seqn))
	var flags byte
	if h.NoReply {
		flags = 1
	}
	dst = append(dst, flags)
	dst = binary.AppendUvarint(dst, uint64(h.WhichCallset))
	dst = binary.AppendUvarint(dst, uint64(h.Status))
	return dst
}

// decodeHeaderBody parses a Header from a blob that must be consumed in
// full: any bytes left over after the last field means the blob carried
// more than a Header, which is a truncation/corruption on the wire from
// this decoder's point of view.
func decodeHeaderBody(data []byte) (Header, error) {
	var h Header

	seqn, n := binary.Uvarint(data)
	if n <= 0 {
		return h, ErrHeaderTruncated
	}
	data = data[n:]

	if len(data) < 1 {
		return h, ErrHeaderTruncated
	}
	h.NoReply = data[0] != 0
	data = data[1:]

	which, n := binary.Uvarint(data)
	if n <= 0 {
		return h, ErrHeaderTruncated
	}
	data = data[n:]

	status, n := binary.Uvarint(data)
	if n <= 0 {
		return h, ErrHeaderTruncated
	}
	data = data[n:]

	if len(data) != 0 {
		return h, ErrHeaderTruncated
	}

	h.Seqn = uint32(seqn)
	h.WhichCallset = uint32(which)
	h.Status = Status(status)
	return h, nil
}

// EncodeHeader appends h's length-delimited wire encoding to dst: a uvarint
// byte count followed by the header's fields. Exported so callers that
// build a full RPC message (a server's test harness, a client) don't need
// to reach into unexported wire-format helpers.
func EncodeHeader(dst []byte, h Header) []byte {
	return appendDelimited(dst, encodeHeaderBody(nil, h))
}

// DecodeHeader reads a length-delimited Header from the front of data and
// returns it alongside the unconsumed remainder.
func DecodeHeader(data []byte) (Header, []byte, error) {
	blob, rest, err := readDelimited(data)
	if err != nil {
		return Header{}, nil, err
	}
	h, err := decodeHeaderBody(blob)
	if err != nil {
		return Header{}, nil, err
	}
	return h, rest, nil
}
