// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rpc implements the header/callset dispatcher that generalizes the
// original ProtoRpc module: a two-level resolver-then-handler lookup over a
// small, varint-encoded header and an opaque callset payload.
package rpc

// Status mirrors ProtoRpc's StatusEnum, reported back to the caller in the
// reply header rather than as a transport-level error — a malformed or
// unroutable call is a normal, answerable outcome for an RPC server, not a
// connection fault.
type Status uint32

const (
	StatusSuccess Status = iota
	StatusBadResolverLookup
	StatusBadCallsetUnpack
	StatusBadHandlerLookup
	StatusHandlerError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusBadResolverLookup:
		return "bad_resolver_lookup"
	case StatusBadCallsetUnpack:
		return "bad_callset_unpack"
	case StatusBadHandlerLookup:
		return "bad_handler_lookup"
	case StatusHandlerError:
		return "handler_error"
	default:
		return "unknown"
	}
}
