// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package systemrpc ports the original SystemRpc module's dumpmem handler.
// The original read directly from a caller-given memory address, which has
// no safe analogue in a Go process; this version instead takes a snapshot
// byte slice supplied at construction (e.g. a trace ring buffer's contents)
// and serves bounded, offset-addressed reads from it.
package systemrpc

import (
	"errors"

	"code.hybscloud.com/rpcframe/rpc"
)

// CallsetID identifies this callset in the RPC header's which_callset
// field.
const CallsetID = 2

const (
	TagDumpMem uint32 = iota + 1
)

// DumpMemCall generalizes system_DumpMem_call: an offset into the snapshot
// and the number of bytes requested.
type DumpMemCall struct {
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
}

type DumpMemReply struct {
	Mem []byte `json:"mem"`
}

// ErrRequestTooLarge reports that the requested read extends past the
// snapshot, generalizing the original's "too large to copy" guard.
var ErrRequestTooLarge = errors.New("systemrpc: dumpmem request exceeds snapshot bounds")

// Snapshot serves dumpmem reads against an in-memory byte slice.
type Snapshot struct {
	mem []byte
}

// NewSnapshot returns a Snapshot reading from mem. mem is not copied: the
// caller owns its lifetime and should not mutate it concurrently with RPC
// dispatch unless that race is acceptable for its use case (e.g. a
// write-once trace buffer).
func NewSnapshot(mem []byte) *Snapshot {
	return &Snapshot{mem: mem}
}

func (s *Snapshot) dumpMem(codec rpc.Codec) rpc.Handler {
	return func(call []byte) (uint32, any, error) {
		env, err := rpc.DecodeEnvelope(codec, call)
		if err != nil {
			return 0, nil, err
		}
		var in DumpMemCall
		if err := codec.Unmarshal(env.Data, &in); err != nil {
			return 0, nil, err
		}

		end := uint64(in.Offset) + uint64(in.Size)
		if end > uint64(len(s.mem)) {
			return 0, nil, ErrRequestTooLarge
		}

		out := make([]byte, in.Size)
		copy(out, s.mem[in.Offset:end])
		return TagDumpMem, DumpMemReply{Mem: out}, nil
	}
}

func (s *Snapshot) resolver(codec rpc.Codec) rpc.Resolver {
	return func(call []byte) (uint32, error) {
		env, err := rpc.DecodeEnvelope(codec, call)
		if err != nil {
			return 0, err
		}
		return env.Tag, nil
	}
}

// Entry returns the rpc.CallsetEntry serving dumpmem reads against s.
func (s *Snapshot) Entry(codec rpc.Codec) rpc.CallsetEntry {
	return rpc.CallsetEntry{
		ID:       CallsetID,
		Resolver: s.resolver(codec),
		Handlers: []rpc.HandlerEntry{
			{Tag: TagDumpMem, Handler: s.dumpMem(codec)},
		},
	}
}
