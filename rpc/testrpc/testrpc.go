// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package testrpc ports the original TestRpc callset: a small, fixed set of
// handlers (add, setstruct, handler_error) used to exercise the dispatcher
// end to end, including its one deliberately-always-failing handler.
package testrpc

import (
	"errors"

	"code.hybscloud.com/rpcframe/rpc"
)

// CallsetID identifies this callset in the RPC header's which_callset
// field.
const CallsetID = 1

const (
	TagAdd uint32 = iota + 1
	TagSetStruct
	TagHandlerError
)

// AddCall and AddReply generalize test_Add_call/test_Add_reply.
type AddCall struct {
	A int32 `json:"a"`
	B int32 `json:"b"`
}

type AddReply struct {
	Sum int32 `json:"sum"`
}

// SetStructCall generalizes test_SetStruct_call: a grab-bag of scalar and
// repeated fields used to exercise marshaling of a structurally richer call.
type SetStructCall struct {
	VarInt32       int32    `json:"var_int32"`
	VarUint32      uint32   `json:"var_uint32"`
	VarInt64       int64    `json:"var_int64"`
	VarUint64      uint64   `json:"var_uint64"`
	VarUint32Array []uint32 `json:"var_uint32_array"`
	VarBool        bool     `json:"var_bool"`
	VarString      string   `json:"var_string"`
	VarBytes       []byte   `json:"var_bytes"`
}

type SetStructReply struct{}

type HandlerErrorCall struct{}
type HandlerErrorReply struct{}

// ErrIntentional is returned by the handler_error handler on every call, by
// design — it exists to exercise the dispatcher's HandlerError status path.
var ErrIntentional = errors.New("testrpc: handler_error always fails")

// Resolver implements rpc.Resolver for this callset, generalizing
// TestRpc_resolver's which_msg lookup.
func Resolver(codec rpc.Codec) rpc.Resolver {
	return func(call []byte) (uint32, error) {
		env, err := rpc.DecodeEnvelope(codec, call)
		if err != nil {
			return 0, err
		}
		return env.Tag, nil
	}
}

// Handlers returns the handler table for this callset, generalizing the
// PROTORPC_ADD_HANDLER table in TestRpc.c.
func Handlers(codec rpc.Codec) []rpc.HandlerEntry {
	return []rpc.HandlerEntry{
		{Tag: TagAdd, Handler: addHandler(codec)},
		{Tag: TagSetStruct, Handler: setStructHandler(codec)},
		{Tag: TagHandlerError, Handler: handlerErrorHandler},
	}
}

func addHandler(codec rpc.Codec) rpc.Handler {
	return func(call []byte) (uint32, any, error) {
		env, err := rpc.DecodeEnvelope(codec, call)
		if err != nil {
			return 0, nil, err
		}
		var in AddCall
		if err := codec.Unmarshal(env.Data, &in); err != nil {
			return 0, nil, err
		}
		return TagAdd, AddReply{Sum: in.A + in.B}, nil
	}
}

func setStructHandler(codec rpc.Codec) rpc.Handler {
	return func(call []byte) (uint32, any, error) {
		env, err := rpc.DecodeEnvelope(codec, call)
		if err != nil {
			return 0, nil, err
		}
		var in SetStructCall
		if err := codec.Unmarshal(env.Data, &in); err != nil {
			return 0, nil, err
		}
		return TagSetStruct, SetStructReply{}, nil
	}
}

func handlerErrorHandler(_ []byte) (uint32, any, error) {
	return TagHandlerError, HandlerErrorReply{}, ErrIntentional
}

// Entry returns the rpc.CallsetEntry wiring this callset's resolver and
// handlers into a dispatcher, using codec for envelope decoding.
func Entry(codec rpc.Codec) rpc.CallsetEntry {
	return rpc.CallsetEntry{
		ID:       CallsetID,
		Resolver: Resolver(codec),
		Handlers: Handlers(codec),
	}
}
