// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rpc

import (
	"github.com/rs/zerolog"
)

// Handler executes one RPC call against its callset payload and returns the
// reply tag and value to encode into the reply envelope, generalizing
// ProtoRpc_handler.
type Handler func(call []byte) (replyTag uint32, reply any, err error)

// HandlerEntry binds a handler to the tag a Resolver reports for it,
// generalizing ProtoRpc_Handler_Entry.
type HandlerEntry struct {
	Tag     uint32
	Handler Handler
}

// Resolver inspects a callset payload and reports which handler tag should
// serve it, generalizing ProtoRpc_resolver. Many callsets only ever resolve
// to a single handler and can ignore the payload entirely.
type Resolver func(call []byte) (tag uint32, err error)

// CallsetEntry binds a callset id to its resolver and handler table,
// generalizing ProtoRpc_Callset_Entry.
type CallsetEntry struct {
	ID       uint32
	Resolver Resolver
	Handlers []HandlerEntry
}

func (e CallsetEntry) handler(tag uint32) (Handler, bool) {
	for _, h := range e.Handlers {
		if h.Tag == tag {
			return h.Handler, true
		}
	}
	return nil, false
}

// Dispatcher routes decoded RPC calls to their handler, generalizing
// ProtoRpc_server's callset_lookup-then-invoke pipeline.
type Dispatcher struct {
	Codec    Codec
	Callsets []CallsetEntry
	Log      zerolog.Logger
}

func (d *Dispatcher) callset(id uint32) (CallsetEntry, bool) {
	for _, c := range d.Callsets {
		if c.ID == id {
			return c, true
		}
	}
	return CallsetEntry{}, false
}

// Exec decodes one complete RPC message (header plus callset payload) from
// in, dispatches it, and encodes the reply. It returns a nil reply with no
// error both when the header itself could not be decoded (there is no seqn
// to address a reply to, so the message is silently dropped, matching the
// original's behavior on a failed outer unpack) and when the call's header
// set NoReply.
func (d *Dispatcher) Exec(in []byte) ([]byte, error) {
	header, rest, err := DecodeHeader(in)
	if err != nil {
		d.Log.Warn().Err(err).Msg("rpc: dropping message with undecodable header")
		return nil, nil
	}

	reply := Header{Seqn: header.Seqn, WhichCallset: header.WhichCallset}

	replyPayload, status := d.dispatch(header.WhichCallset, rest)
	reply.Status = status

	d.Log.Debug().
		Uint32("seqn", header.Seqn).
		Uint32("which_callset", header.WhichCallset).
		Stringer("status", status).
		Msg("rpc: handled call")

	if header.NoReply {
		return nil, nil
	}

	out := EncodeHeader(nil, reply)
	out = appendDelimited(out, replyPayload)
	return out, nil
}

// dispatch resolves and invokes the handler for the length-delimited
// callset blob carried in rest: rest is the whole remainder of the message
// after the header, so the callset's own length prefix is read here rather
// than by the caller.
func (d *Dispatcher) dispatch(whichCallset uint32, rest []byte) ([]byte, Status) {
	entry, ok := d.callset(whichCallset)
	if !ok {
		d.Log.Error().Uint32("which_callset", whichCallset).Msg("rpc: bad resolver lookup")
		return nil, StatusBadResolverLookup
	}

	payload, _, err := readDelimited(rest)
	if err != nil {
		d.Log.Error().Err(err).Uint32("which_callset", whichCallset).Msg("rpc: bad callset unpack")
		return nil, StatusBadCallsetUnpack
	}

	tag, err := entry.Resolver(payload)
	if err != nil {
		d.Log.Error().Err(err).Uint32("which_callset", whichCallset).Msg("rpc: bad callset unpack")
		return nil, StatusBadCallsetUnpack
	}

	handler, ok := entry.handler(tag)
	if !ok {
		d.Log.Error().Uint32("which_callset", whichCallset).Uint32("tag", tag).Msg("rpc: bad handler lookup")
		return nil, StatusBadHandlerLookup
	}

	replyTag, result, err := handler(payload)
	if err != nil {
		d.Log.Error().Err(err).Uint32("which_callset", whichCallset).Uint32("tag", tag).Msg("rpc: handler error")
		return nil, StatusHandlerError
	}

	replyPayload, err := EncodeEnvelope(d.Codec, replyTag, result)
	if err != nil {
		d.Log.Error().Err(err).Msg("rpc: failed to marshal reply payload")
		return nil, StatusHandlerError
	}
	return replyPayload, StatusSuccess
}
