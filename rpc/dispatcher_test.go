// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rpc_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/rpcframe/rpc"
	"code.hybscloud.com/rpcframe/rpc/systemrpc"
	"code.hybscloud.com/rpcframe/rpc/testrpc"
)

func newDispatcher(t *testing.T, extra ...rpc.CallsetEntry) (*rpc.Dispatcher, rpc.Codec) {
	t.Helper()
	codec := rpc.JSONCodec{}
	callsets := append([]rpc.CallsetEntry{testrpc.Entry(codec)}, extra...)
	return &rpc.Dispatcher{Codec: codec, Callsets: callsets, Log: zerolog.Nop()}, codec
}

func encodeCall(t *testing.T, codec rpc.Codec, seqn, whichCallset uint32, noReply bool, tag uint32, v any) []byte {
	t.Helper()
	payload, err := rpc.EncodeEnvelope(codec, tag, v)
	require.NoError(t, err)

	header := rpc.Header{Seqn: seqn, WhichCallset: whichCallset, NoReply: noReply}
	return buildMessage(t, header, payload)
}

// buildMessage mirrors the dispatcher's own wire format: a length-delimited
// header blob followed by a length-delimited callset blob.
func buildMessage(t *testing.T, header rpc.Header, payload []byte) []byte {
	t.Helper()
	out := rpc.EncodeHeader(nil, header)
	out = appendUvarint(out, uint64(len(payload)))
	out = append(out, payload...)
	return out
}

func appendUvarint(dst []byte, v uint64) []byte {
	var buf [10]byte
	n := 0
	for v >= 0x80 {
		buf[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	buf[n] = byte(v)
	n++
	return append(dst, buf[:n]...)
}

func decodeReplyHeader(t *testing.T, msg []byte) (rpc.Header, []byte) {
	t.Helper()
	require.NotEmpty(t, msg)
	header, rest, err := rpc.DecodeHeader(msg)
	require.NoError(t, err)
	size, n := uvarint(rest)
	require.Greater(t, n, 0)
	rest = rest[n:]
	require.LessOrEqual(t, int(size), len(rest))
	return header, rest[:size]
}

func uvarint(b []byte) (uint64, int) {
	var x uint64
	var s uint
	for i, c := range b {
		if c < 0x80 {
			return x | uint64(c)<<s, i + 1
		}
		x |= uint64(c&0x7f) << s
		s += 7
	}
	return 0, 0
}

func TestDispatcherAddSuccess(t *testing.T) {
	d, codec := newDispatcher(t)
	call := encodeCall(t, codec, 1, testrpc.CallsetID, false, testrpc.TagAdd, testrpc.AddCall{A: 3, B: 4})

	reply, err := d.Exec(call)
	require.NoError(t, err)
	require.NotNil(t, reply)

	header, payload := decodeReplyHeader(t, reply)
	require.Equal(t, uint32(1), header.Seqn)
	require.Equal(t, rpc.StatusSuccess, header.Status)

	env, err := rpc.DecodeEnvelope(codec, payload)
	require.NoError(t, err)
	require.Equal(t, testrpc.TagAdd, env.Tag)

	var out testrpc.AddReply
	require.NoError(t, codec.Unmarshal(env.Data, &out))
	require.Equal(t, int32(7), out.Sum)
}

func TestDispatcherNoReplySuppressesResponse(t *testing.T) {
	d, codec := newDispatcher(t)
	call := encodeCall(t, codec, 2, testrpc.CallsetID, true, testrpc.TagAdd, testrpc.AddCall{A: 1, B: 1})

	reply, err := d.Exec(call)
	require.NoError(t, err)
	require.Nil(t, reply)
}

func TestDispatcherBadResolverLookup(t *testing.T) {
	d, codec := newDispatcher(t)
	call := encodeCall(t, codec, 3, 99, false, testrpc.TagAdd, testrpc.AddCall{})

	reply, err := d.Exec(call)
	require.NoError(t, err)
	header, _ := decodeReplyHeader(t, reply)
	require.Equal(t, rpc.StatusBadResolverLookup, header.Status)
}

func TestDispatcherBadHandlerLookup(t *testing.T) {
	d, codec := newDispatcher(t)
	call := encodeCall(t, codec, 4, testrpc.CallsetID, false, 0xFF, testrpc.AddCall{})

	reply, err := d.Exec(call)
	require.NoError(t, err)
	header, _ := decodeReplyHeader(t, reply)
	require.Equal(t, rpc.StatusBadHandlerLookup, header.Status)
}

func TestDispatcherHandlerError(t *testing.T) {
	d, codec := newDispatcher(t)
	call := encodeCall(t, codec, 5, testrpc.CallsetID, false, testrpc.TagHandlerError, testrpc.HandlerErrorCall{})

	reply, err := d.Exec(call)
	require.NoError(t, err)
	header, _ := decodeReplyHeader(t, reply)
	require.Equal(t, rpc.StatusHandlerError, header.Status)
}

func TestDispatcherUndecodableHeaderIsSilentlyDropped(t *testing.T) {
	d, _ := newDispatcher(t)
	reply, err := d.Exec(nil)
	require.NoError(t, err)
	require.Nil(t, reply)
}

func TestDispatcherDumpMemSnapshot(t *testing.T) {
	snap := systemrpc.NewSnapshot([]byte("hello rpc world"))
	d, codec := newDispatcher(t, snap.Entry(rpc.JSONCodec{}))

	call := encodeCall(t, codec, 6, systemrpc.CallsetID, false, systemrpc.TagDumpMem,
		systemrpc.DumpMemCall{Offset: 6, Size: 3})

	reply, err := d.Exec(call)
	require.NoError(t, err)
	header, payload := decodeReplyHeader(t, reply)
	require.Equal(t, rpc.StatusSuccess, header.Status)

	env, err := rpc.DecodeEnvelope(codec, payload)
	require.NoError(t, err)
	var out systemrpc.DumpMemReply
	require.NoError(t, codec.Unmarshal(env.Data, &out))
	require.Equal(t, []byte("rpc"), out.Mem)
}

func TestDispatcherDumpMemOutOfBounds(t *testing.T) {
	snap := systemrpc.NewSnapshot([]byte("short"))
	d, codec := newDispatcher(t, snap.Entry(rpc.JSONCodec{}))

	call := encodeCall(t, codec, 7, systemrpc.CallsetID, false, systemrpc.TagDumpMem,
		systemrpc.DumpMemCall{Offset: 0, Size: 100})

	reply, err := d.Exec(call)
	require.NoError(t, err)
	header, _ := decodeReplyHeader(t, reply)
	require.Equal(t, rpc.StatusHandlerError, header.Status)
}
