// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cobs_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/rpcframe/cobs"
)

func TestEncodeFixedVector(t *testing.T) {
	src := []byte{0x11, 0x22, 0x00, 0x33}
	want := []byte{0x03, 0x11, 0x22, 0x02, 0x33}

	dst := make([]byte, cobs.MaxEncodedLen(len(src)))
	n, err := cobs.Encode(dst, src)
	require.NoError(t, err)
	require.Equal(t, want, dst[:n])
}

func TestFrameFixedVector(t *testing.T) {
	src := []byte{0x11, 0x22, 0x00, 0x33}
	want := []byte{0x00, 0x03, 0x11, 0x22, 0x02, 0x33, 0x00}

	dst := make([]byte, cobs.MaxEncodedLen(len(src))+2)
	n, err := cobs.Frame(dst, src)
	require.NoError(t, err)
	require.Equal(t, want, dst[:n])
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		n := rng.Intn(600)
		src := make([]byte, n)
		rng.Read(src)

		enc := make([]byte, cobs.MaxEncodedLen(n))
		encN, err := cobs.Encode(enc, src)
		require.NoError(t, err)
		require.LessOrEqual(t, encN, cobs.MaxEncodedLen(n))
		require.False(t, bytes.Contains(enc[:encN], []byte{0x00}), "encoded body must not contain 0x00")

		dec := make([]byte, n+1)
		decN, err := cobs.Decode(dec, enc[:encN])
		require.NoError(t, err)
		require.Equal(t, src, dec[:decN])
	}
}

func TestRoundTripExactly254And255Boundaries(t *testing.T) {
	for _, n := range []int{253, 254, 255, 256, 508, 509, 510} {
		src := bytes.Repeat([]byte{0x01}, n)
		enc := make([]byte, cobs.MaxEncodedLen(n))
		encN, err := cobs.Encode(enc, src)
		require.NoError(t, err)

		dec := make([]byte, n)
		decN, err := cobs.Decode(dec, enc[:encN])
		require.NoError(t, err)
		require.Equal(t, src, dec[:decN])
	}
}

func TestEncodeOverflow(t *testing.T) {
	src := make([]byte, 10)
	dst := make([]byte, 2)
	_, err := cobs.Encode(dst, src)
	require.ErrorIs(t, err, cobs.ErrOverflow)
}

func TestDecodeTruncated(t *testing.T) {
	// Code byte claims more bytes than are present.
	dst := make([]byte, 16)
	_, err := cobs.Decode(dst, []byte{0x05, 0x01, 0x02})
	require.ErrorIs(t, err, cobs.ErrTruncated)
}

func TestDecodeOverflow(t *testing.T) {
	dst := make([]byte, 1)
	_, err := cobs.Decode(dst, []byte{0x03, 0x11, 0x22})
	require.ErrorIs(t, err, cobs.ErrOverflow)
}

func TestFrameOverflow(t *testing.T) {
	dst := make([]byte, 3)
	_, err := cobs.Frame(dst, []byte{0x01, 0x02, 0x03})
	require.ErrorIs(t, err, cobs.ErrOverflow)
}
