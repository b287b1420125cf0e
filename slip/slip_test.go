// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slip_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/rpcframe/slip"
)

func TestFrameFixedVector(t *testing.T) {
	src := []byte{0x01, 0x02, 0x03, 0x04, 0xDB, 0x05, 0x06, 0x07, 0x08, 0x09}
	want := []byte{0xC0, 0x01, 0x02, 0x03, 0x04, 0xDB, 0xDD, 0x05, 0x06, 0x07, 0x08, 0x09, 0xC0}

	dst := make([]byte, slip.MaxFramedLen(len(src)))
	n, err := slip.Frame(dst, src)
	require.NoError(t, err)
	require.Equal(t, want, dst[:n])
}

func TestUnwrapRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 300; i++ {
		n := rng.Intn(300)
		src := make([]byte, n)
		rng.Read(src)

		framed := make([]byte, slip.MaxFramedLen(n))
		fn, err := slip.Frame(framed, src)
		require.NoError(t, err)

		body := framed[1 : fn-1] // strip leading/trailing END
		dec := make([]byte, n+1)
		dn, err := slip.Unwrap(dec, body)
		require.NoError(t, err)
		require.Equal(t, src, dec[:dn])
	}
}

func TestUnwrapInvalidEscape(t *testing.T) {
	dst := make([]byte, 8)
	_, err := slip.Unwrap(dst, []byte{0xDB, 0x01})
	require.ErrorIs(t, err, slip.ErrProtocol)
}

func TestUnwrapTrailingEscape(t *testing.T) {
	dst := make([]byte, 8)
	_, err := slip.Unwrap(dst, []byte{0x01, 0xDB})
	require.ErrorIs(t, err, slip.ErrProtocol)
}

func TestFrameOverflow(t *testing.T) {
	dst := make([]byte, 2)
	_, err := slip.Frame(dst, []byte{0xC0})
	require.ErrorIs(t, err, slip.ErrOverflow)
}
