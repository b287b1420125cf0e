// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package circbuf_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/rpcframe/circbuf"
)

func TestWriteReadSingleItem(t *testing.T) {
	b := circbuf.New(16, 4)
	require.NoError(t, b.Write([]byte{1, 2, 3}))
	require.Equal(t, 3, b.Count())

	dst := make([]byte, 16)
	n := b.Read(dst)
	require.Equal(t, []byte{1, 2, 3}, dst[:n])
	require.Equal(t, 0, b.Count())
}

func TestReadNeverSplitsAnItem(t *testing.T) {
	b := circbuf.New(16, 4)
	require.NoError(t, b.Write([]byte{1, 2, 3}))
	require.NoError(t, b.Write([]byte{4, 5}))

	// A 4-byte destination can't fit the first 3-byte item plus any part of
	// the second; it must return exactly the first item.
	dst := make([]byte, 4)
	n := b.Read(dst)
	require.Equal(t, []byte{1, 2, 3}, dst[:n])

	n = b.Read(dst)
	require.Equal(t, []byte{4, 5}, dst[:n])
}

func TestWriteEvictsOldestItemsOnWrap(t *testing.T) {
	b := circbuf.New(5, 4)
	require.NoError(t, b.Write([]byte{1, 2}))
	require.NoError(t, b.Write([]byte{3, 4}))
	// Capacity is 5; writing 3 more bytes requires evicting the first item
	// (2 bytes) to make room.
	require.NoError(t, b.Write([]byte{5, 6, 7}))

	// Both surviving items fit in dst, so one Read drains them in order.
	dst := make([]byte, 16)
	n := b.Read(dst)
	require.Equal(t, []byte{3, 4, 5, 6, 7}, dst[:n])
	n = b.Read(dst)
	require.Equal(t, 0, n)
}

func TestWriteTooLargeForCapacity(t *testing.T) {
	b := circbuf.New(4, 4)
	err := b.Write([]byte{1, 2, 3, 4, 5})
	require.ErrorIs(t, err, circbuf.ErrTooLarge)
}

func TestWriteHistoryFull(t *testing.T) {
	b := circbuf.New(64, 2)
	require.NoError(t, b.Write([]byte{1}))
	require.NoError(t, b.Write([]byte{2}))
	err := b.Write([]byte{3})
	require.ErrorIs(t, err, circbuf.ErrHistoryFull)
}

func TestReadEmptyReturnsZero(t *testing.T) {
	b := circbuf.New(16, 4)
	dst := make([]byte, 16)
	require.Equal(t, 0, b.Read(dst))
}

func TestFlushClearsBuffer(t *testing.T) {
	b := circbuf.New(16, 4)
	require.NoError(t, b.Write([]byte{1, 2, 3}))
	b.Flush()
	require.Equal(t, 0, b.Count())
	require.True(t, b.IsEmpty())
}

func TestEvictionIsMonotonic(t *testing.T) {
	// Eviction must always remove items oldest-first: after many wraps the
	// buffer should still contain a contiguous, strictly increasing suffix
	// of single-byte writes.
	b := circbuf.New(5, 8)
	for i := byte(1); i <= 9; i++ {
		require.NoError(t, b.Write([]byte{i}))
	}
	dst := make([]byte, 1)
	var seen []byte
	for {
		n := b.Read(dst)
		if n == 0 {
			break
		}
		seen = append(seen, dst[:n]...)
	}
	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		require.Greater(t, seen[i], seen[i-1])
	}
}
