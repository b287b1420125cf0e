// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/rpcframe/fifo"
)

func TestWriteReadRoundTrip(t *testing.T) {
	f := fifo.New(8)
	require.NoError(t, f.Write([]byte("abcd")))
	require.Equal(t, 4, f.Count())
	require.Equal(t, 4, f.Available())

	dst := make([]byte, 4)
	n := f.Read(dst)
	require.Equal(t, 4, n)
	require.Equal(t, "abcd", string(dst))
	require.True(t, f.IsEmpty())
}

func TestWriteRejectsWhenNotEnoughSpace(t *testing.T) {
	f := fifo.New(4)
	require.NoError(t, f.Write([]byte("abcd")))
	err := f.Write([]byte("e"))
	require.ErrorIs(t, err, fifo.ErrNotEnoughSpace)
	// Rejected write must not mutate state.
	require.Equal(t, 4, f.Count())
}

func TestPeekDoesNotAdvance(t *testing.T) {
	f := fifo.New(8)
	require.NoError(t, f.Write([]byte("xyz")))
	dst := make([]byte, 3)
	n := f.Peek(dst)
	require.Equal(t, 3, n)
	require.Equal(t, 3, f.Count(), "peek must not remove bytes")
	f.Ack(3)
	require.Equal(t, 0, f.Count())
}

func TestWrapAroundPreservesOrder(t *testing.T) {
	f := fifo.New(4)
	require.NoError(t, f.Write([]byte("ab")))
	dst := make([]byte, 2)
	f.Read(dst)
	// wr/rd now straddle the wrap point.
	require.NoError(t, f.Write([]byte("cdef")))
	out := make([]byte, 4)
	n := f.Read(out)
	require.Equal(t, 4, n)
	require.Equal(t, "cdef", string(out))
}

// CountEqualsWritesMinusReads is the universal bounded-FIFO invariant from
// the testable properties: count() after any sequence of writes/reads equals
// total writes minus total reads, clamped to [0, depth].
func TestCountEqualsWritesMinusReadsClamped(t *testing.T) {
	f := fifo.New(6)
	total := 0
	for i := 0; i < 10; i++ {
		chunk := []byte{byte(i)}
		if err := f.Write(chunk); err == nil {
			total++
		}
		if total > 6 {
			total = 6
		}
		require.LessOrEqual(t, f.Count(), 6)
	}
	got := f.Count()
	require.Equal(t, total, got)
}

func TestFlushEmptiesFifo(t *testing.T) {
	f := fifo.New(4)
	require.NoError(t, f.Write([]byte("ab")))
	f.Flush()
	require.True(t, f.IsEmpty())
	require.Equal(t, 0, f.Count())
}

func TestThreadSafeConcurrentWriters(t *testing.T) {
	f := fifo.NewThreadSafe(1024)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 16; j++ {
				_ = f.Write([]byte{0xAA})
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 8*16, f.Count())
}

func TestIsFull(t *testing.T) {
	f := fifo.New(2)
	require.False(t, f.IsFull())
	require.NoError(t, f.Write([]byte("ab")))
	require.True(t, f.IsFull())
}
