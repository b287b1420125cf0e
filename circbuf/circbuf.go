// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package circbuf implements an item-aware circular byte buffer:
// a byte ring plus a parallel history of item sizes, so that reads never
// return a partial item even though writes may evict the oldest items to
// make room. It generalizes the original CircBuffer module, which backed
// Zephyr's k_mutex with a software FIFO of item sizes alongside a plain byte
// ring.
package circbuf

import (
	"errors"
	"sync"

	"code.hybscloud.com/rpcframe/fifo"
	"code.hybscloud.com/rpcframe/internal/bo"
)

// ErrHistoryFull reports that the item-size history is full: the buffer is
// already tracking its configured maximum number of distinct items and
// cannot accept another write until some are read out.
var ErrHistoryFull = errors.New("circbuf: item history is full")

// ErrTooLarge reports that a single item is larger than the buffer's byte
// capacity and could never fit even on an empty buffer.
var ErrTooLarge = errors.New("circbuf: item larger than buffer capacity")

const sizeEntryWidth = 2 // uint16 item size, matching the original's uint16_t size field

// Buffer is an item-boundary-preserving circular byte buffer. The zero value
// is not usable; construct with New.
type Buffer struct {
	mu sync.Mutex

	buf    []byte // len == capacity+1, to distinguish full/empty by index alone
	cap    int
	wrIdx  int
	rdIdx  int
	hist   *fifo.FIFO // each entry is a little/native-endian uint16 item size
	szBuf  [sizeEntryWidth]byte
}

// New returns a Buffer with byte capacity cap and room to track up to
// maxItems distinct item sizes at once.
func New(cap, maxItems int) *Buffer {
	if cap <= 0 {
		cap = 1
	}
	if maxItems <= 0 {
		maxItems = 1
	}
	b := &Buffer{
		buf:  make([]byte, cap+1),
		cap:  cap,
		hist: fifo.New(maxItems * sizeEntryWidth),
	}
	return b
}

func (b *Buffer) count() int {
	if b.wrIdx >= b.rdIdx {
		return b.wrIdx - b.rdIdx
	}
	return b.cap - b.rdIdx + b.wrIdx + 1
}

func (b *Buffer) avail() int {
	return b.cap - b.count()
}

// Count returns the number of bytes currently buffered.
func (b *Buffer) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count()
}

// IsFull reports whether the buffer holds cap bytes.
func (b *Buffer) IsFull() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count() == b.cap
}

// IsEmpty reports whether the buffer holds no bytes.
func (b *Buffer) IsEmpty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.wrIdx == b.rdIdx
}

func (b *Buffer) incWr(n int) {
	b.wrIdx += n
	if b.wrIdx > b.cap {
		b.wrIdx -= b.cap + 1
	}
}

func (b *Buffer) incRd(n int) {
	b.rdIdx += n
	if b.rdIdx > b.cap {
		b.rdIdx -= b.cap + 1
	}
}

func (b *Buffer) writeRing(data []byte) {
	size := len(data)
	if b.wrIdx+size > b.cap {
		toWrap := b.cap - b.wrIdx + 1
		copy(b.buf[b.wrIdx:], data[:toWrap])
		copy(b.buf, data[toWrap:])
	} else {
		copy(b.buf[b.wrIdx:], data)
	}
}

func (b *Buffer) readRing(dst []byte) {
	n := len(dst)
	if b.rdIdx+n > b.cap {
		toWrap := b.cap - b.rdIdx + 1
		copy(dst[:toWrap], b.buf[b.rdIdx:])
		copy(dst[toWrap:], b.buf[:n-toWrap])
	} else {
		copy(dst, b.buf[b.rdIdx:b.rdIdx+n])
	}
}

// Write stores data as a single item, evicting the oldest items as needed to
// make room. It fails with ErrTooLarge if data can never fit, or
// ErrHistoryFull if the item-size history has no room for another entry even
// after eviction would be possible.
func (b *Buffer) Write(data []byte) error {
	if len(data) > b.cap {
		return ErrTooLarge
	}
	if len(data) > 0xFFFF {
		return ErrTooLarge
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hist.IsFull() {
		return ErrHistoryFull
	}

	for len(data) > b.avail() {
		if b.hist.Read(b.szBuf[:]) == 0 {
			break
		}
		oldest := int(bo.Native().Uint16(b.szBuf[:]))
		b.incRd(oldest)
	}

	b.writeRing(data)
	b.incWr(len(data))

	bo.Native().PutUint16(b.szBuf[:], uint16(len(data)))
	return b.hist.Write(b.szBuf[:])
}

// Read copies whole items into dst until the next item would overflow dst,
// returning the number of bytes copied. It never splits an item: if dst is
// smaller than the oldest unread item, Read returns 0. Reading an empty
// buffer returns 0 with no error.
func (b *Buffer) Read(dst []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count() == 0 {
		return 0
	}

	read := 0
	for {
		n := b.hist.Peek(b.szBuf[:])
		if n == 0 {
			break
		}
		blockSize := int(bo.Native().Uint16(b.szBuf[:]))
		if read+blockSize > len(dst) {
			break
		}

		b.readRing(dst[read : read+blockSize])
		b.incRd(blockSize)
		b.hist.Ack(sizeEntryWidth)
		read += blockSize
	}
	return read
}

// Flush discards all buffered items.
func (b *Buffer) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hist.Flush()
	b.wrIdx = 0
	b.rdIdx = 0
}
