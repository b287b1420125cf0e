// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cobs implements Consistent Overhead Byte Stuffing: encode removes
// every 0x00 byte from a payload at a cost of at most one overhead byte per
// 254 input bytes, so the payload can be delimited with 0x00 on the wire.
//
// Semantics follow the original C implementation this module generalizes
// (Cobs.c): a running count of non-zero bytes since the last code-word
// position is written back into that position on encountering a zero byte
// or on reaching a run of 255.
package cobs

import "errors"

const delimiter = 0x00

// ErrOverflow reports that encoding or decoding would exceed the caller's
// destination buffer.
var ErrOverflow = errors.New("cobs: destination buffer overflow")

// ErrTruncated reports that the encoded input ended in the middle of a code
// word — the code pointer would overshoot the input length. This resolves
// the "undefined behavior on malformed input" open question against the
// original pointer-equality termination check.
var ErrTruncated = errors.New("cobs: truncated or malformed encoding")

// MaxEncodedLen returns the worst-case encoded length of an n-byte payload:
// one overhead byte per up to 254 input bytes, plus the final code word.
func MaxEncodedLen(n int) int {
	if n <= 0 {
		return 1
	}
	return n + (n+253)/254 + 1
}

// Encode writes the COBS encoding of src to dst and returns the number of
// bytes written. It does not apply the leading/trailing delimiter; callers
// that need a delimited frame should use Frame. Encode fails with
// ErrOverflow if the encoding would not fit in dst.
func Encode(dst, src []byte) (int, error) {
	codeIdx := 0
	count := byte(0)
	out := 0

	emit := func(idx int, b byte) error {
		if idx >= len(dst) {
			return ErrOverflow
		}
		dst[idx] = b
		return nil
	}

	for _, b := range src {
		count++
		if b == delimiter || count == 255 {
			if err := emit(codeIdx, count); err != nil {
				return 0, err
			}
			codeIdx += int(count)
			if count == 255 && b == delimiter {
				// The zero that closed a full 254-byte run is encoded as an
				// empty block of its own.
				if err := emit(codeIdx, 1); err != nil {
					return 0, err
				}
				codeIdx++
				count = 0
			} else if count == 255 {
				wrIdx := codeIdx + 1
				if err := emit(wrIdx, b); err != nil {
					return 0, err
				}
				count = 1
			} else {
				count = 0
			}
			continue
		}
		if err := emit(codeIdx+int(count), b); err != nil {
			return 0, err
		}
	}

	if err := emit(codeIdx, count+1); err != nil {
		return 0, err
	}
	out = codeIdx + int(count) + 1
	return out, nil
}

// Decode reverses Encode: src must be a COBS-encoded body with no
// delimiters. It writes the decoded payload to dst and returns the number
// of bytes written.
func Decode(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	out := 0
	codeIdx := 0

	for {
		if codeIdx >= len(src) {
			return 0, ErrTruncated
		}
		code := src[codeIdx]
		if code == 0 {
			return 0, ErrTruncated
		}
		dataIdx := codeIdx + 1

		var count byte
		for count = 1; count < code; count++ {
			if dataIdx+int(count)-1 >= len(src) {
				return 0, ErrTruncated
			}
			if out >= len(dst) {
				return 0, ErrOverflow
			}
			dst[out] = src[dataIdx+int(count)-1]
			out++
		}

		codeIdx += int(count)
		if codeIdx == len(src) {
			break
		}
		if codeIdx > len(src) {
			return 0, ErrTruncated
		}

		if code != 255 {
			if out >= len(dst) {
				return 0, ErrOverflow
			}
			dst[out] = 0
			out++
		}
	}

	return out, nil
}

// Frame wraps the COBS encoding of src with a leading and trailing 0x00
// delimiter, writing the result to dst. It returns the total framed length.
func Frame(dst, src []byte) (int, error) {
	if len(dst) < 2 {
		return 0, ErrOverflow
	}
	n, err := Encode(dst[1:], src)
	if err != nil {
		return 0, err
	}
	if n+2 > len(dst) {
		return 0, ErrOverflow
	}
	dst[0] = delimiter
	dst[n+1] = delimiter
	return n + 2, nil
}
