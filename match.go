// SPDX-License-Identifier: MIT

package lz4

import (
	"encoding/binary"
	"math/bits"
)

// matchCount returns the number of equal leading bytes of a and b, capped at
// limit bytes. It compares 8 bytes at a time the way the teacher's HC
// countEqualBytes does, falling back to a byte-wise tail (§4.1).
func matchCount(a, b []byte, limit int) int {
	n := 0
	for n+8 <= limit {
		x := binary.LittleEndian.Uint64(a[n:]) ^ binary.LittleEndian.Uint64(b[n:])
		if x == 0 {
			n += 8
			continue
		}
		n += bits.TrailingZeros64(x) >> 3
		return n
	}
	for n < limit && a[n] == b[n] {
		n++
	}
	return n
}

// incTable and decTable implement the overlapping-copy expansion for short
// offsets (§4.1): offset is the index. incTable turns a short-offset copy
// into strides that avoid reading ahead of what has been written; decTable
// is the corresponding backward adjustment.
var incTable = [8]int{0, 1, 2, 1, 0, 4, 4, 4}
var decTable = [8]int{0, 0, 0, -1, -4, 1, 2, 3}

// wildCopy8 copies n bytes from src to dst 8 bytes at a time, potentially
// writing up to 7 bytes past dst[:n]; callers guarantee output margin.
func wildCopy8(dst, src []byte, n int) {
	d, s := 0, 0
	for d < n {
		copy(dst[d:d+8], src[s:s+8])
		d += 8
		s += 8
	}
}

// wildCopy32 is the 32-byte-stride variant of wildCopy8. The block decoder
// in this package does not call it.
func wildCopy32(dst, src []byte, n int) {
	d, s := 0, 0
	for d < n {
		copy(dst[d:d+32], src[s:s+32])
		d += 32
		s += 32
	}
}

// copyOverlap copies length bytes from dst[pos-offset:] to dst[pos:] using
// the pattern-expansion tables when offset < 8, and forward copies of at most
// offset bytes each otherwise (§4.1). dst must already have length
// pos+length (or more, as wildcopy margin allows); the caller guarantees
// bounds.
func copyOverlap(dst []byte, pos, offset, length int) {
	if offset >= 8 {
		// Go's copy behaves like memmove, so an overlapping match is copied
		// in chunks that only read bytes already written.
		for length > 0 {
			n := copy(dst[pos:pos+length], dst[pos-offset:pos])
			pos += n
			length -= n
		}
		return
	}

	match := pos - offset
	dst[pos+0] = dst[match+0]
	dst[pos+1] = dst[match+1]
	dst[pos+2] = dst[match+2]
	dst[pos+3] = dst[match+3]
	match += incTable[offset]
	copy(dst[pos+4:pos+8], dst[match:match+4])
	match -= decTable[offset]

	// From byte 8 on, match is the source of dst[pos+8], at a distance that
	// is a multiple of offset and at least 8, so 8-byte chunks are safe for
	// the remainder.
	for i := 8; i < length; i += 8 {
		end := i + 8
		if end > length {
			end = length
		}
		copy(dst[pos+i:pos+end], dst[match+i-8:match+end-8])
	}
}
