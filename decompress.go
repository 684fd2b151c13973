// SPDX-License-Identifier: MIT

package lz4

// DecompressBlock decompresses src (a single LZ4 block, no frame wrapper)
// into dst and returns the number of bytes written. dst must already be
// sized for the expected decompressed length.
func DecompressBlock(src, dst []byte) (int, error) {
	n, _, err := decodeBlock(dst, src, nil, nil, noDict, false, len(dst))
	return n, err
}

// DecompressBlockUsingDict decompresses src into dst using dict as an
// external dictionary (§6.4 block_decompress_using_dict).
func DecompressBlockUsingDict(src, dst, dict []byte) (int, error) {
	n, _, err := decodeBlock(dst, src, nil, dict, usingExtDict, false, len(dst))
	return n, err
}

// DecompressBlockPartial decompresses src into dst but stops as soon as
// targetSize bytes have been produced, possibly over-producing to the end
// of the sequence in progress (§4.5 partial_dec, §8.1 Partial decompression).
func DecompressBlockPartial(src, dst []byte, targetSize int) (int, error) {
	if targetSize > len(dst) {
		targetSize = len(dst)
	}
	n, _, err := decodeBlock(dst, src, nil, nil, noDict, true, targetSize)
	return n, err
}

// decodeBlock is the single decoder body driving all four dict-mode paths
// from §4.5 (NoDict / WithPrefix64k / UsingExtDict / DoubleDict) via the
// mode parameter and the prefix/extDict slices, per the §9 design note
// preferring "a tagged enum driving branches in a single function body"
// over template-style specialisation. prefix is the window of previously
// decoded bytes immediately preceding dst[0] (nil in NoDict/UsingExtDict
// when nothing precedes); extDict is a disjoint earlier window (nil unless
// UsingExtDict/DoubleDict). Returns (bytesWritten, bytesConsumed, err).
func decodeBlock(dst, src []byte, prefix, extDict []byte, mode dictMode, partial bool, targetSize int) (int, int, error) {
	var ip, op int

	for {
		if ip >= len(src) {
			return 0, 0, ErrMalformedInput
		}
		token := src[ip]
		ip++

		litLen := int(token >> 4)
		if litLen == 15 {
			n, consumed, err := readLength(src, ip)
			if err != nil {
				return 0, 0, err
			}
			litLen += n
			ip = consumed
		}

		if ip+litLen > len(src) {
			return 0, 0, ErrMalformedInput
		}
		if op+litLen > len(dst) {
			return 0, 0, ErrMalformedInput
		}
		if litLen > 0 {
			wildCopyBounded(dst[op:], src[ip:], litLen)
			ip += litLen
			op += litLen
		}

		// End of block: a token with matchLen nibble 0 and no further bytes
		// is the final, match-less literal run (§4.3 step 7 / §6.3).
		if ip >= len(src) {
			return op, ip, nil
		}
		if partial && op >= targetSize {
			return op, ip, nil
		}

		if ip+2 > len(src) {
			return 0, 0, ErrMalformedInput
		}
		offset := int(src[ip]) | int(src[ip+1])<<8
		ip += 2
		if offset == 0 {
			return 0, 0, ErrMalformedInput
		}

		matchLen := int(token & 0x0F)
		if matchLen == 15 {
			n, consumed, err := readLength(src, ip)
			if err != nil {
				return 0, 0, err
			}
			matchLen += n
			ip = consumed
		}
		matchLen += minMatch

		if err := copyMatch(dst, op, offset, matchLen, prefix, extDict, mode); err != nil {
			return 0, 0, err
		}
		op += matchLen

		if partial && op >= targetSize {
			return op, ip, nil
		}
	}
}

// copyMatch copies matchLen bytes ending up at dst[pos:pos+matchLen] from a
// backward distance of offset, stitching across the in-buffer, prefix, and
// ext-dict regions as needed (§4.5 main loop step 5).
func copyMatch(dst []byte, pos, offset, matchLen int, prefix, extDict []byte, mode dictMode) error {
	if offset <= pos {
		if pos+matchLen > len(dst) {
			return ErrMalformedInput
		}
		copyOverlap(dst, pos, offset, matchLen)
		return nil
	}

	if mode == noDict {
		return ErrMalformedInput
	}

	need := offset - pos // bytes that must come from before dst[0]
	remaining := matchLen
	dstOff := 0

	if need > len(prefix) {
		fromDict := need - len(prefix)
		if extDict == nil || fromDict > len(extDict) {
			return ErrMalformedInput
		}
		start := len(extDict) - fromDict
		n := fromDict
		if n > remaining {
			n = remaining
		}
		copy(dst[pos+dstOff:pos+dstOff+n], extDict[start:start+n])
		dstOff += n
		remaining -= n
		need -= fromDict
	}

	if remaining > 0 && need > 0 {
		start := len(prefix) - need
		n := need
		if n > remaining {
			n = remaining
		}
		copy(dst[pos+dstOff:pos+dstOff+n], prefix[start:start+n])
		dstOff += n
		remaining -= n
	}

	if remaining > 0 {
		// Tail of the match lands inside dst itself (copy started before
		// dst[0] but extends past it); continue as an in-buffer copy. The
		// write/read pointers both advance one byte per step, so the
		// distance between them stays the original offset throughout the
		// match, not offset-dstOff.
		if pos+dstOff+remaining > len(dst) {
			return ErrMalformedInput
		}
		copyOverlap(dst, pos+dstOff, offset, remaining)
	}

	return nil
}

// wildCopyBounded copies n bytes from src to dst, using the 8-byte wildcopy
// fast path when both slices have at least 8 bytes of margin past n and
// falling back to an exact copy otherwise (§4.1, §4.5 step 2).
func wildCopyBounded(dst, src []byte, n int) {
	if len(dst) >= n+8 && len(src) >= n+8 {
		wildCopy8(dst, src, n)
		return
	}
	copy(dst[:n], src[:n])
}

// readLength implements the variable-length extension read (§4.1): while
// the incoming byte is 0xFF, add 255 and consume; terminate on the first
// non-0xFF byte.
func readLength(src []byte, ip int) (int, int, error) {
	n := 0
	for {
		if ip >= len(src) {
			return 0, 0, ErrMalformedInput
		}
		b := src[ip]
		ip++
		n += int(b)
		if b != 0xFF {
			return n, ip, nil
		}
	}
}
