// SPDX-License-Identifier: MIT

package lz4

import "encoding/binary"

// CompressBlock compresses src using the fast single-pass parser (§4.3),
// grounded on the reference CompressBlock's hash-table-of-positions scan
// (other_examples/eab8f795_xiaojun207-lz4__block.go). table must have
// length 1<<hashTableLog; a nil table allocates one. dst, if non-nil, is
// reused as the output buffer (grown via append if too small, the idiomatic
// Go analogue of the C reference's fixed-capacity-buffer contract).
func CompressBlock(src, dst []byte, table []int32) ([]byte, error) {
	if len(src) >= maxInputSize {
		return nil, ErrSrcTooLarge
	}
	if table == nil {
		table = make([]int32, 1<<hashTableLog)
	} else {
		clearInt32(table)
	}
	if dst == nil {
		dst = make([]byte, 0, CompressBlockBound(len(src)))
	}
	return compressBlockFast(src, dst[:0], table, 1), nil
}

// compressBlockFast appends the fast-parse encoding of src to dst and
// returns the result. acceleration governs the post-miss skip rate
// (§4.3 step 3).
func compressBlockFast(src, dst []byte, table []int32, acceleration int) []byte {
	sn := len(src) - mfLimit
	if sn <= 0 {
		return encodeLastLiterals(dst, src)
	}
	if acceleration < minAcceleration {
		acceleration = minAcceleration
	}
	if acceleration > maxAcceleration {
		acceleration = maxAcceleration
	}

	var si, anchor int
	searchMatchNb := acceleration << skipTrigger

	for si < sn {
		h := hash4(src, si, hashTableLog)
		ref := int(table[h]) - 1
		table[h] = int32(si + 1)

		if ref < 0 || si-ref <= 0 || si-ref >= maxDistance || !bytesEqual4(src, si, ref) {
			step := searchMatchNb >> skipTrigger
			searchMatchNb += acceleration
			si += step
			continue
		}

		offset := si - ref
		matchStart := si
		matchPos := ref

		// Extend backward: shrinks the literal run for free.
		for matchStart > anchor && matchPos > 0 && src[matchStart-1] == src[matchPos-1] {
			matchStart--
			matchPos--
		}

		lit := src[anchor:matchStart]
		si = matchStart + minMatch
		matchPos += minMatch
		limit := sn - si
		if rem := len(src) - si; rem < limit {
			limit = rem
		}
		si += matchCount(src[si:], src[matchPos:], limit)
		matchLen := si - matchStart

		dst, _ = encodeSequence(dst, lit, offset, matchLen, notLimited, 0)
		anchor = si
		searchMatchNb = acceleration << skipTrigger
	}

	return encodeLastLiterals(dst, src[anchor:])
}

// CompressBlockLimited compresses src into dst without growing dst past its
// existing capacity, the Go analogue of LZ4_compress_fast's fixed
// dstCapacity contract. It reports ok=false (not an error) if src would not
// fit, mirroring the reference function's "return 0" failure mode.
func CompressBlockLimited(src, dst []byte, table []int32) (out []byte, ok bool, err error) {
	if len(src) >= maxInputSize {
		return nil, false, ErrSrcTooLarge
	}
	if table == nil {
		table = make([]int32, 1<<hashTableLog)
	} else {
		clearInt32(table)
	}
	cap0 := cap(dst)
	out, ok = compressBlockFastLimited(src, dst[:0], table, 1, cap0)
	return out, ok, nil
}

func compressBlockFastLimited(src, dst []byte, table []int32, acceleration, dstCap int) ([]byte, bool) {
	sn := len(src) - mfLimit
	if sn <= 0 {
		if len(dst)+1+len(src) > dstCap {
			return dst, false
		}
		return encodeLastLiterals(dst, src), true
	}
	if acceleration < minAcceleration {
		acceleration = minAcceleration
	}
	if acceleration > maxAcceleration {
		acceleration = maxAcceleration
	}

	var si, anchor int
	searchMatchNb := acceleration << skipTrigger

	for si < sn {
		h := hash4(src, si, hashTableLog)
		ref := int(table[h]) - 1
		table[h] = int32(si + 1)

		if ref < 0 || si-ref <= 0 || si-ref >= maxDistance || !bytesEqual4(src, si, ref) {
			step := searchMatchNb >> skipTrigger
			searchMatchNb += acceleration
			si += step
			continue
		}

		offset := si - ref
		matchStart := si
		matchPos := ref
		for matchStart > anchor && matchPos > 0 && src[matchStart-1] == src[matchPos-1] {
			matchStart--
			matchPos--
		}

		lit := src[anchor:matchStart]
		si = matchStart + minMatch
		matchPos += minMatch
		limit := sn - si
		if rem := len(src) - si; rem < limit {
			limit = rem
		}
		si += matchCount(src[si:], src[matchPos:], limit)
		matchLen := si - matchStart

		var ok bool
		dst, ok = encodeSequence(dst, lit, offset, matchLen, limitedOutput, dstCap)
		if !ok {
			return dst, false
		}
		anchor = si
		searchMatchNb = acceleration << skipTrigger
	}

	if len(dst)+1+len(src[anchor:]) > dstCap {
		return dst, false
	}
	return encodeLastLiterals(dst, src[anchor:]), true
}

func bytesEqual4(src []byte, a, b int) bool {
	if a+4 > len(src) || b+4 > len(src) {
		return false
	}
	return binary.LittleEndian.Uint32(src[a:]) == binary.LittleEndian.Uint32(src[b:])
}
