// SPDX-License-Identifier: MIT

package lz4

// encodeSequence appends one (literal_run, offset, match_length) sequence to
// dst, as specified in §4.3.1. matchLen is the *full* match length (already
// includes minMatch); the encoder subtracts minMatch itself. Returns the
// extended dst, or ok=false if limit==limitedOutput and the write would not
// fit within dstCap.
func encodeSequence(dst []byte, lit []byte, offset, matchLen int, limit limitMode, dstCap int) ([]byte, bool) {
	litLen := len(lit)
	tokenPos := len(dst)

	hi := litLen
	if hi > 15 {
		hi = 15
	}
	lo := matchLen - minMatch
	if lo > 15 {
		lo = 15
	}
	dst = append(dst, byte(hi<<4|lo))

	if litLen >= 15 {
		dst = appendLength(dst, litLen-15)
	}
	dst = append(dst, lit...)

	dst = append(dst, byte(offset), byte(offset>>8))

	if matchLen-minMatch >= 15 {
		dst = appendLength(dst, matchLen-minMatch-15)
	}

	if limit == limitedOutput && len(dst) > dstCap {
		return dst[:tokenPos], false
	}
	return dst, true
}

// encodeLastLiterals appends the final, match-less literal run (§4.3 step 7).
func encodeLastLiterals(dst []byte, lit []byte) []byte {
	litLen := len(lit)
	hi := litLen
	if hi > 15 {
		hi = 15
	}
	dst = append(dst, byte(hi<<4))
	if litLen >= 15 {
		dst = appendLength(dst, litLen-15)
	}
	return append(dst, lit...)
}

// appendLength appends the 0xFF-chained variable-length extension for a
// remaining count n (§3.1 token byte / §4.1 variable-length read).
func appendLength(dst []byte, n int) []byte {
	for n >= 255 {
		dst = append(dst, 0xFF)
		n -= 255
	}
	return append(dst, byte(n))
}

// CompressBlockBound returns the worst-case compressed size for an input of
// n bytes (§4.7 compress_bound per-block payload term).
func CompressBlockBound(n int) int {
	if n <= 0 {
		return 16
	}
	return n + n/255 + 16
}
