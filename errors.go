// SPDX-License-Identifier: MIT

package lz4

import "errors"

// Sentinel errors for the block and streaming codecs.
var (
	// ErrMalformedInput covers all corrupt-stream conditions the block decoder
	// detects: source exhausted early, destination capacity exceeded, zero
	// offset, or an offset outside the legal reference window.
	ErrMalformedInput = errors.New("lz4: malformed input")
	// ErrShortBuffer names a destination buffer too small for the output. The
	// codecs in this package do not return it: the block decoder reports an
	// undersized destination as ErrMalformedInput, and CompressBlockLimited
	// reports ok=false.
	ErrShortBuffer = errors.New("lz4: destination buffer too small")
	// ErrSrcTooLarge is returned when a block source exceeds the maximum size
	// the format's 31-bit length fields can express.
	ErrSrcTooLarge = errors.New("lz4: source too large for a single block")
	// ErrInvalidDict names an invalid dictionary state. The codecs in this
	// package do not return it: LoadDict keeps only the last 64 KiB of an
	// oversized dictionary.
	ErrInvalidDict = errors.New("lz4: invalid dictionary state")
	// ErrCompressorDirty is returned when a streaming compressor whose last
	// operation failed is reused without a Reset.
	ErrCompressorDirty = errors.New("lz4: compressor is dirty, call Reset")
)
