// SPDX-License-Identifier: MIT

package lz4

import "sync"

// compressorPool reuses Compressor values across streams, the same role the
// teacher's slidingWindowDictPool plays for LZO1X-999 (sliding_window_pool.go):
// the hash table and history buffer are the expensive parts to allocate, so a
// finished stream's Compressor is worth recycling instead of discarding.
var compressorPool = sync.Pool{
	New: func() any {
		return &Compressor{}
	},
}

// AcquireCompressor returns a Compressor from the pool, freshly Reset.
func AcquireCompressor() *Compressor {
	c := compressorPool.Get().(*Compressor)
	c.Reset()
	return c
}

// ReleaseCompressor returns c to the pool. c must not be used afterward.
func ReleaseCompressor(c *Compressor) {
	if c == nil {
		return
	}
	compressorPool.Put(c)
}

var decompressorPool = sync.Pool{
	New: func() any {
		return &Decompressor{}
	},
}

// AcquireDecompressor returns a Decompressor from the pool, freshly Reset.
func AcquireDecompressor() *Decompressor {
	d := decompressorPool.Get().(*Decompressor)
	d.Reset()
	return d
}

// ReleaseDecompressor returns d to the pool. d must not be used afterward.
func ReleaseDecompressor(d *Decompressor) {
	if d == nil {
		return
	}
	decompressorPool.Put(d)
}
