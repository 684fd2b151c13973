// SPDX-License-Identifier: MIT

package lz4

// Compressor is a single independent LZ4 streaming compression context
// (§4.6). Successive calls to CompressFastContinue see each other's output
// as match history, the way LZ4_compress_fast_continue does, up to a 64 KiB
// window. Unlike the reference C API, a Compressor owns its history buffer
// outright instead of asking the caller to manage ring-buffer placement;
// §9's design notes call this out as the idiomatic Go rendering of the
// "prefix mode" fast path, at the cost of one extra copy per call.
type Compressor struct {
	table  []int32
	window []byte // trailing <=64KiB of previously compressed input, then the pending block
	dirty  bool
}

// Reset clears all history and match-finding state.
func (c *Compressor) Reset() {
	if c.table == nil {
		c.table = make([]int32, 1<<hashTableLog)
	} else {
		clearInt32(c.table)
	}
	c.window = c.window[:0]
	c.dirty = false
}

// ResetFast clears the dirty flag without discarding the window or table,
// mirroring LZ4_resetStream_fast's contract of trusting the caller to keep
// feeding the same logical stream (§4.6).
func (c *Compressor) ResetFast() {
	c.dirty = false
}

// LoadDict seeds the stream's history with dict, as LZ4_loadDict does,
// discarding any prior window.
func (c *Compressor) LoadDict(dict []byte) {
	if c.table == nil {
		c.table = make([]int32, 1<<hashTableLog)
	} else {
		clearInt32(c.table)
	}
	c.window = append(c.window[:0], dict...)
	if len(c.window) > windowSize64K {
		c.window = c.window[len(c.window)-windowSize64K:]
	}
	c.dirty = false
	c.indexWindow()
}

// AttachDict references another Compressor's trailing window as this
// stream's dictionary. §8.1 requires only that attach and load produce
// equal *decompressed* output, not identical compressed bytes, so attaching
// is implemented as loading a copy of the source's window (§4.6).
func (c *Compressor) AttachDict(src *Compressor) {
	if src == nil {
		c.LoadDict(nil)
		return
	}
	c.LoadDict(src.window)
}

// SaveDict copies the stream's trailing window (up to 64 KiB) into a fresh
// slice and re-seeds the stream from it, the way LZ4_saveDict hands the
// caller a dictionary to reuse in a later, disconnected stream.
func (c *Compressor) SaveDict() []byte {
	saved := append([]byte(nil), c.window...)
	c.LoadDict(saved)
	return saved
}

func (c *Compressor) indexWindow() {
	w := c.window
	for i := 0; i+minMatch <= len(w); i++ {
		h := hash4(w, i, hashTableLog)
		c.table[h] = int32(i + 1)
	}
}

// CompressFastContinue compresses src as the next block of the stream,
// allowing matches against up to 64 KiB of previously compressed input
// (§4.6).
func (c *Compressor) CompressFastContinue(src, dst []byte) ([]byte, error) {
	if c.dirty {
		return nil, ErrCompressorDirty
	}
	if len(src) >= maxInputSize {
		return nil, ErrSrcTooLarge
	}
	if c.table == nil {
		c.table = make([]int32, 1<<hashTableLog)
	}

	start := len(c.window)
	c.window = append(c.window, src...)
	if dst == nil {
		dst = make([]byte, 0, CompressBlockBound(len(src)))
	}

	out := compressBlockFastContinue(c.window, start, dst[:0], c.table)

	if len(c.window) > windowSize64K {
		cut := len(c.window) - windowSize64K
		copy(c.window, c.window[cut:])
		c.window = c.window[:windowSize64K]
		// Table entries reference absolute positions in the pre-trim window;
		// sliding invalidates them, so they are dropped here rather than
		// rebiased (§9 notes the simpler, documented trade-off over exact
		// virtual-offset renormalisation for the streaming path).
		clearInt32(c.table)
		c.indexWindow()
	}

	return out, nil
}

// compressBlockFastContinue is compressBlockFast generalised to scan only
// window[start:] while matching against the whole window, so a stream's
// history participates in later blocks' match search.
func compressBlockFastContinue(window []byte, start int, dst []byte, table []int32) []byte {
	sn := len(window) - mfLimit
	if sn <= start {
		return encodeLastLiterals(dst, window[start:])
	}

	si, anchor := start, start
	acceleration := 1
	searchMatchNb := acceleration << skipTrigger

	for si < sn {
		h := hash4(window, si, hashTableLog)
		ref := int(table[h]) - 1
		table[h] = int32(si + 1)

		if ref < 0 || si-ref <= 0 || si-ref >= maxDistance || !bytesEqual4(window, si, ref) {
			step := searchMatchNb >> skipTrigger
			searchMatchNb += acceleration
			si += step
			continue
		}

		offset := si - ref
		matchStart := si
		matchPos := ref

		for matchStart > anchor && matchPos > 0 && window[matchStart-1] == window[matchPos-1] {
			matchStart--
			matchPos--
		}

		lit := window[anchor:matchStart]
		si = matchStart + minMatch
		matchPos += minMatch
		limit := sn - si
		if rem := len(window) - si; rem < limit {
			limit = rem
		}
		si += matchCount(window[si:], window[matchPos:], limit)
		matchLen := si - matchStart

		dst, _ = encodeSequence(dst, lit, offset, matchLen, notLimited, 0)
		anchor = si
		searchMatchNb = acceleration << skipTrigger
	}

	return encodeLastLiterals(dst, window[anchor:])
}

// Decompressor is the receiving side of a streaming pair (§4.6). It owns the
// decoded history itself rather than requiring the caller to place output
// contiguously in a shared ring buffer, collapsing WithPrefix64k handling
// into a single code path for the streaming API (DecompressBlockUsingDict
// exposes the ext-dict path directly for callers that manage their own
// external dictionary).
type Decompressor struct {
	window []byte
	dirty  bool
}

// Reset discards all history.
func (d *Decompressor) Reset() {
	d.window = d.window[:0]
	d.dirty = false
}

// LoadDict seeds the stream's history with dict.
func (d *Decompressor) LoadDict(dict []byte) {
	d.window = append(d.window[:0], dict...)
	if len(d.window) > windowSize64K {
		d.window = d.window[len(d.window)-windowSize64K:]
	}
	d.dirty = false
}

// AttachDict references src's trailing window as this stream's dictionary
// (§8.1: decompressed equality with LoadDict is the only requirement).
func (d *Decompressor) AttachDict(src *Decompressor) {
	if src == nil {
		d.LoadDict(nil)
		return
	}
	d.LoadDict(src.window)
}

// DecompressSafeContinue decodes one block of a stream, with matches
// allowed to reach back into the previously decoded window.
func (d *Decompressor) DecompressSafeContinue(src []byte, decompressedSize int) ([]byte, error) {
	if d.dirty {
		return nil, ErrCompressorDirty
	}

	base := len(d.window)
	mode := noDict
	var prefix []byte
	if base > 0 {
		mode = withPrefix64k
		prefix = d.window[:base]
	}

	d.window = append(d.window, make([]byte, decompressedSize)...)
	n, _, err := decodeBlock(d.window[base:], src, prefix, nil, mode, false, decompressedSize)
	if err != nil {
		d.window = d.window[:base]
		d.dirty = true
		return nil, err
	}

	out := append([]byte(nil), d.window[base:base+n]...)
	d.window = d.window[:base+n]

	if len(d.window) > windowSize64K {
		cut := len(d.window) - windowSize64K
		copy(d.window, d.window[cut:])
		d.window = d.window[:windowSize64K]
	}

	return out, nil
}
