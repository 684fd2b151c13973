// SPDX-License-Identifier: MIT

/*
Package lz4 implements the LZ4 block, streaming and frame codecs.

The format uses a token byte packing a literal-run length and a match length
into two nibbles, followed by variable-length extensions, a little-endian
match offset, and a final literal run with no trailing match. Two compressors
are provided: a fast single-pass hash-chain coder and a slower multi-probe
high-compression (HC) coder; both produce streams the single decompressor
can read.

# Block

	out, err := lz4.CompressBlock(src, nil, nil)
	n, err := lz4.DecompressBlock(compressed, dst)

# Streaming block codec

A Compressor/Decompressor pair maintains a rolling 64 KiB history window
across calls, so that matches can reference data compressed or decompressed
in a previous call:

	var c lz4.Compressor
	out1, _ := c.CompressFastContinue(chunk1, nil)
	out2, _ := c.CompressFastContinue(chunk2, nil)

# Frame

The frame format is a self-describing container: magic, flags, one or more
blocks, optional per-block and whole-stream checksums.

	out, err := lz4.CompressFrame(src, lz4.DefaultPreferences())
	out, err := lz4.DecompressFrame(compressed, lz4.DecompressOptions{})

Streaming frame I/O is exposed through FrameWriter/FrameReader, which satisfy
io.Writer/io.Reader.

File-level multi-threaded compression and decompression (including the
legacy pre-frame format, skippable frames, and sparse output) live in the
sibling package ioframe.
*/
package lz4
