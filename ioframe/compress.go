// SPDX-License-Identifier: MIT

package ioframe

import (
	"encoding/binary"
	"io"

	"github.com/go-lz4/lz4"
	"github.com/go-lz4/lz4/internal/xxhash32"
)

// chunkSize is the independent sub-frame size used by the multi-threaded
// compression path (§4.9.1).
const chunkSize = 4 << 20

// CompressOptions configures the file compression pipeline.
type CompressOptions struct {
	Prefs     lz4.Preferences
	NBWorkers int // <=1 selects the single-threaded streaming path
}

// CompressFile streams r through the frame encoder and writes the result to
// w, using either the single-threaded streaming path or the multi-threaded
// chunked path depending on opts.NBWorkers (§4.9.1).
func CompressFile(r io.Reader, w io.Writer, opts CompressOptions) error {
	if opts.NBWorkers <= 1 {
		return compressSingleThreaded(r, w, opts.Prefs)
	}
	return compressMultiThreaded(r, w, opts)
}

func compressSingleThreaded(r io.Reader, w io.Writer, prefs lz4.Preferences) error {
	fw := lz4.NewFrameWriter(w, prefs)
	if _, err := io.Copy(fw, r); err != nil {
		return err
	}
	return fw.Close()
}

// compressMultiThreaded chunks the input into 4 MiB segments, compresses
// each in parallel as a run of frame blocks (in BlockLinked mode, each
// segment after the first is compressed against the last 64 KiB of the
// segment before it), then
// stitches the results behind a single outer frame header/trailer so the
// emitted bytes form one ordinary LZ4 frame from a decoder's perspective.
func compressMultiThreaded(r io.Reader, w io.Writer, opts CompressOptions) error {
	chunks, err := readChunks(r)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		chunks = [][]byte{{}}
	}

	linked := opts.Prefs.BlockMode == lz4.BlockLinked
	encoded, err := mapOrdered(opts.NBWorkers, chunks, func(idx int, chunk []byte) ([]byte, error) {
		var dict []byte
		if linked && idx > 0 {
			dict = trailingWindow(chunks[idx-1])
		}
		return encodeSubFrameBlocks(opts.Prefs, chunk, dict)
	})
	if err != nil {
		return err
	}

	if err := lz4.WriteFrameHeader(w, opts.Prefs); err != nil {
		return err
	}
	for _, blk := range encoded {
		if _, err := w.Write(blk); err != nil {
			return err
		}
	}

	var endMarker [4]byte
	if _, err := w.Write(endMarker[:]); err != nil {
		return err
	}
	if opts.Prefs.ContentChecksum {
		var hash xxhash32.State
		hash.Reset(0)
		for _, c := range chunks {
			hash.Write(c)
		}
		var cc [4]byte
		binary.LittleEndian.PutUint32(cc[:], hash.Sum32())
		if _, err := w.Write(cc[:]); err != nil {
			return err
		}
	}
	return nil
}

func readChunks(r io.Reader) ([][]byte, error) {
	var chunks [][]byte
	for {
		buf := make([]byte, chunkSize)
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			chunks = append(chunks, buf[:n])
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return chunks, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func trailingWindow(chunk []byte) []byte {
	const windowSize64K = 64 << 10
	if len(chunk) <= windowSize64K {
		return chunk
	}
	return chunk[len(chunk)-windowSize64K:]
}

// encodeSubFrameBlocks compresses chunk into a run of frame block_header
// [+ checksum] records (no frame magic, no content checksum: §4.9.1 "no
// content checksum inside the sub-frame"), optionally continuing from dict.
func encodeSubFrameBlocks(prefs lz4.Preferences, chunk []byte, dict []byte) ([]byte, error) {
	blockMax := prefs.BlockMaxID.Size()

	var comp *lz4.Compressor
	if prefs.BlockMode == lz4.BlockLinked {
		comp = &lz4.Compressor{}
		if len(dict) > 0 {
			comp.LoadDict(dict)
		}
	}

	var out []byte
	for len(chunk) > 0 {
		n := blockMax
		if n > len(chunk) {
			n = len(chunk)
		}
		data := chunk[:n]
		chunk = chunk[n:]

		var compressed []byte
		var err error
		switch {
		case comp != nil:
			compressed, err = comp.CompressFastContinue(data, nil)
		case prefs.CompressionLevel > 0:
			compressed, err = lz4.CompressBlockHC(data, nil, prefs.CompressionLevel)
		default:
			compressed, err = lz4.CompressBlock(data, nil, nil)
		}
		if err != nil {
			return nil, err
		}

		stored := compressed
		uncompressed := len(compressed) >= len(data)
		if uncompressed {
			stored = data
		}

		var hdr [4]byte
		size := uint32(len(stored))
		if uncompressed {
			size |= 1 << 31
		}
		binary.LittleEndian.PutUint32(hdr[:], size)
		out = append(out, hdr[:]...)
		out = append(out, stored...)

		if prefs.BlockChecksum {
			var bc [4]byte
			binary.LittleEndian.PutUint32(bc[:], xxhash32.Sum32(0, stored))
			out = append(out, bc[:]...)
		}
	}
	if len(out) == 0 {
		// An empty chunk (possible only for a zero-length input) still needs
		// a zero-size block so the stitched stream stays well-formed.
		var hdr [4]byte
		binary.LittleEndian.PutUint32(hdr[:], 1<<31)
		out = append(out, hdr[:]...)
		if prefs.BlockChecksum {
			var bc [4]byte
			binary.LittleEndian.PutUint32(bc[:], xxhash32.Sum32(0, nil))
			out = append(out, bc[:]...)
		}
	}
	return out, nil
}
