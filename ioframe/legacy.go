// SPDX-License-Identifier: MIT

package ioframe

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/go-lz4/lz4"
)

// legacyBlockSize is LEGACY_BLOCKSIZE (§4.9.3): every legacy block holds at
// most this many decompressed bytes.
const legacyBlockSize = 8 << 20

// nbBuffsets bounds the legacy multi-threaded pipeline's in-flight block
// count (§5 "a bounded channel of at most NB_BUFFSETS = 4 inflight chunks").
const nbBuffsets = 4

var legacyBlockBound = legacyBlockSize + legacyBlockSize/255 + 16

// decompressLegacy consumes the legacy magic already peeked at the front of
// br, then decodes the repeating (size, block) pairs that follow until
// either EOF or a 4-byte value too large to be a legitimate stored size —
// which per §4.9.3 must be the next stream's magic, left unconsumed for the
// caller to reclassify.
func decompressLegacy(br *bufio.Reader, w io.Writer, opts DecompressFileOptions) error {
	var magicBuf [4]byte
	if _, err := io.ReadFull(br, magicBuf[:]); err != nil {
		return err
	}

	if opts.NBWorkers > 1 {
		return decompressLegacyParallel(br, w, opts.NBWorkers)
	}
	return decompressLegacySequential(br, w)
}

func decompressLegacySequential(br *bufio.Reader, w io.Writer) error {
	out := make([]byte, legacyBlockSize)
	for {
		block, ok, err := readLegacyBlock(br)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		n, err := lz4.DecompressBlock(block, out)
		if err != nil {
			return err
		}
		if _, err := w.Write(out[:n]); err != nil {
			return err
		}
	}
}

// decompressLegacyParallel reads up to nbBuffsets blocks at a time, decodes
// them concurrently, and writes results back in order (§4.9.3, §5 ordering
// guarantee).
func decompressLegacyParallel(br *bufio.Reader, w io.Writer, nbWorkers int) error {
	for {
		batch := make([][]byte, 0, nbBuffsets)
		done := false
		for len(batch) < nbBuffsets {
			block, ok, err := readLegacyBlock(br)
			if err != nil {
				return err
			}
			if !ok {
				done = true
				break
			}
			batch = append(batch, block)
		}
		if len(batch) == 0 {
			return nil
		}

		results, err := mapOrdered(nbWorkers, batch, func(_ int, block []byte) ([]byte, error) {
			out := make([]byte, legacyBlockSize)
			n, err := lz4.DecompressBlock(block, out)
			if err != nil {
				return nil, err
			}
			return out[:n], nil
		})
		if err != nil {
			return err
		}
		for _, r := range results {
			if _, err := w.Write(r); err != nil {
				return err
			}
		}
		if done {
			return nil
		}
	}
}

// readLegacyBlock peeks the next 4 bytes: if they form a plausible stored
// block size, it consumes the size and the block bytes and returns them. If
// the value is too large to be a legacy block, it is left unconsumed (ok
// is false) so the caller can reclassify it as the next stream's magic.
func readLegacyBlock(br *bufio.Reader) ([]byte, bool, error) {
	peek, err := br.Peek(4)
	if len(peek) < 4 {
		if err == io.EOF {
			return nil, false, nil
		}
		return nil, false, err
	}

	size := binary.LittleEndian.Uint32(peek)
	if int(size) > legacyBlockBound {
		return nil, false, nil
	}

	if _, err := br.Discard(4); err != nil {
		return nil, false, err
	}
	block := make([]byte, size)
	if _, err := io.ReadFull(br, block); err != nil {
		return nil, false, err
	}
	return block, true, nil
}
