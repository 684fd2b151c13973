// SPDX-License-Identifier: MIT

package ioframe

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/go-lz4/lz4"
)

const (
	frameMagic       uint32 = 0x184D2204
	legacyMagic      uint32 = 0x184C2102
	skippableMagicLo uint32 = 0x184D2A50
	skippableMagicHi uint32 = 0x184D2A5F
)

// ErrUnrecognizedStream is returned by DecompressFile when the input's
// magic number matches none of the recognised formats and PassThrough is
// not enabled (§4.9.2).
var ErrUnrecognizedStream = errors.New("ioframe: unrecognized stream format")

// DecompressFileOptions configures the file decompression pipeline.
type DecompressFileOptions struct {
	Decompress  lz4.DecompressOptions
	PassThrough bool // copy unrecognized input verbatim instead of erroring
	NBWorkers   int  // legacy decoder parallelism; <=1 is single-threaded
}

// DecompressFile classifies r's leading magic number and dispatches to the
// frame decoder, the legacy decoder, or a skippable-frame skip, looping
// until EOF so a file holding several concatenated streams decodes in full
// (§4.9.2). A legacy stream or a skippable frame may be followed by any
// format. Once an LZ4 frame starts, the frame decoder reads the rest of the
// input and accepts only further LZ4 frames and skippable frames; any other
// magic number after it ends decoding with a FrameTypeUnknown error.
func DecompressFile(r io.Reader, w io.Writer, opts DecompressFileOptions) error {
	br := bufio.NewReaderSize(r, 64<<10)

	for {
		peek, err := br.Peek(4)
		if len(peek) == 0 && err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if len(peek) < 4 {
			// Trailing garbage shorter than any magic number.
			if opts.PassThrough {
				_, err := io.Copy(w, br)
				return err
			}
			return ErrUnrecognizedStream
		}

		magic := binary.LittleEndian.Uint32(peek)
		switch {
		case magic == frameMagic:
			fr := lz4.NewFrameReader(br, opts.Decompress)
			if _, err := io.Copy(w, fr); err != nil {
				return err
			}
		case magic == legacyMagic:
			if err := decompressLegacy(br, w, opts); err != nil {
				return err
			}
		case magic >= skippableMagicLo && magic <= skippableMagicHi:
			if err := skipSkippableFrame(br); err != nil {
				return err
			}
		default:
			if opts.PassThrough {
				_, err := io.Copy(w, br)
				return err
			}
			return ErrUnrecognizedStream
		}
	}
}

func skipSkippableFrame(br *bufio.Reader) error {
	var hdr [8]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return err
	}
	n := binary.LittleEndian.Uint32(hdr[4:8])
	_, err := io.CopyN(io.Discard, br, int64(n))
	return err
}
