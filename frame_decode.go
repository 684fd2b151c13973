// SPDX-License-Identifier: MIT

package lz4

import (
	"encoding/binary"
	"io"

	"github.com/go-lz4/lz4/internal/xxhash32"
)

// DecompressFrame is the one-shot frame decoder convenience wrapper around
// FrameReader, reading src fully and returning the decoded content.
func DecompressFrame(src []byte, opts DecompressOptions) ([]byte, error) {
	fr := NewFrameReader(newByteReader(src), opts)
	out, err := io.ReadAll(fr)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type byteReader struct {
	b []byte
	i int
}

func newByteReader(b []byte) *byteReader { return &byteReader{b: b} }

func (r *byteReader) Read(p []byte) (int, error) {
	if r.i >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.i:])
	r.i += n
	return n, nil
}

// GetFrameInfo peeks a frame header out of src without consuming block
// payloads, returning the parsed FrameInfo and the number of header bytes
// it occupies (§4.8 get_frame_info).
func GetFrameInfo(src []byte) (FrameInfo, int, error) {
	if len(src) < 4 {
		return FrameInfo{}, 0, newFrameError(FrameHeaderIncomplete, nil)
	}
	magic := binary.LittleEndian.Uint32(src[0:4])
	if magic != frameMagic {
		return FrameInfo{}, 0, newFrameError(FrameTypeUnknown, errFrameTypeUnknown)
	}
	info, n, err := parseFrameHeader(src[4:])
	return info, n + 4, err
}

// parseFrameHeader parses the FLG/BD/[content size][dict id]/HC fields that
// follow the magic number, returning the fields consumed (not including the
// magic itself).
func parseFrameHeader(src []byte) (FrameInfo, int, error) {
	if len(src) < 2 {
		return FrameInfo{}, 0, newFrameError(FrameHeaderIncomplete, nil)
	}
	flg, bd := src[0], src[1]

	if flg>>6 != 1 {
		return FrameInfo{}, 0, newFrameError(HeaderVersionWrong, errHeaderVersionWrong)
	}
	if flg&0x02 != 0 {
		return FrameInfo{}, 0, newFrameError(ReservedFlagSet, errReservedFlagSet)
	}

	info := FrameInfo{
		BlockChecksum:   flg&flagBlockChecksum != 0,
		ContentChecksum: flg&flagContentChecksum != 0,
		HasContentSize:  flg&flagContentSize != 0,
		HasDictID:       flg&flagDictID != 0,
	}
	if flg&flagBlockIndep != 0 {
		info.BlockMode = BlockIndependent
	} else {
		info.BlockMode = BlockLinked
	}
	info.BlockMaxID = BlockMaxID((bd >> 4) & 0x7)
	if info.BlockMaxID < BlockMax64KB || info.BlockMaxID > BlockMax4MB {
		return FrameInfo{}, 0, newFrameError(MaxBlockSizeInvalid, nil)
	}

	pos := 2
	if info.HasContentSize {
		if len(src) < pos+8 {
			return FrameInfo{}, 0, newFrameError(FrameHeaderIncomplete, nil)
		}
		info.ContentSize = binary.LittleEndian.Uint64(src[pos : pos+8])
		pos += 8
	}
	if info.HasDictID {
		if len(src) < pos+4 {
			return FrameInfo{}, 0, newFrameError(FrameHeaderIncomplete, nil)
		}
		info.DictID = binary.LittleEndian.Uint32(src[pos : pos+4])
		pos += 4
	}
	if len(src) < pos+1 {
		return FrameInfo{}, 0, newFrameError(FrameHeaderIncomplete, nil)
	}
	gotHC := src[pos]
	wantHC := byte((xxhash32.Sum32(0, src[:pos]) >> 8) & 0xFF)
	pos++
	if gotHC != wantHC {
		return FrameInfo{}, 0, newFrameError(HeaderChecksumInvalid, nil)
	}

	return info, pos, nil
}

// FrameReader decodes a stream of one or more concatenated LZ4 frames
// (§4.8). Skippable frames encountered between or before real frames are
// transparently discarded. It implements io.Reader.
type FrameReader struct {
	r    io.Reader
	opts DecompressOptions

	info       FrameInfo
	headerDone bool
	eof        bool

	dict        []byte // rolling <=64KiB ext-dict window
	pending     []byte // decoded bytes not yet handed to the caller
	contentHash xxhash32.State

	scratch []byte // reused compressed-block staging buffer
}

// NewFrameReader creates a FrameReader reading from r.
func NewFrameReader(r io.Reader, opts DecompressOptions) *FrameReader {
	fr := &FrameReader{r: r, opts: opts}
	if len(opts.Dict) > 0 {
		fr.dict = append([]byte(nil), opts.Dict...)
		if len(fr.dict) > windowSize64K {
			fr.dict = fr.dict[len(fr.dict)-windowSize64K:]
		}
	}
	return fr
}

// Reset discards all state, including stickiness of SkipChecksum, so the
// reader can be pointed at a new stream.
func (fr *FrameReader) Reset(r io.Reader, opts DecompressOptions) {
	*fr = *NewFrameReader(r, opts)
}

// GetFrameInfo returns the most recently parsed frame's header; valid only
// after headers for the current frame have been consumed.
func (fr *FrameReader) GetFrameInfo() FrameInfo { return fr.info }

func (fr *FrameReader) Read(p []byte) (int, error) {
	for len(fr.pending) == 0 {
		if fr.eof {
			return 0, io.EOF
		}
		if err := fr.advance(); err != nil {
			return 0, err
		}
	}
	n := copy(p, fr.pending)
	fr.pending = fr.pending[n:]
	return n, nil
}

// advance performs one unit of state-machine work: either classifies and
// consumes a frame header, skips a skippable frame, or decodes one block.
func (fr *FrameReader) advance() error {
	if !fr.headerDone {
		return fr.readHeader()
	}
	return fr.readBlock()
}

func (fr *FrameReader) readHeader() error {
	var magicBuf [4]byte
	if _, err := io.ReadFull(fr.r, magicBuf[:]); err != nil {
		if err == io.EOF {
			fr.eof = true
			return io.EOF
		}
		return newFrameError(IoRead, err)
	}
	magic := binary.LittleEndian.Uint32(magicBuf[:])

	if magic >= skippableMagicLo && magic <= skippableMagicHi {
		var lenBuf [4]byte
		if _, err := io.ReadFull(fr.r, lenBuf[:]); err != nil {
			return newFrameError(IoRead, err)
		}
		n := binary.LittleEndian.Uint32(lenBuf[:])
		if _, err := io.CopyN(io.Discard, fr.r, int64(n)); err != nil {
			return newFrameError(IoRead, err)
		}
		return nil
	}

	if magic != frameMagic {
		return newFrameError(FrameTypeUnknown, errFrameTypeUnknown)
	}

	rest := make([]byte, 2, maxFrameHeaderSize)
	if _, err := io.ReadFull(fr.r, rest[:2]); err != nil {
		return newFrameError(IoRead, err)
	}
	flg := rest[0]
	if flg&flagContentSize != 0 {
		var b [8]byte
		if _, err := io.ReadFull(fr.r, b[:]); err != nil {
			return newFrameError(IoRead, err)
		}
		rest = append(rest, b[:]...)
	}
	if flg&flagDictID != 0 {
		var b [4]byte
		if _, err := io.ReadFull(fr.r, b[:]); err != nil {
			return newFrameError(IoRead, err)
		}
		rest = append(rest, b[:]...)
	}
	var hcByte [1]byte
	if _, err := io.ReadFull(fr.r, hcByte[:]); err != nil {
		return newFrameError(IoRead, err)
	}

	info, consumed, err := parseFrameHeader(append(rest, hcByte[0]))
	if err != nil {
		return err
	}
	if consumed != len(rest)+1 {
		return newFrameError(Generic, nil)
	}

	fr.info = info
	fr.headerDone = true
	fr.contentHash.Reset(0)
	return nil
}

func (fr *FrameReader) readBlock() error {
	var hdr [4]byte
	if _, err := io.ReadFull(fr.r, hdr[:]); err != nil {
		return newFrameError(IoRead, err)
	}
	raw := binary.LittleEndian.Uint32(hdr[:])

	if raw == 0 {
		return fr.readSuffix()
	}

	uncompressed := raw&blockUncompressedBit != 0
	size := int(raw &^ blockUncompressedBit)

	if cap(fr.scratch) < size {
		fr.scratch = make([]byte, size)
	}
	stored := fr.scratch[:size]
	if _, err := io.ReadFull(fr.r, stored); err != nil {
		return newFrameError(IoRead, err)
	}

	if fr.info.BlockChecksum {
		var bc [4]byte
		if _, err := io.ReadFull(fr.r, bc[:]); err != nil {
			return newFrameError(IoRead, err)
		}
		if !fr.opts.SkipChecksum {
			want := binary.LittleEndian.Uint32(bc[:])
			got := xxhash32.Sum32(0, stored)
			if got != want {
				return newFrameError(BlockChecksumInvalid, nil)
			}
		}
	}

	var decoded []byte
	if uncompressed {
		decoded = stored
	} else {
		blockMax := fr.info.BlockMaxID.Size()
		dst := make([]byte, blockMax)
		mode := noDict
		if len(fr.dict) > 0 {
			mode = usingExtDict
		}
		written, _, err := decodeBlock(dst, stored, nil, fr.dict, mode, false, blockMax)
		if err != nil {
			return newFrameError(DecompressionFailed, err)
		}
		decoded = dst[:written]
	}

	if !fr.opts.SkipChecksum || fr.info.ContentChecksum {
		fr.contentHash.Write(decoded)
	}

	if fr.info.BlockMode == BlockLinked {
		fr.dict = append(fr.dict, decoded...)
		if len(fr.dict) > windowSize64K {
			fr.dict = append([]byte(nil), fr.dict[len(fr.dict)-windowSize64K:]...)
		}
	} else {
		fr.dict = fr.dict[:0]
	}

	fr.pending = append(fr.pending, decoded...)
	return nil
}

func (fr *FrameReader) readSuffix() error {
	if fr.info.ContentChecksum {
		var cc [4]byte
		if _, err := io.ReadFull(fr.r, cc[:]); err != nil {
			return newFrameError(IoRead, err)
		}
		if !fr.opts.SkipChecksum {
			want := binary.LittleEndian.Uint32(cc[:])
			got := fr.contentHash.Sum32()
			if got != want {
				return newFrameError(ContentChecksumInvalid, nil)
			}
		}
	}
	fr.headerDone = false
	fr.dict = fr.dict[:0]
	return nil
}
