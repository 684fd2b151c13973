// SPDX-License-Identifier: MIT

package lz4

import (
	"encoding/binary"
	"io"

	"github.com/go-lz4/lz4/internal/xxhash32"
)

const (
	flagVersion         = 1 << 6
	flagBlockIndep      = 1 << 5
	flagBlockChecksum   = 1 << 4
	flagContentSize     = 1 << 3
	flagContentChecksum = 1 << 2
	flagDictID          = 1 << 0

	blockUncompressedBit uint32 = 1 << 31
)

// CompressFrame is the one-shot frame encoder (§4.7). It returns the
// complete framed stream for src.
func CompressFrame(src []byte, prefs Preferences) ([]byte, error) {
	dst := make([]byte, 0, FrameCompressBound(len(src), prefs))
	buf := &growBuffer{b: dst}
	fw := NewFrameWriter(buf, prefs)
	if _, err := fw.Write(src); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return buf.b, nil
}

type growBuffer struct{ b []byte }

func (g *growBuffer) Write(p []byte) (int, error) {
	g.b = append(g.b, p...)
	return len(p), nil
}

// FrameCompressBound returns a safe upper bound on the framed output size
// for srcLen bytes under prefs (§4.7 compress_bound).
func FrameCompressBound(srcLen int, prefs Preferences) int {
	blockMax := prefs.BlockMaxID.Size()
	nBlocks := (srcLen + blockMax - 1) / blockMax
	if nBlocks == 0 {
		nBlocks = 1
	}
	perBlockOverhead := 4
	if prefs.BlockChecksum {
		perBlockOverhead += 4
	}
	payload := srcLen + srcLen/255 + 16*nBlocks
	total := maxFrameHeaderSize + nBlocks*perBlockOverhead + payload + 4
	if prefs.ContentChecksum {
		total += 4
	}
	return total
}

// FrameWriter streams src through the block codec and emits a framed LZ4
// stream to an underlying io.Writer (§4.7 compress_begin/update/flush/end),
// grounded on the teacher's pooled-buffer Writer shape generalised from
// GoZ4X's compress-stream.go Writer.
type FrameWriter struct {
	w     io.Writer
	prefs Preferences

	wroteHeader bool
	closed      bool
	dirty       bool

	blockMax int
	staging  []byte // pending bytes, < blockMax

	comp        *Compressor // used in BlockLinked mode only
	table       []int32     // reused scratch table in BlockIndependent mode
	contentHash xxhash32.State

	blockScratch []byte
}

// NewFrameWriter creates a FrameWriter targeting w.
func NewFrameWriter(w io.Writer, prefs Preferences) *FrameWriter {
	fw := &FrameWriter{w: w, prefs: prefs, blockMax: prefs.BlockMaxID.Size()}
	if prefs.BlockMode == BlockLinked {
		fw.comp = &Compressor{}
	}
	fw.contentHash.Reset(0)
	return fw
}

func (fw *FrameWriter) writeHeader() error {
	return WriteFrameHeader(fw.w, fw.prefs)
}

// WriteFrameHeader writes just a frame's magic number and header fields
// (§4.7 step 2) to w. It is exported so callers assembling a frame's blocks
// themselves (as the ioframe multi-threaded compressor does) can still
// produce a byte-identical header without going through a full FrameWriter.
func WriteFrameHeader(w io.Writer, prefs Preferences) error {
	flg := byte(flagVersion)
	if prefs.BlockMode == BlockIndependent {
		flg |= flagBlockIndep
	}
	if prefs.BlockChecksum {
		flg |= flagBlockChecksum
	}
	if prefs.HasContentSize {
		flg |= flagContentSize
	}
	if prefs.ContentChecksum {
		flg |= flagContentChecksum
	}
	if prefs.HasDictID {
		flg |= flagDictID
	}

	bd := byte(prefs.BlockMaxID&0x7) << 4

	var magicBuf [4]byte
	binary.LittleEndian.PutUint32(magicBuf[:], frameMagic)
	body := []byte{flg, bd}
	if prefs.HasContentSize {
		var cs [8]byte
		binary.LittleEndian.PutUint64(cs[:], prefs.ContentSize)
		body = append(body, cs[:]...)
	}
	if prefs.HasDictID {
		var did [4]byte
		binary.LittleEndian.PutUint32(did[:], prefs.DictID)
		body = append(body, did[:]...)
	}
	hc := byte((xxhash32.Sum32(0, body) >> 8) & 0xFF)

	if _, err := w.Write(magicBuf[:]); err != nil {
		return newFrameError(IoWrite, err)
	}
	if _, err := w.Write(body); err != nil {
		return newFrameError(IoWrite, err)
	}
	if _, err := w.Write([]byte{hc}); err != nil {
		return newFrameError(IoWrite, err)
	}
	return nil
}

// Write implements compress_update: it stages src and flushes one block at
// a time as the staging buffer fills.
func (fw *FrameWriter) Write(src []byte) (int, error) {
	if fw.dirty {
		return 0, ErrCompressorDirty
	}
	if !fw.wroteHeader {
		if err := fw.writeHeader(); err != nil {
			fw.dirty = true
			return 0, err
		}
		fw.wroteHeader = true
	}

	total := len(src)
	for len(src) > 0 {
		room := fw.blockMax - len(fw.staging)
		n := room
		if n > len(src) {
			n = len(src)
		}
		fw.staging = append(fw.staging, src[:n]...)
		src = src[n:]
		if len(fw.staging) == fw.blockMax {
			if err := fw.flushBlock(); err != nil {
				fw.dirty = true
				return total - len(src), err
			}
		}
	}
	return total, nil
}

// Flush forces emission of any pending partial block (compress_flush).
func (fw *FrameWriter) Flush() error {
	if len(fw.staging) == 0 {
		return nil
	}
	return fw.flushBlock()
}

func (fw *FrameWriter) flushBlock() error {
	data := fw.staging
	fw.contentHash.Write(data)

	var compressed []byte
	var err error
	if fw.prefs.BlockMode == BlockLinked {
		compressed, err = fw.comp.CompressFastContinue(data, fw.blockScratch[:0])
	} else {
		if fw.prefs.CompressionLevel > 0 {
			compressed, err = CompressBlockHC(data, fw.blockScratch[:0], fw.prefs.CompressionLevel)
		} else {
			if fw.table == nil {
				fw.table = make([]int32, 1<<hashTableLog)
			}
			compressed, err = CompressBlock(data, fw.blockScratch[:0], fw.table)
		}
	}
	if err != nil {
		return newFrameError(Generic, err)
	}
	fw.blockScratch = compressed[:0]

	var hdr [4]byte
	stored := compressed
	uncompressed := len(compressed) >= len(data)
	if uncompressed {
		stored = data
	}
	size := uint32(len(stored))
	if uncompressed {
		size |= blockUncompressedBit
	}
	binary.LittleEndian.PutUint32(hdr[:], size)

	if _, err := fw.w.Write(hdr[:]); err != nil {
		return newFrameError(IoWrite, err)
	}
	if _, err := fw.w.Write(stored); err != nil {
		return newFrameError(IoWrite, err)
	}
	if fw.prefs.BlockChecksum {
		var bc [4]byte
		binary.LittleEndian.PutUint32(bc[:], xxhash32.Sum32(0, stored))
		if _, err := fw.w.Write(bc[:]); err != nil {
			return newFrameError(IoWrite, err)
		}
	}

	fw.staging = fw.staging[:0]
	return nil
}

// Close implements compress_end: flushes any pending block, writes the
// end-of-frame marker, and the content checksum if configured.
func (fw *FrameWriter) Close() error {
	if fw.closed {
		return nil
	}
	fw.closed = true

	if !fw.wroteHeader {
		if err := fw.writeHeader(); err != nil {
			return err
		}
		fw.wroteHeader = true
	}
	if err := fw.Flush(); err != nil {
		return err
	}

	var end [4]byte
	binary.LittleEndian.PutUint32(end[:], frameEndMarker)
	if _, err := fw.w.Write(end[:]); err != nil {
		return newFrameError(IoWrite, err)
	}

	if fw.prefs.ContentChecksum {
		var cc [4]byte
		binary.LittleEndian.PutUint32(cc[:], fw.contentHash.Sum32())
		if _, err := fw.w.Write(cc[:]); err != nil {
			return newFrameError(IoWrite, err)
		}
	}
	return nil
}
