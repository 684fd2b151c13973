// SPDX-License-Identifier: MIT

package lz4

import "errors"

const (
	frameMagic       uint32 = 0x184D2204
	legacyMagic      uint32 = 0x184C2102
	skippableMagicLo uint32 = 0x184D2A50
	skippableMagicHi uint32 = 0x184D2A5F

	frameEndMarker uint32 = 0x00000000

	legacyBlockSize = 8 << 20 // LEGACY_BLOCKSIZE
	nbBuffsets      = 4       // NB_BUFFSETS

	minFrameHeaderSize = 7  // magic(4)+flg+bd+hc: the smallest frame header
	maxFrameHeaderSize = 19 // magic(4)+flg+bd+content_size(8)+dict_id(4)+hc
)

// BlockMode selects whether successive blocks in a frame may reference each
// other's data (§3.3).
type BlockMode int

const (
	BlockLinked BlockMode = iota
	BlockIndependent
)

// BlockMaxID selects the frame's maximum block size, encoded in the BD
// byte's bits 4..6 (§6.1).
type BlockMaxID int

const (
	BlockMax64KB  BlockMaxID = 4
	BlockMax256KB BlockMaxID = 5
	BlockMax1MB   BlockMaxID = 6
	BlockMax4MB   BlockMaxID = 7
)

// Size returns the maximum number of source bytes in one block for this id.
func (id BlockMaxID) Size() int {
	switch id {
	case BlockMax64KB:
		return 64 << 10
	case BlockMax256KB:
		return 256 << 10
	case BlockMax1MB:
		return 1 << 20
	case BlockMax4MB:
		return 4 << 20
	default:
		return 4 << 20
	}
}

// Preferences configures frame encoding (§3.3 / §4.7).
type Preferences struct {
	BlockMaxID        BlockMaxID
	BlockMode         BlockMode
	BlockChecksum     bool
	ContentChecksum   bool
	ContentSize       uint64 // written to the header only when HasContentSize is set
	HasContentSize    bool
	DictID            uint32
	HasDictID         bool
	CompressionLevel  int // BlockIndependent: 0 = fast path, >0 selects CompressBlockHC; BlockLinked always uses the fast streaming compressor
	AutoFlush         bool
}

// DefaultPreferences matches the reference library's defaults: linked
// 4 MiB blocks, no checksums, fast compression.
func DefaultPreferences() Preferences {
	return Preferences{
		BlockMaxID: BlockMax4MB,
		BlockMode:  BlockLinked,
	}
}

// FrameInfo is the parsed frame header, as returned by GetFrameInfo without
// consuming block payloads (§4.8 get_frame_info).
type FrameInfo struct {
	BlockMaxID      BlockMaxID
	BlockMode       BlockMode
	BlockChecksum   bool
	ContentChecksum bool
	ContentSize     uint64
	HasContentSize  bool
	DictID          uint32
	HasDictID       bool
}

// DecompressOptions configures frame decoding (§4.8).
type DecompressOptions struct {
	// SkipChecksum disables (or downgrades to validated-but-ignored, per
	// the implementation note in §4.8) block/content checksum enforcement.
	// Sticky once set on a Reader until a full Reset.
	SkipChecksum bool
	// Dict is an external dictionary applied as if by decompress_using_dict.
	Dict []byte
}

var (
	errReservedFlagSet    = errors.New("lz4: reserved flag set in frame header")
	errHeaderVersionWrong = errors.New("lz4: unsupported frame header version")
	errFrameTypeUnknown   = errors.New("lz4: unrecognised stream magic number")
)
