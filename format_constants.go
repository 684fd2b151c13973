// SPDX-License-Identifier: MIT

package lz4

// LZ4 block format constants: token layout, length thresholds, and the
// skip-trigger used by the fast parser. Mirrors the role of the teacher's
// format_constants.go (LZO1X marker/offset bounds) for the LZ4 token format.
const (
	// minMatch is the shortest match the format can represent (match_length
	// nibble stores length-4).
	minMatch = 4

	// mfLimit is the distance from the input end within which the compressor
	// must not attempt a new match; the last mfLimit bytes are always
	// literals so a final literal run of at least 5 bytes can be guaranteed.
	mfLimit = 12

	// lastLiterals is the minimum trailing literal-only run length the
	// format reserves at the very end of a block.
	lastLiterals = 5

	// skipTrigger shifts the miss-streak counter when computing how many
	// input bytes to skip after a failed hash lookup (LZ4_SKIP_TRIGGER).
	skipTrigger = 6

	// maxInputSize is the largest single block input this implementation
	// accepts (~0x7E000000, matching the reference implementation's bound).
	maxInputSize = 0x7E000000

	// maxDistance is the largest representable match offset (2 bytes LE).
	maxDistance = 65535

	// wordLog/tableType hashing parameters (§4.1).
	hash4Log = 16 // default log for the 4-byte hash, selects table width below
)

// tableType selects the physical representation of the position hash table
// (§3.1). Go slices cannot hold raw source pointers the way the C reference
// does, so the three types differ here only in the reset and overflow policy
// prepareTable applies, not in representation.
type tableType int

const (
	tableByPtr tableType = iota // single-shot, <=64KiB input
	tableByU16                  // streaming, <=64KiB window
	tableByU32                  // streaming or larger input
)

// dictMode selects which of the four decompressor code paths to run (§4.5).
// The compressors do not use it.
type dictMode int

const (
	noDict dictMode = iota
	withPrefix64k
	usingExtDict
	doubleDict
)

// dictIssue flags a streaming compression call whose total history is
// smaller than 64 KiB, disabling some short-offset optimisations.
type dictIssue int

const (
	noDictIssue dictIssue = iota
	dictSmall
)

// limitMode controls how the fast/HC compressors react to a destination
// buffer that might be too small (§4.3).
type limitMode int

const (
	notLimited limitMode = iota
	limitedOutput
	fillOutput
)

// acceleration bounds (§4.3).
const (
	minAcceleration = 1
	maxAcceleration = 65537
)

// windowSize64K is the size of the rolling history window maintained by the
// streaming block codec and by the frame decoder's dictionary buffer.
const windowSize64K = 64 * 1024

// renormaliseAt is the current_offset threshold (§3.1 invariants) above
// which a block state's tables are renormalised.
const renormaliseAt = 1 << 30 // 1 GiB
