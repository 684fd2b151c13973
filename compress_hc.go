// SPDX-License-Identifier: MIT

package lz4

import (
	"encoding/binary"
	"math/bits"
)

// hcLevelParams is the per-level search budget table (§4.4), grounded on the
// teacher's fixedLevels table in level_params.go: each level sets the maximum
// chain-search depth and whether the price-guided parser runs.
type hcLevelParams struct {
	nbSearches int
	fullSearch bool // levels 10-12 run the price-guided parser below
}

var hcLevels = [13]hcLevelParams{
	0:  {nbSearches: 2},
	1:  {nbSearches: 2},
	2:  {nbSearches: 2},
	3:  {nbSearches: 4},
	4:  {nbSearches: 8},
	5:  {nbSearches: 16},
	6:  {nbSearches: 32},
	7:  {nbSearches: 64},
	8:  {nbSearches: 128},
	9:  {nbSearches: 256},
	10: {nbSearches: 96, fullSearch: true},
	11: {nbSearches: 512, fullSearch: true},
	12: {nbSearches: 16384, fullSearch: true},
}

// DefaultHCLevel is the recommended compromise level for CompressBlockHC,
// matching the reference library's LZ4HC_CLEVEL_DEFAULT.
const DefaultHCLevel = 9

// HcFavor selects whether the HC parser optimises for smaller output
// (CompressionRatio, the default) or for a decompressor-friendly stream that
// shortens long matches (DecompressionSpeed), mirroring the reference
// library's HCfavor_e.
type HcFavor int

const (
	HcFavorCompressionRatio HcFavor = iota
	HcFavorDecompressionSpeed
)

// CompressBlockHC compresses src with the chain-based multi-probe parser
// (§4.4), at the given level (1-12; values <= 0 select DefaultHCLevel and
// values above 12 clamp to 12). It is
// grounded on the teacher's compress_1x_999.go hash-chain walk, adapted from
// LZO1X's 3-byte/2-byte match tables to LZ4's single 4-byte minimum match.
func CompressBlockHC(src, dst []byte, level int) ([]byte, error) {
	return CompressBlockHCFavor(src, dst, level, HcFavorCompressionRatio)
}

// CompressBlockHCFavor is CompressBlockHC with an explicit HcFavor; favoring
// decompression speed shortens matches in the (18,36] length range to 18
// bytes, trading ratio for a decoder-friendly stream (§4.4).
func CompressBlockHCFavor(src, dst []byte, level int, favor HcFavor) ([]byte, error) {
	if len(src) >= maxInputSize {
		return nil, ErrSrcTooLarge
	}
	// §4.4: levels <= 0 clamp to the default (9), not to 0 — 0 means "let
	// the compressor pick," the way the reference library treats a
	// non-positive compressionLevel as LZ4HC_CLEVEL_DEFAULT.
	if level <= 0 {
		level = DefaultHCLevel
	}
	if level > 12 {
		level = 12
	}
	state := newBlockState()
	state.ensureChain()
	state.compressionLevel = level
	state.favorDecSpeed = favor == HcFavorDecompressionSpeed
	state.prepareTable(len(src), tableByU32)
	if dst == nil {
		dst = make([]byte, 0, CompressBlockBound(len(src)))
	}
	return compressBlockHC(src, dst[:0], state, level), nil
}

func compressBlockHC(src, dst []byte, state *blockState, level int) []byte {
	sn := len(src) - mfLimit
	if sn <= 0 {
		return encodeLastLiterals(dst, src)
	}
	params := hcLevels[level]

	var si, anchor int
	for si < sn {
		matchPos, matchLen, ok := findMatch(src, si, sn, state, params)
		if !ok {
			state.chainInsert(src, si)
			si++
			continue
		}
		matchLen = applyFavorDecSpeed(state, matchLen)

		matchStart := si
		// Backward extension, same as the fast parser.
		for matchStart > anchor && matchPos > 0 && src[matchStart-1] == src[matchPos-1] {
			matchStart--
			matchPos--
			matchLen++
		}

		if params.fullSearch {
			matchStart, matchPos, matchLen = hcOptimalParse(src, sn, anchor, matchStart, matchPos, matchLen, state, params)
		}

		recordRepeat(state, src, matchPos, matchLen)

		lit := src[anchor:matchStart]
		offset := matchStart - matchPos
		next := matchStart + matchLen

		// Index every position consumed by the match so later searches can
		// find it as a reference (§4.4 chain maintenance).
		for p := si; p < next && p < sn; p++ {
			state.chainInsert(src, p)
		}

		dst, _ = encodeSequence(dst, lit, offset, matchLen, notLimited, 0)
		anchor = next
		si = next
	}

	return encodeLastLiterals(dst, src[anchor:])
}

// findMatch looks for a candidate at si, first via the cheap pattern-repeat
// test (the opportunistic fast path LZ4HC_Insert takes before walking the
// hash chain) and falling back to the bounded chain search. The repeat test
// catches long RLE-style runs a depth-limited chain search can miss.
func findMatch(src []byte, si, sn int, state *blockState, params hcLevelParams) (matchPos, matchLen int, ok bool) {
	if pos, ln, hit := tryRepeatMatch(state, src, si, sn); hit {
		matchPos, matchLen, ok = pos, ln, true
	}
	chainPos, chainLen, chainOK := hcFindBestMatch(src, si, sn, state, params)
	if chainOK && chainLen > matchLen {
		matchPos, matchLen, ok = chainPos, chainLen, true
	}
	return matchPos, matchLen, ok
}

// hcFindBestMatch walks the hash chain at position si, probing up to
// nbSearches candidates and keeping the longest valid match (§4.4 step 2).
func hcFindBestMatch(src []byte, si, sn int, state *blockState, params hcLevelParams) (matchPos, matchLen int, ok bool) {
	if si+minMatch > len(src) {
		return 0, 0, false
	}
	h := hash4(src, si, hcHashTableLog)
	ref := int(state.table[h]) - 1
	searches := params.nbSearches
	limit := sn - si

	for ref >= 0 && searches > 0 {
		if ref < si && si-ref <= maxDistance && src[ref] == src[si] {
			n := matchCount(src[si:], src[ref:], limit)
			if n >= minMatch && n > matchLen {
				matchLen = n
				matchPos = ref
				ok = true
				if n >= sn-si {
					break
				}
			}
		}
		searches--
		prev := state.chainPrev(ref)
		if prev < 0 || prev >= ref {
			break
		}
		ref = prev
	}
	return matchPos, matchLen, ok
}

// applyFavorDecSpeed implements the HcFavorDecompressionSpeed shortening
// rule: a match longer than 18 bytes but no longer than 36 is clamped to 18,
// trading ratio for a decompressor-friendly stream (§4.4 HCfavor_e).
func applyFavorDecSpeed(state *blockState, matchLen int) int {
	if state.favorDecSpeed && matchLen > 18 && matchLen <= 36 {
		return 18
	}
	return matchLen
}

// hcOptWindow bounds the forward lookahead used by the price-matrix optimal
// parser (§4.4's "optimal parser", scoped down from the reference's much
// larger lookahead window — see DESIGN.md for the trade-off).
const hcOptWindow = 24

// hcOptMaxLitRun bounds how many consecutive literal bytes the parser will
// consider inserting before a candidate match, keeping the DP's inner loop
// bounded.
const hcOptMaxLitRun = 64

// hcOptimalParse runs a bounded forward price search starting at matchStart
// (which already holds a valid greedy match of matchPos/matchLen): it scores
// every reachable (literal-run, match) combination over a short lookahead
// window using literalPrice/sequencePrice, picks the cheapest path to the
// furthest position it reaches, and commits to that path's first step — the
// same "plan a window, take the first move, replan" strategy the reference
// optimal parser uses, without its much deeper lookahead.
func hcOptimalParse(src []byte, sn, anchor, matchStart, matchPos, matchLen int, state *blockState, params hcLevelParams) (int, int, int) {
	limit := sn - matchStart
	if limit > hcOptWindow {
		limit = hcOptWindow
	}
	if limit <= 0 {
		return matchStart, matchPos, matchLen
	}

	type candidate struct {
		pos int
		len int
		ok  bool
	}
	candidates := make([]candidate, limit)
	candidates[0] = candidate{pos: matchPos, len: matchLen, ok: true}
	for k := 1; k < limit; k++ {
		pos, ln, ok := hcFindBestMatch(src, matchStart+k, sn, state, params)
		if ok {
			ln = applyFavorDecSpeed(state, ln)
		}
		candidates[k] = candidate{pos: pos, len: ln, ok: ok}
	}

	const inf = 1 << 30
	dist := make([]int, limit+1)
	chosenK := make([]int, limit+1)
	boundary := make([]int, limit+1)
	for i := range dist {
		dist[i] = inf
	}
	dist[0] = 0

	for j := 0; j < limit; j++ {
		if dist[j] == inf {
			continue
		}
		for k := j; k < limit && k-j <= hcOptMaxLitRun; k++ {
			c := candidates[k]
			if !c.ok || c.len < minMatch {
				continue
			}
			mlen := c.len
			target := k + mlen
			if target > limit {
				mlen = limit - k
				target = limit
				if mlen < minMatch {
					continue
				}
			}
			price := dist[j] + sequencePrice(k-j, matchStart+k-c.pos, mlen)
			if price < dist[target] {
				dist[target] = price
				chosenK[target] = k
				boundary[target] = j
			}
		}
	}

	best := 0
	for j := 1; j <= limit; j++ {
		if dist[j] < inf && j > best {
			best = j
		}
	}
	if best == 0 {
		return matchStart, matchPos, matchLen
	}

	cur := best
	for boundary[cur] != 0 {
		cur = boundary[cur]
	}
	firstK := chosenK[cur]
	newMatchStart := matchStart + firstK
	newMatchLen := cur - firstK
	newMatchPos := candidates[firstK].pos

	if newMatchStart == matchStart {
		return matchStart, matchPos, newMatchLen
	}
	return newMatchStart, newMatchPos, newMatchLen
}

// literalPrice and sequencePrice implement the §4.4 cost model used to
// compare candidate parses: litLen<15 costs litLen exactly; at and past that
// threshold an extension byte is added every 255 bytes, the same rule the
// token's length nibble uses. A sequence additionally costs its token and
// 2-byte offset; offset does not otherwise affect price; only its presence
// (fixed 2 bytes) does, matching the reference cost model.
func literalPrice(litLen int) int {
	if litLen < 15 {
		return litLen
	}
	return litLen + 1 + (litLen-15)/255
}

func sequencePrice(litLen, offset, matchLen int) int {
	price := literalPrice(litLen) + 1 + 2 // token + 2-byte offset
	ml := matchLen - minMatch
	if ml >= 15 {
		price += 1 + (ml-15)/255
	}
	_ = offset
	return price
}

// chainInsert records position pos in the hash table/chain, delta-linking it
// to whatever previously hashed to the same bucket (§4.4 chain maintenance,
// mirroring the teacher's hcDict insertion in compress_1x_999.go).
func (s *blockState) chainInsert(src []byte, pos int) {
	if pos+minMatch > len(src) {
		return
	}
	h := hash4(src, pos, hcHashTableLog)
	prev := s.table[h]
	s.table[h] = int32(pos + 1)
	if prev > 0 {
		s.chain[uint32(pos)&s.chainMask] = uint16(pos - (int(prev) - 1))
	} else {
		s.chain[uint32(pos)&s.chainMask] = 0xFFFF
	}
}

// chainPrev returns the previous chained position for ref, or -1 once the
// chain is exhausted (delta 0xFFFF is the sentinel).
func (s *blockState) chainPrev(ref int) int {
	delta := s.chain[uint32(ref)&s.chainMask]
	if delta == 0xFFFF || int(delta) > ref {
		return -1
	}
	return ref - int(delta)
}

// repeatState tracks whether the most recently emitted match's tail looked
// like a short repeating pattern, mirroring the reference library's
// repeat_state_e: untested means the next position should be tried against
// repeatPattern, not means the last attempt failed and the fast path is
// skipped until the next match, confirmed means the fast path has paid off
// at least once since the last reset.
type repeatState int

const (
	repeatUntested repeatState = iota
	repeatNot
	repeatConfirmed
)

// rotatePattern implements the reference library's LZ4HC_rotatePattern:
// rotating a 4-byte pattern by rotate bytes (mod 4) finds the byte-aligned
// period a repeating run was built from, used to pick the right
// back-reference offset (1, 2, or 4).
func rotatePattern(rotate int, pattern uint32) uint32 {
	bitsToRotate := uint(rotate&3) * 8
	if bitsToRotate == 0 {
		return pattern
	}
	return bits.RotateLeft32(pattern, int(bitsToRotate))
}

// countPattern implements LZ4HC_countPattern: counts how many bytes
// starting at from (up to to) continue the repeating 4-byte pattern.
func countPattern(src []byte, from, to int, pattern uint32) int {
	n := 0
	for from+4 <= to {
		if binary.LittleEndian.Uint32(src[from:]) != pattern {
			break
		}
		from += 4
		n += 4
	}
	patBytes := [4]byte{byte(pattern), byte(pattern >> 8), byte(pattern >> 16), byte(pattern >> 24)}
	for from < to && src[from] == patBytes[n&3] {
		from++
		n++
	}
	return n
}

// patternPeriod reports the byte period (1, 2, or 4) a 4-byte pattern
// repeats at: an all-equal pattern repeats every byte, a two-byte cycle
// every 2 bytes, otherwise the match can only reuse the full 4-byte period.
func patternPeriod(pattern uint32) int {
	if rotatePattern(1, pattern) == pattern {
		return 1
	}
	if rotatePattern(2, pattern) == pattern {
		return 2
	}
	return 4
}

// tryRepeatMatch implements the opportunistic fast path LZ4HC_Insert takes
// before falling back to the hash chain (§4.4): if the previous match ended
// on a repeating pattern, test whether si continues that same pattern and,
// if so, build a candidate match referencing the periodic back-reference
// directly instead of walking the chain. Like hcFindBestMatch, the returned
// match always starts exactly at si; the shared backward-extension loop in
// compressBlockHC is what may walk matchStart left from there (including,
// naturally, further into the same repeating run) — reverseCountPattern is
// not used here so the two extension mechanisms never fight over matchStart.
func tryRepeatMatch(state *blockState, src []byte, si, sn int) (matchPos, matchLen int, ok bool) {
	if state.repeatState == repeatNot {
		return 0, 0, false
	}
	if si+4 > len(src) {
		return 0, 0, false
	}
	pattern := state.repeatPattern
	if binary.LittleEndian.Uint32(src[si:]) != pattern {
		state.repeatState = repeatNot
		return 0, 0, false
	}

	period := patternPeriod(pattern)
	if si-period < 0 {
		state.repeatState = repeatNot
		return 0, 0, false
	}

	limit := len(src) - si
	if rem := sn - si; rem < limit {
		limit = rem
	}
	fwd := countPattern(src, si, si+limit, pattern)
	if fwd < minMatch {
		state.repeatState = repeatNot
		return 0, 0, false
	}

	state.repeatState = repeatConfirmed
	return si - period, fwd, true
}

// recordRepeat keeps the last 4 bytes of a just-emitted match as the
// candidate pattern and arms the fast path in tryRepeatMatch for the very
// next search position (§4.4); tryRepeatMatch then checks whether the data
// at that position actually continues the pattern.
func recordRepeat(state *blockState, src []byte, matchPos, matchLen int) {
	tailEnd := matchPos + matchLen
	if tailEnd < 4 || tailEnd > len(src) {
		state.repeatState = repeatNot
		return
	}
	state.repeatPattern = binary.LittleEndian.Uint32(src[tailEnd-4 : tailEnd])
	state.repeatState = repeatUntested
}
