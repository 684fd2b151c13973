// SPDX-License-Identifier: MIT

package xxhash32

import (
	"bytes"
	"testing"
)

func TestSum32EmptyInput(t *testing.T) {
	// Reference value for XXH32("", seed=0): a widely published test vector.
	const want = 0x02cc5d05
	if got := Sum32(0, nil); got != want {
		t.Fatalf("Sum32(0, nil) = %#x, want %#x", got, want)
	}
}

func TestSum32MatchesIncremental(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789abcdef"), 100)

	oneShot := Sum32(1234, data)

	var s State
	s.Reset(1234)
	for i := 0; i < len(data); i += 7 {
		end := i + 7
		if end > len(data) {
			end = len(data)
		}
		s.Write(data[i:end])
	}
	incremental := s.Sum32()

	if oneShot != incremental {
		t.Fatalf("one-shot %#x != incremental %#x", oneShot, incremental)
	}
}

func TestSum32DiffersOnMutation(t *testing.T) {
	a := []byte("the quick brown fox")
	b := []byte("the quick brown fog")

	if Sum32(0, a) == Sum32(0, b) {
		t.Fatalf("expected differing hashes for differing inputs")
	}
}
