// SPDX-License-Identifier: MIT

package lz4

import (
	"bytes"
	"fmt"
	"testing"
)

func testInputSet() []struct {
	name string
	data []byte
} {
	return []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "single-literal", data: []byte{0xAB}},
		{name: "five-literals", data: []byte("hello")},
		{name: "short-text", data: []byte("hello world, lz4 block test")},
		{name: "repeated-pattern", data: bytes.Repeat([]byte("abc123"), 2000)},
		{name: "long-run", data: bytes.Repeat([]byte{0xFF}, 12000)},
		{name: "byte-cycle", data: bytes.Repeat([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 1200)},
		{name: "short-overlap", data: []byte("abababababababababab")},
	}
}

func TestCompressBlockRoundTrip(t *testing.T) {
	for _, in := range testInputSet() {
		t.Run(in.name, func(t *testing.T) {
			cmp, err := CompressBlock(in.data, nil, nil)
			if err != nil {
				t.Fatalf("CompressBlock: %v", err)
			}

			out := make([]byte, len(in.data))
			n, err := DecompressBlock(cmp, out)
			if err != nil {
				t.Fatalf("DecompressBlock: %v", err)
			}
			if !bytes.Equal(out[:n], in.data) {
				t.Fatalf("round-trip mismatch: got %d bytes, want %d", n, len(in.data))
			}
		})
	}
}

func TestCompressBlockHCRoundTrip(t *testing.T) {
	levels := []int{0, 1, 4, 9, 10, 12}
	for _, in := range testInputSet() {
		for _, level := range levels {
			name := fmt.Sprintf("%s/level-%d", in.name, level)
			t.Run(name, func(t *testing.T) {
				cmp, err := CompressBlockHC(in.data, nil, level)
				if err != nil {
					t.Fatalf("CompressBlockHC: %v", err)
				}

				out := make([]byte, len(in.data))
				n, err := DecompressBlock(cmp, out)
				if err != nil {
					t.Fatalf("DecompressBlock: %v", err)
				}
				if !bytes.Equal(out[:n], in.data) {
					t.Fatalf("round-trip mismatch: got %d bytes, want %d", n, len(in.data))
				}
			})
		}
	}
}

func TestCompressBlockBound(t *testing.T) {
	if got := CompressBlockBound(0); got != 16 {
		t.Fatalf("CompressBlockBound(0) = %d, want 16", got)
	}
	if got := CompressBlockBound(1000); got < 1000 {
		t.Fatalf("CompressBlockBound(1000) = %d, want >= 1000", got)
	}
}

func TestDecompressBlockPartial(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 200)
	cmp, err := CompressBlock(data, nil, nil)
	if err != nil {
		t.Fatalf("CompressBlock: %v", err)
	}

	target := 100
	out := make([]byte, len(data))
	n, err := DecompressBlockPartial(cmp, out, target)
	if err != nil {
		t.Fatalf("DecompressBlockPartial: %v", err)
	}
	if n < target {
		t.Fatalf("partial decompression under-produced: got %d, want >= %d", n, target)
	}
	if !bytes.Equal(out[:n], data[:n]) {
		t.Fatalf("partial decompression content mismatch")
	}
}

func TestCompressBlockLimited(t *testing.T) {
	data := bytes.Repeat([]byte("compress within a fixed capacity buffer "), 200)

	roomy := make([]byte, 0, CompressBlockBound(len(data)))
	out, ok, err := CompressBlockLimited(data, roomy, nil)
	if err != nil {
		t.Fatalf("CompressBlockLimited: %v", err)
	}
	if !ok {
		t.Fatalf("expected success with a correctly sized buffer")
	}
	decoded := make([]byte, len(data))
	n, err := DecompressBlock(out, decoded)
	if err != nil || !bytes.Equal(decoded[:n], data) {
		t.Fatalf("round-trip mismatch after CompressBlockLimited: n=%d err=%v", n, err)
	}

	tooSmall := make([]byte, 0, 4)
	_, ok, err = CompressBlockLimited(data, tooSmall, nil)
	if err != nil {
		t.Fatalf("CompressBlockLimited: %v", err)
	}
	if ok {
		t.Fatalf("expected failure when dst capacity is too small")
	}
}

func TestDecompressBlockMalformed(t *testing.T) {
	_, err := DecompressBlock([]byte{0xF0}, make([]byte, 16))
	if err == nil {
		t.Fatalf("expected error decoding truncated block")
	}
}
