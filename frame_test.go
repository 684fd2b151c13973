// SPDX-License-Identifier: MIT

package lz4

import (
	"bytes"
	"errors"
	"testing"
)

func TestCompressFrameRoundTrip(t *testing.T) {
	prefsCases := []Preferences{
		DefaultPreferences(),
		{BlockMaxID: BlockMax64KB, BlockMode: BlockLinked, ContentChecksum: true},
		{BlockMaxID: BlockMax64KB, BlockMode: BlockIndependent, BlockChecksum: true, ContentChecksum: true},
		{BlockMaxID: BlockMax4MB, BlockMode: BlockLinked, CompressionLevel: 9},
	}

	for _, in := range testInputSet() {
		for i, prefs := range prefsCases {
			t.Run(in.name, func(t *testing.T) {
				framed, err := CompressFrame(in.data, prefs)
				if err != nil {
					t.Fatalf("case %d: CompressFrame: %v", i, err)
				}
				out, err := DecompressFrame(framed, DecompressOptions{})
				if err != nil {
					t.Fatalf("case %d: DecompressFrame: %v", i, err)
				}
				if !bytes.Equal(out, in.data) {
					t.Fatalf("case %d: round-trip mismatch: got %d bytes, want %d", i, len(out), len(in.data))
				}
			})
		}
	}
}

func TestCompressFrameHighlyRepetitive(t *testing.T) {
	data := bytes.Repeat([]byte("LZ4-compression-is-fast "), 10000)
	prefs := DefaultPreferences()
	prefs.ContentChecksum = true

	framed, err := CompressFrame(data, prefs)
	if err != nil {
		t.Fatalf("CompressFrame: %v", err)
	}
	if len(framed) >= len(data) {
		t.Fatalf("expected compression to shrink a highly repetitive payload: framed=%d data=%d", len(framed), len(data))
	}

	out, err := DecompressFrame(framed, DecompressOptions{})
	if err != nil {
		t.Fatalf("DecompressFrame: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("round-trip mismatch")
	}
}

func TestCompressFrameMultiChunkStreaming(t *testing.T) {
	prefs := Preferences{BlockMaxID: BlockMax64KB, BlockMode: BlockLinked}
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf, prefs)

	chunks := []string{"first chunk ", "second chunk ", "third chunk, a little longer this time "}
	var want bytes.Buffer
	for _, c := range chunks {
		if _, err := fw.Write([]byte(c)); err != nil {
			t.Fatalf("Write: %v", err)
		}
		want.WriteString(c)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out, err := DecompressFrame(buf.Bytes(), DecompressOptions{})
	if err != nil {
		t.Fatalf("DecompressFrame: %v", err)
	}
	if !bytes.Equal(out, want.Bytes()) {
		t.Fatalf("streaming round-trip mismatch: got %q want %q", out, want.Bytes())
	}
}

func TestGetFrameInfo(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.HasContentSize = true
	prefs.ContentSize = 42
	prefs.ContentChecksum = true

	framed, err := CompressFrame([]byte("0123456789012345678901234567890123456789ab"), prefs)
	if err != nil {
		t.Fatalf("CompressFrame: %v", err)
	}

	info, consumed, err := GetFrameInfo(framed)
	if err != nil {
		t.Fatalf("GetFrameInfo: %v", err)
	}
	if consumed <= 0 || consumed > len(framed) {
		t.Fatalf("GetFrameInfo consumed out of range: %d", consumed)
	}
	if !info.HasContentSize || info.ContentSize != 42 {
		t.Fatalf("GetFrameInfo content size mismatch: %+v", info)
	}
	if !info.ContentChecksum {
		t.Fatalf("GetFrameInfo expected content checksum flag set")
	}
}

func TestDecompressFrameContentChecksumCorruption(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.ContentChecksum = true

	framed, err := CompressFrame([]byte("some payload bytes for checksum testing"), prefs)
	if err != nil {
		t.Fatalf("CompressFrame: %v", err)
	}

	corrupted := append([]byte(nil), framed...)
	corrupted[len(corrupted)-1] ^= 0xFF

	if _, err := DecompressFrame(corrupted, DecompressOptions{}); err == nil {
		t.Fatalf("expected content checksum failure")
	}
}

func TestDecompressFrameSkipChecksum(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.ContentChecksum = true

	framed, err := CompressFrame([]byte("some payload bytes for checksum testing"), prefs)
	if err != nil {
		t.Fatalf("CompressFrame: %v", err)
	}
	corrupted := append([]byte(nil), framed...)
	corrupted[len(corrupted)-1] ^= 0xFF

	if _, err := DecompressFrame(corrupted, DecompressOptions{SkipChecksum: true}); err != nil {
		t.Fatalf("expected SkipChecksum to bypass the corrupted checksum: %v", err)
	}
}

func TestGetFrameInfoRejectsUnknownMagic(t *testing.T) {
	_, _, err := GetFrameInfo([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	var fe *FrameError
	if !errors.As(err, &fe) || fe.Code != FrameTypeUnknown {
		t.Fatalf("GetFrameInfo: got %v, want FrameTypeUnknown", err)
	}
}

func TestGetFrameInfoRejectsTruncatedHeader(t *testing.T) {
	_, _, err := GetFrameInfo([]byte{0x04, 0x22, 0x4D, 0x18})
	var fe *FrameError
	if !errors.As(err, &fe) || fe.Code != FrameHeaderIncomplete {
		t.Fatalf("GetFrameInfo: got %v, want FrameHeaderIncomplete", err)
	}
}

func TestGetFrameInfoRejectsBadHeaderChecksum(t *testing.T) {
	framed, err := CompressFrame([]byte("header checksum corruption test"), DefaultPreferences())
	if err != nil {
		t.Fatalf("CompressFrame: %v", err)
	}
	// Byte 6 is the header checksum for DefaultPreferences (magic[4] + flg + bd).
	corrupted := append([]byte(nil), framed...)
	corrupted[6] ^= 0xFF

	_, _, err = GetFrameInfo(corrupted)
	var fe *FrameError
	if !errors.As(err, &fe) || fe.Code != HeaderChecksumInvalid {
		t.Fatalf("GetFrameInfo: got %v, want HeaderChecksumInvalid", err)
	}
}
