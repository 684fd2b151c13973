// SPDX-License-Identifier: MIT

package ioframe

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/go-lz4/lz4"
)

func TestCompressFileSingleThreaded(t *testing.T) {
	data := bytes.Repeat([]byte("single-threaded file pipeline test data. "), 5000)

	var compressed bytes.Buffer
	opts := CompressOptions{Prefs: lz4.DefaultPreferences()}
	if err := CompressFile(bytes.NewReader(data), &compressed, opts); err != nil {
		t.Fatalf("CompressFile: %v", err)
	}

	var decompressed bytes.Buffer
	if err := DecompressFile(bytes.NewReader(compressed.Bytes()), &decompressed, DecompressFileOptions{}); err != nil {
		t.Fatalf("DecompressFile: %v", err)
	}
	if !bytes.Equal(decompressed.Bytes(), data) {
		t.Fatalf("round-trip mismatch: got %d bytes, want %d", decompressed.Len(), len(data))
	}
}

func TestCompressFileMultiThreaded(t *testing.T) {
	data := bytes.Repeat([]byte("multi-threaded chunked file pipeline test data. "), 200000)

	prefsCases := []lz4.BlockMode{lz4.BlockIndependent, lz4.BlockLinked}
	for _, mode := range prefsCases {
		prefs := lz4.DefaultPreferences()
		prefs.BlockMode = mode
		prefs.ContentChecksum = true

		var compressed bytes.Buffer
		opts := CompressOptions{Prefs: prefs, NBWorkers: 4}
		if err := CompressFile(bytes.NewReader(data), &compressed, opts); err != nil {
			t.Fatalf("mode %v: CompressFile: %v", mode, err)
		}

		var decompressed bytes.Buffer
		if err := DecompressFile(bytes.NewReader(compressed.Bytes()), &decompressed, DecompressFileOptions{}); err != nil {
			t.Fatalf("mode %v: DecompressFile: %v", mode, err)
		}
		if !bytes.Equal(decompressed.Bytes(), data) {
			t.Fatalf("mode %v: round-trip mismatch: got %d bytes, want %d", mode, decompressed.Len(), len(data))
		}
	}
}

func TestDecompressFileSkippableFrame(t *testing.T) {
	var stream bytes.Buffer

	var skipHdr [8]byte
	binary.LittleEndian.PutUint32(skipHdr[0:4], 0x184D2A50)
	binary.LittleEndian.PutUint32(skipHdr[4:8], 6)
	stream.Write(skipHdr[:])
	stream.WriteString("ignore")

	data := []byte("payload after a skippable frame")
	if err := CompressFile(bytes.NewReader(data), &stream, CompressOptions{Prefs: lz4.DefaultPreferences()}); err != nil {
		t.Fatalf("CompressFile: %v", err)
	}

	var out bytes.Buffer
	if err := DecompressFile(bytes.NewReader(stream.Bytes()), &out, DecompressFileOptions{}); err != nil {
		t.Fatalf("DecompressFile: %v", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("skippable-frame prefix was not discarded correctly")
	}
}

func TestDecompressFilePassThrough(t *testing.T) {
	data := []byte("this is not an lz4 stream at all")

	var out bytes.Buffer
	err := DecompressFile(bytes.NewReader(data), &out, DecompressFileOptions{PassThrough: true})
	if err != nil {
		t.Fatalf("DecompressFile: %v", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("pass-through did not preserve byte-identity")
	}
}

func TestDecompressFileRejectsUnknownFormat(t *testing.T) {
	data := []byte("not lz4 and not pass-through enabled")
	err := DecompressFile(bytes.NewReader(data), &bytes.Buffer{}, DecompressFileOptions{})
	if err != ErrUnrecognizedStream {
		t.Fatalf("expected ErrUnrecognizedStream, got %v", err)
	}
}

func TestLegacyRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("legacy format block test data "), 10000)

	var legacyStream bytes.Buffer
	var magic [4]byte
	binary.LittleEndian.PutUint32(magic[:], legacyMagic)
	legacyStream.Write(magic[:])

	for i := 0; i < len(data); i += legacyBlockSize {
		end := i + legacyBlockSize
		if end > len(data) {
			end = len(data)
		}
		block, err := lz4.CompressBlock(data[i:end], nil, nil)
		if err != nil {
			t.Fatalf("CompressBlock: %v", err)
		}
		var sizeBuf [4]byte
		binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(block)))
		legacyStream.Write(sizeBuf[:])
		legacyStream.Write(block)
	}

	var out bytes.Buffer
	if err := DecompressFile(bytes.NewReader(legacyStream.Bytes()), &out, DecompressFileOptions{}); err != nil {
		t.Fatalf("DecompressFile: %v", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("legacy round-trip mismatch: got %d bytes, want %d", out.Len(), len(data))
	}
}

func TestLegacyRoundTripMultiThreaded(t *testing.T) {
	data := bytes.Repeat([]byte("legacy parallel decode test data "), 10000)

	var legacyStream bytes.Buffer
	var magic [4]byte
	binary.LittleEndian.PutUint32(magic[:], legacyMagic)
	legacyStream.Write(magic[:])

	for i := 0; i < len(data); i += legacyBlockSize {
		end := i + legacyBlockSize
		if end > len(data) {
			end = len(data)
		}
		block, err := lz4.CompressBlock(data[i:end], nil, nil)
		if err != nil {
			t.Fatalf("CompressBlock: %v", err)
		}
		var sizeBuf [4]byte
		binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(block)))
		legacyStream.Write(sizeBuf[:])
		legacyStream.Write(block)
	}

	var out bytes.Buffer
	err := DecompressFile(bytes.NewReader(legacyStream.Bytes()), &out, DecompressFileOptions{NBWorkers: 4})
	if err != nil {
		t.Fatalf("DecompressFile: %v", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("legacy parallel round-trip mismatch: got %d bytes, want %d", out.Len(), len(data))
	}
}
