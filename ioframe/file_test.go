// SPDX-License-Identifier: MIT

package ioframe

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-lz4/lz4"
)

func TestCompressPathDecompressPathRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	mid := filepath.Join(dir, "mid.lz4")
	out := filepath.Join(dir, "out.txt")

	data := bytes.Repeat([]byte("round trip through the filesystem "), 500)
	if err := os.WriteFile(src, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	copts := CompressOptions{Prefs: lz4.DefaultPreferences()}
	if err := CompressPath(src, mid, copts, FileOptions{}); err != nil {
		t.Fatalf("CompressPath: %v", err)
	}

	dopts := DecompressFileOptions{}
	if err := DecompressPath(mid, out, dopts, FileOptions{}); err != nil {
		t.Fatalf("DecompressPath: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round-trip mismatch: got %d bytes, want %d", len(got), len(data))
	}
}

func TestCompressPathRefusesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.lz4")

	if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile src: %v", err)
	}
	if err := os.WriteFile(dst, []byte("preexisting"), 0o644); err != nil {
		t.Fatalf("WriteFile dst: %v", err)
	}

	err := CompressPath(src, dst, CompressOptions{Prefs: lz4.DefaultPreferences()}, FileOptions{})
	if err != ErrAlreadyExists {
		t.Fatalf("CompressPath: got %v, want ErrAlreadyExists", err)
	}
}

func TestCompressPathOverwriteAndRemoveSrc(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.lz4")

	if err := os.WriteFile(src, []byte("fresh content"), 0o644); err != nil {
		t.Fatalf("WriteFile src: %v", err)
	}
	if err := os.WriteFile(dst, []byte("stale"), 0o644); err != nil {
		t.Fatalf("WriteFile dst: %v", err)
	}

	fopts := FileOptions{Overwrite: true, RemoveSrcFile: true}
	if err := CompressPath(src, dst, CompressOptions{Prefs: lz4.DefaultPreferences()}, fopts); err != nil {
		t.Fatalf("CompressPath: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source to be removed, stat err = %v", err)
	}
}
