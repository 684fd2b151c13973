// SPDX-License-Identifier: MIT

package ioframe

import (
	"errors"
	"os"
)

// ErrAlreadyExists is returned by CompressPath/DecompressPath when the
// destination exists, Overwrite is false (§4.9.5).
var ErrAlreadyExists = errors.New("ioframe: destination already exists")

// FileOptions governs the source/destination file handling wrapped around
// the streaming pipelines (§4.9.5).
type FileOptions struct {
	Overwrite     bool
	RemoveSrcFile bool
}

// openDestination opens dst for writing, honoring the overwrite policy.
func openDestination(dst string, opts FileOptions) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if opts.Overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(dst, flags, 0o644)
	if errors.Is(err, os.ErrExist) {
		return nil, ErrAlreadyExists
	}
	return f, err
}

// CompressPath compresses src into dst (§4.9.1, §4.9.5): the source is only
// unlinked, when RemoveSrcFile is set, after dst has been closed
// successfully.
func CompressPath(src, dst string, copts CompressOptions, fopts FileOptions) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openDestination(dst, fopts)
	if err != nil {
		return err
	}

	if err := CompressFile(in, out, copts); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if fopts.RemoveSrcFile {
		return os.Remove(src)
	}
	return nil
}

// DecompressPath decompresses src into dst, mirroring CompressPath's
// removal/overwrite semantics.
func DecompressPath(src, dst string, dopts DecompressFileOptions, fopts FileOptions) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openDestination(dst, fopts)
	if err != nil {
		return err
	}

	if err := DecompressFile(in, out, dopts); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if fopts.RemoveSrcFile {
		return os.Remove(src)
	}
	return nil
}
