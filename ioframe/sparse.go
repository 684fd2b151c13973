// SPDX-License-Identifier: MIT

package ioframe

import "io"

// sparseForceFlush is the pending-skip threshold past which a seek is
// forced rather than accumulated further (§4.9.4: "Whenever pending skip
// exceeds 1 GiB, force-flush one 1 GiB seek to avoid wrapping 32-bit
// file-offset APIs"). Go's io.Seeker takes an int64 so nothing actually
// wraps here, but the periodic flush is kept for behavioural parity with
// the reference implementation's observable seek pattern.
const sparseForceFlush = 1 << 30

// SparseWriter writes to an underlying io.WriteSeeker, turning runs of
// all-zero 8-byte words into hole-punching seeks instead of materialised
// zero bytes (§4.9.4). Callers must call Close to finalize the stream's
// logical length.
type SparseWriter struct {
	w           io.WriteSeeker
	pendingSkip int64
	carry       []byte // 0-7 bytes not yet long enough to form a full word
	closed      bool
}

// NewSparseWriter wraps w.
func NewSparseWriter(w io.WriteSeeker) *SparseWriter {
	return &SparseWriter{w: w}
}

// Write implements io.Writer.
func (s *SparseWriter) Write(p []byte) (int, error) {
	total := len(p)
	data := p
	if len(s.carry) > 0 {
		data = append(append([]byte(nil), s.carry...), p...)
		s.carry = nil
	}

	i := 0
	for i+8 <= len(data) {
		word := data[i : i+8]
		if isZeroWord(word) {
			s.pendingSkip += 8
			if s.pendingSkip >= sparseForceFlush {
				if err := s.seekForward(sparseForceFlush); err != nil {
					return 0, err
				}
				s.pendingSkip -= sparseForceFlush
			}
		} else {
			if err := s.flushSkip(); err != nil {
				return 0, err
			}
			if _, err := s.w.Write(word); err != nil {
				return 0, err
			}
		}
		i += 8
	}

	if i < len(data) {
		s.carry = append(s.carry, data[i:]...)
	}
	return total, nil
}

// Close flushes any trailing sub-word carry and materialises the file's
// final logical length (§4.9.4 sparse_end), without writing the trailing
// hole itself.
func (s *SparseWriter) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if len(s.carry) > 0 {
		if isZeroWord(s.carry) {
			s.pendingSkip += int64(len(s.carry))
		} else {
			if err := s.flushSkip(); err != nil {
				return err
			}
			if _, err := s.w.Write(s.carry); err != nil {
				return err
			}
		}
		s.carry = nil
	}
	return s.sparseEnd()
}

func (s *SparseWriter) flushSkip() error {
	if s.pendingSkip == 0 {
		return nil
	}
	if err := s.seekForward(s.pendingSkip); err != nil {
		return err
	}
	s.pendingSkip = 0
	return nil
}

// sparseEnd seeks forward by pendingSkip-1 and writes one zero byte, so the
// file's apparent length is correct without allocating the hole.
func (s *SparseWriter) sparseEnd() error {
	if s.pendingSkip == 0 {
		return nil
	}
	if _, err := s.w.Seek(s.pendingSkip-1, io.SeekCurrent); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte{0}); err != nil {
		return err
	}
	s.pendingSkip = 0
	return nil
}

func (s *SparseWriter) seekForward(n int64) error {
	_, err := s.w.Seek(n, io.SeekCurrent)
	return err
}

func isZeroWord(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
