// SPDX-License-Identifier: MIT

package lz4

import "testing"

func TestBlockStatePrepareTableClearsOnTypeChange(t *testing.T) {
	s := newBlockState()
	s.table[5] = 42
	s.tableType = tableByPtr

	s.prepareTable(1024, tableByU32)

	if s.table[5] != 0 {
		t.Fatalf("expected table to be cleared on type change, got %d", s.table[5])
	}
	if s.tableType != tableByU32 {
		t.Fatalf("tableType not updated: got %v", s.tableType)
	}
	if s.currentOffset != windowSize64K {
		t.Fatalf("currentOffset = %d, want %d", s.currentOffset, windowSize64K)
	}
}

func TestBlockStatePrepareTableAdvancesOffsetWithoutClear(t *testing.T) {
	s := newBlockState()
	s.tableType = tableByU32
	s.prepareTable(1024, tableByU32) // first call: establishes currentOffset
	s.table[9] = 77

	before := s.currentOffset
	s.prepareTable(1024, tableByU32)

	if s.table[9] != 77 {
		t.Fatalf("expected table entries to survive a same-type prepare, got %d", s.table[9])
	}
	if s.currentOffset != before+windowSize64K {
		t.Fatalf("currentOffset = %d, want %d", s.currentOffset, before+windowSize64K)
	}
}

func TestBlockStateRenormaliseAtThreshold(t *testing.T) {
	s := newBlockState()
	s.ensureChain()
	s.table[3] = 99
	s.chain[0] = 5
	s.lowLimit = windowSize64K
	s.currentOffset = s.lowLimit + renormaliseAt + 1

	s.renormalise()

	if s.table[3] != 0 {
		t.Fatalf("expected table to be cleared past the renormalisation threshold")
	}
	if s.chain[0] != 0xFFFF {
		t.Fatalf("expected chain to be reset past the renormalisation threshold")
	}
	if s.currentOffset != windowSize64K {
		t.Fatalf("currentOffset after renormalise = %d, want %d", s.currentOffset, windowSize64K)
	}
}

func TestBlockStateRenormaliseNoopBelowThreshold(t *testing.T) {
	s := newBlockState()
	s.table[3] = 99
	s.lowLimit = windowSize64K
	s.currentOffset = s.lowLimit + 1024

	s.renormalise()

	if s.table[3] != 99 {
		t.Fatalf("renormalise fired below threshold, table entry was cleared")
	}
}
