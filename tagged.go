// Copyright (c) Dave Boutcher. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package atomic

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// taggedPtr is a pointer/counter pair updated as a single 128-bit unit.
//
// Entry format: [lo=pointer | hi=counter]
//
// Every successful mutation advances the counter, so a retried observer can
// never mistake an old state for a later identical-pointer state (the ABA
// problem). Equality compares both halves. The cell must be 16-byte aligned
// for the double-wide compare-and-swap.
type taggedPtr struct {
	cell atomix.Uint128
}

// load returns a snapshot of both halves with acquire ordering.
func (tp *taggedPtr) load() (ptr uintptr, ctr uint64) {
	lo, hi := tp.cell.LoadAcquire()
	return uintptr(lo), hi
}

// store writes both halves with relaxed ordering. Only valid while the cell
// has a single owner: init, teardown, and pre-enqueue chain building.
func (tp *taggedPtr) store(ptr uintptr, ctr uint64) {
	tp.cell.StoreRelaxed(uint64(ptr), ctr)
}

// cas replaces the cell with (newPtr, oldCtr+inc) iff it still equals
// (oldPtr, oldCtr). inc must be positive so the counter moves monotonically.
// A successful cas publishes all prior writes to any thread that observes
// the new cell.
func (tp *taggedPtr) cas(oldPtr uintptr, oldCtr uint64, newPtr uintptr, inc uint64) bool {
	if inc == 0 {
		panic("atomic: tagged cas increment must be positive")
	}
	return tp.cell.CompareAndSwapAcqRel(uint64(oldPtr), oldCtr, uint64(newPtr), oldCtr+inc)
}

// checkAlign panics unless p is aligned for the double-wide CAS.
// Misalignment would corrupt the algorithm's invariants, so it terminates
// rather than propagating an error.
func checkAlign(p unsafe.Pointer, what string) {
	if uintptr(p)&15 != 0 {
		panic("atomic: " + what + " must be 16-byte aligned")
	}
}
