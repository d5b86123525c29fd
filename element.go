// Copyright (c) Dave Boutcher. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package atomic

import (
	"unsafe"

	"code.hybscloud.com/spin"
)

// releasedBit is the reclamation handshake bit in the counter half of an
// element's next cell. Bits 0-62 remain an ABA stamp for the null-pointer
// state (see Queue.EnqueueMulti).
const releasedBit uint64 = 1 << 63

// elementSize is the size of the intrusive header.
const elementSize = unsafe.Sizeof(Element{})

// Element is the intrusive header of everything that travels through a
// Queue. Embed it as the first field of the payload struct and keep the
// whole struct 16-byte aligned (heap allocations whose size is a multiple
// of 16 satisfy this; Pool does it for you).
//
// The header stays in use until the queue's release callback runs: users
// must not touch it even after Dequeue has returned the element.
type Element struct {
	next taggedPtr
}

// Init prepares the reference-management state of an element.
// Call once per element before its first enqueue; a recycled element is
// re-initialised by whoever hands it out again (Pool does).
func (el *Element) Init() {
	el.next.store(0, 0)
}

// Link sets el's successor for a chained enqueue. Chains are built while
// the elements are still private to the producer and must be terminated
// with Link(nil).
func (el *Element) Link(next *Element) {
	el.next.store(elPtr(next), 0)
}

// toggleRelease flips the handshake bit and reports whether the other
// party had already arrived. Exactly one of the two toggles on a dequeued
// element observes true; that caller runs the release callback.
//
// The pointer half is carried through unchanged, so a concurrent helper
// reading the cell still sees a consistent link.
func (el *Element) toggleRelease() bool {
	sw := spin.Wait{}
	for {
		ptr, ctr := el.next.load()
		if el.next.cell.CompareAndSwapAcqRel(uint64(ptr), ctr, uint64(ptr), ctr^releasedBit) {
			return ctr&releasedBit != 0
		}
		sw.Once()
	}
}

func elPtr(el *Element) uintptr {
	return uintptr(unsafe.Pointer(el))
}

func elFrom(p uintptr) *Element {
	return *(**Element)(unsafe.Pointer(&p))
}
