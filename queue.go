// Copyright (c) Dave Boutcher. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package atomic

import (
	"unsafe"

	"code.hybscloud.com/spin"
)

// ReleaseFunc recycles an element once both the queue and the user are done
// with it. It runs exactly once per element that entered the queue.
//
// The callback must keep the memory readable for the life of the queue
// (recycle into a pool, do not return pages to the OS): the algorithm may
// still read the next cell of an element whose callback has already run.
// Pool.Put satisfies the contract.
type ReleaseFunc func(*Element)

// Queue is a lock-free multi-producer multi-consumer FIFO.
//
// The implementation follows the non-blocking queue of Michael and Scott
// ("Simple, Fast, and Practical Non-Blocking and Blocking Concurrent Queue
// Algorithms", PODC 1996), with every shared pointer carried in a counted
// 128-bit cell to defeat ABA, and a two-party handshake deciding when a
// dequeued element is recycled.
//
// One dummy element is always present at the head. As elements are dequeued,
// each dequeued element becomes the new dummy and the old dummy is released.
//
// Producers write tail, consumers write head, and the release metadata is
// read-mostly; the three live on separate cache lines.
//
// The queue is unbounded: Enqueue never fails. Dequeue returns ErrWouldBlock
// when the queue is empty; callers wanting blocking semantics drive their own
// wait loop (see the package examples).
//
// The root must be 16-byte aligned. NewQueue allocates a properly aligned
// root; Init exists for roots the caller places themselves, for example in
// shared memory. A queue in shared memory works across processes as long as
// the elements live there too and each process installs its own callback.
type Queue struct {
	release ReleaseFunc
	_       [64 - 8]byte
	head    taggedPtr
	_       [64 - 16]byte
	tail    taggedPtr
	_       [64 - 16]byte
}

// NewQueue returns an initialised queue. The dummy element is consumed by
// the queue and released through the callback when the first real element
// is dequeued (or at Free).
func NewQueue(dummy *Element, release ReleaseFunc) *Queue {
	q := &Queue{}
	q.Init(dummy, release)
	return q
}

// Init prepares a caller-placed root. The dummy never reaches a consumer,
// so its handshake is pre-armed: the dequeuer's toggle alone releases it.
func (q *Queue) Init(dummy *Element, release ReleaseFunc) {
	checkAlign(unsafe.Pointer(q), "queue root")
	checkAlign(unsafe.Pointer(dummy), "element")
	if release == nil {
		panic("atomic: queue release callback must not be nil")
	}

	dummy.next.store(0, releasedBit)

	q.head.store(elPtr(dummy), 0)
	q.tail.store(elPtr(dummy), 0)
	q.release = release
}

// Enqueue links el at the tail and returns the queue length as reported by
// Queued.
// The element must be 16-byte aligned and must not be awaiting release.
func (q *Queue) Enqueue(el *Element) int64 {
	if el == nil {
		panic("atomic: enqueue of nil element")
	}
	checkAlign(unsafe.Pointer(el), "element")
	// Null the link, keeping the counter half so a pending handshake bit is
	// still caught below; the counter is re-stamped from the tail before the
	// element is published.
	_, ctr := el.next.load()
	el.next.store(0, ctr)
	return q.EnqueueMulti(el)
}

// EnqueueMulti links a null-terminated chain of elements (built with Link)
// at the tail as one linearizable insertion, and returns the queue length
// as reported by Queued. Every element of the chain must be 16-byte aligned and must
// not be awaiting release.
func (q *Queue) EnqueueMulti(first *Element) int64 {
	if first == nil {
		panic("atomic: enqueue of nil element")
	}

	// Walk to the last element of the chain, validating as we go. The chain
	// is still private to the caller here.
	last := first
	count := uint64(1)
	for {
		checkAlign(unsafe.Pointer(last), "element")
		ptr, ctr := last.next.load()
		if ctr&releasedBit != 0 {
			panic("atomic: enqueue of element awaiting release")
		}
		if ptr == 0 {
			break
		}
		if ptr == elPtr(last) {
			panic("atomic: element chain links to itself")
		}
		count++
		last = elFrom(ptr)
	}

	var tailPtr uintptr
	var tailCtr uint64
	sw := spin.Wait{}
	for {
		tailPtr, tailCtr = q.tail.load()
		if tailPtr == elPtr(first) {
			panic("atomic: element is already queued")
		}
		nextPtr, nextCtr := elFrom(tailPtr).next.load()

		// Tail moved between the two reads: the snapshot is stale.
		if p, c := q.tail.load(); p != tailPtr || c != tailCtr {
			continue
		}

		if nextPtr == 0 {
			// Really at the tail. Stamp the chain's terminal counter with
			// the tail counter first: a caller-initialised (null, 0) cell
			// is too likely to recur later, which would hide an ABA race
			// from other producers.
			last.next.store(0, tailCtr)

			// Swing the tail element's next from null to the chain head.
			if elFrom(tailPtr).next.cas(0, nextCtr, elPtr(first), 1) {
				break
			}
		} else {
			// The tail was lagging behind a completed link. Help it
			// forward and retry; success or failure does not matter.
			q.tail.cas(tailPtr, tailCtr, nextPtr, 1)
		}
		sw.Once()
	}

	// Swing the tail to the chain's last element. If this fails, another
	// thread already advanced the tail on our behalf.
	q.tail.cas(tailPtr, tailCtr, elPtr(last), count)

	return q.Queued()
}

// Dequeue removes the oldest element from the queue.
// Returns (nil, ErrWouldBlock) when the queue is empty.
//
// The returned element's payload is the caller's to read; the caller must
// hand it back with Release exactly once when done. The first 16 bytes (the
// header) stay owned by the queue until the release callback runs.
func (q *Queue) Dequeue() (*Element, error) {
	sw := spin.Wait{}
	for {
		headPtr, headCtr := q.head.load()
		tailPtr, tailCtr := q.tail.load()

		// This may read from an element that was already recycled by
		// another consumer's handshake. The re-read of head below and the
		// CAS reject any stale snapshot; the release callback keeps the
		// memory readable, so the load itself is harmless.
		nextPtr, _ := elFrom(headPtr).next.load()

		// Head moved between the reads: the snapshot is stale.
		if p, c := q.head.load(); p != headPtr || c != headCtr {
			continue
		}

		if nextPtr == 0 || headPtr == tailPtr {
			if nextPtr == 0 {
				return nil, ErrWouldBlock
			}
			// Head caught up with a lagging tail. Help the tail forward
			// before trying again.
			q.tail.cas(tailPtr, tailCtr, nextPtr, 1)
		} else if q.head.cas(headPtr, headCtr, nextPtr, 1) {
			// The old dummy is behind the head now; run the dequeuer's
			// half of its handshake. The dequeued element takes over
			// the dummy role.
			q.Release(elFrom(headPtr))
			return elFrom(nextPtr), nil
		}
		sw.Once()
	}
}

// Release declares the caller done with a dequeued element.
//
// Reclamation is a two-party rendezvous on the element's handshake bit:
// the dequeuer that advanced past the element toggles once, the user
// toggles once, and whichever observes the other's toggle already present
// runs the release callback. Call exactly once per dequeued element; the
// two calls may come in either order.
func (q *Queue) Release(el *Element) {
	if el.toggleRelease() {
		q.release(el)
	}
}

// Empty reports whether the queue had no elements queued at some recent
// moment. Advisory: the head is not re-validated after the read, so the
// answer may be stale by the time it returns.
func (q *Queue) Empty() bool {
	headPtr, _ := q.head.load()
	nextPtr, _ := elFrom(headPtr).next.load()
	return nextPtr == 0
}

// Queued returns the difference between successful tail and head counter
// updates: the number of queued elements once producers and consumers are
// quiescent. While they are active the value is advisory and can read low:
// a completed link is counted only once the tail has swung past it, and the
// head is read after the tail.
func (q *Queue) Queued() int64 {
	_, tailCtr := q.tail.load()
	_, headCtr := q.head.load()
	return int64(tailCtr - headCtr)
}

// Free drains the queue, releasing every remaining element including the
// dummy through the callback, then clears the root.
//
// No producer or consumer may be active: teardown under contention is
// explicitly unsupported, quiesce traffic first (the tests use sentinel
// shutdown messages).
func (q *Queue) Free() {
	for {
		headPtr, headCtr := q.head.load()
		if headPtr == 0 {
			break
		}
		el := elFrom(headPtr)
		nextPtr, _ := el.next.load()
		if q.head.cas(headPtr, headCtr, nextPtr, 1) {
			q.release(el)
		}
	}

	q.head.store(0, 0)
	q.tail.store(0, 0)
	q.release = nil
}
