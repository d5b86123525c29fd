// Copyright (c) Dave Boutcher. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package atomic provides an intrusive lock-free FIFO queue and a companion
// lock-free LIFO stack, both built on a double-wide (128-bit) counted
// compare-and-swap.
//
// The queue supports any number of concurrent producers and consumers. It is
// based on the non-blocking queue described in "Simple, Fast, and Practical
// Non-Blocking and Blocking Concurrent Queue Algorithms" by Maged Michael and
// Michael Scott (PODC 1996), extended with a two-party reclamation handshake
// so an element can be handed to the consumer before its storage is recycled.
//
// # Intrusive elements
//
// The queue does not allocate: callers supply the storage and embed an
// [Element] header as the first field of their message struct. Allocation on
// the hot path would defeat the progress guarantee, so the design hands raw
// element addresses through the queue and recycles them through a release
// callback.
//
//	type msg struct {
//	    el      atomic.Element
//	    payload int64
//	    _       [40]byte // keep the struct size a multiple of 16
//	}
//
// Elements and both container roots must be 16-byte aligned: the double-wide
// CAS is undefined on misaligned cells, so every entry point checks and
// panics rather than corrupting the queue. Heap allocations whose size is a
// multiple of 16 bytes (and at least 32) are 16-byte aligned; [Pool] lays
// slots out correctly for you.
//
// # Element lifecycle
//
// An element is initialised once with [Element.Init], enqueued, dequeued,
// and finally released by the user with [Queue.Release]. The release
// callback installed at queue construction runs exactly once per element,
// and only after both the dequeuer has advanced past the element and the
// user has called Release on it — the two may happen in either order.
//
// The callback must recycle the memory, not free it: the algorithm
// deliberately prefetches the next link of an element that may already have
// been released, relying on a later CAS to reject the stale read. Keeping
// released elements in a pool makes that read harmless. [Pool] is the
// package's supported recycling substrate; its Put method is a valid
// release callback.
//
// # Basic usage
//
//	pool := atomic.NewPool(512, 48)
//	dummy, _ := pool.Get()
//	q := atomic.NewQueue(dummy, pool.Put)
//
//	// Producer
//	el, err := pool.Get()
//	if err == nil {
//	    binary.LittleEndian.PutUint64(pool.Payload(el), seq)
//	    q.Enqueue(el)
//	}
//
//	// Consumer
//	el, err := q.Dequeue()
//	if err == nil {
//	    handle(pool.Payload(el))
//	    q.Release(el)
//	}
//
// Dequeue on an empty queue returns [ErrWouldBlock] immediately; there is no
// internal blocking, no mutex, and no condition variable anywhere in the
// package. Callers wanting blocking semantics drive their own loop:
//
//	backoff := iox.Backoff{}
//	for {
//	    el, err := q.Dequeue()
//	    if err != nil {
//	        backoff.Wait()
//	        continue
//	    }
//	    backoff.Reset()
//	    process(el)
//	    q.Release(el)
//	}
//
// # Chained enqueue
//
// A producer holding several elements can link them privately with
// [Element.Link] and insert the whole null-terminated chain as one
// linearizable operation with [Queue.EnqueueMulti]. Consumers see the chain
// members in link order.
//
// # Accounting
//
// [Queue.Queued] returns the difference between the tail and head counters:
// the live length once traffic is quiescent, momentarily low while a
// producer's tail swing lags its completed link. [Queue.Empty] reads the head's next
// link without re-validating the head, so both are advisory. The queue is
// unbounded; a capacity policy, if wanted, is the caller's yield loop around
// Queued (see the stress tests).
//
// # Ordering guarantees
//
// Each enqueue and dequeue linearizes at its successful CAS. If one enqueue
// linearizes before another, no dequeuer observes them in the opposite
// order. There is no real-time ordering between racing producers beyond
// whose CAS lands first.
//
// # The stack
//
// [Stack] is a simpler peer on the same primitive: a single counted head
// cell, plain next links in [StackElement], push and pop as counted CAS
// retry loops. It backs [Pool]'s free list and is exported for the same
// kind of intrusive use.
//
// # Cross-process use
//
// Both containers work between processes when the root and all elements
// live in shared memory and each process installs its own release callback
// over that memory. Nothing in the package keeps process-local state besides
// the callback.
//
// # Race detection
//
// Go's race detector tracks explicit synchronization primitives but cannot
// observe happens-before established through atomic orderings on separate
// cells, which is exactly how this package synchronizes. The concurrent
// stress tests are skipped under the detector (see RaceEnabled); correctness
// of the algorithm is argued through the counted-CAS invariants and
// exercised by the non-race stress fixtures.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic cells with
// explicit memory ordering (including the 128-bit counted cells),
// [code.hybscloud.com/spin] for CPU pause in retry loops, and
// [code.hybscloud.com/iox] for semantic errors.
package atomic
