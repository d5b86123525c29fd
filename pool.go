// Copyright (c) Dave Boutcher. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package atomic

import "unsafe"

// Pool is a fixed-size arena of queue elements with a lock-free free list.
//
// The queue algorithm may read the header of an element after its release
// callback has run, so element memory must stay readable for the life of
// the queue. Pool satisfies that by construction: slots are recycled
// through the free list, never returned to the allocator.
//
// Put matches ReleaseFunc, so a pool plugs straight into a queue:
//
//	pool := atomic.NewPool(512, 48)
//	dummy, _ := pool.Get()
//	q := atomic.NewQueue(dummy, pool.Put)
//
// A free slot's header doubles as its free-list link; both the queue and
// the free list own the first 16 bytes, the payload bytes are the user's
// whenever the element is outside the queue.
type Pool struct {
	free    Stack
	_       [64 - 16]byte
	arena   []byte
	base    uintptr
	stride  uintptr
	payload int
	count   int
}

// NewPool returns a pool of count elements, each with payload user bytes
// following the header. Slots are spaced so every element is 16-byte
// aligned.
func NewPool(count, payload int) *Pool {
	if count < 1 {
		panic("atomic: pool needs at least one slot")
	}
	if payload < 0 {
		panic("atomic: negative pool payload size")
	}

	stride := (elementSize + uintptr(payload) + 15) &^ 15

	p := &Pool{
		arena:   make([]byte, uintptr(count)*stride+15),
		stride:  stride,
		payload: payload,
		count:   count,
	}
	p.base = (uintptr(unsafe.Pointer(&p.arena[0])) + 15) &^ 15
	p.free.Init()

	for i := count - 1; i >= 0; i-- {
		el := elFrom(p.base + uintptr(i)*stride)
		el.Init()
		p.free.Push((*StackElement)(unsafe.Pointer(el)))
	}

	return p
}

// Get hands out a free element with its header re-initialised.
// Returns (nil, ErrWouldBlock) when every slot is handed out.
func (p *Pool) Get() (*Element, error) {
	se, err := p.free.Pop()
	if err != nil {
		return nil, err
	}
	el := (*Element)(unsafe.Pointer(se))
	el.Init()
	return el, nil
}

// Put returns an element to the pool. Usable directly as a queue's release
// callback.
func (p *Pool) Put(el *Element) {
	if el == nil {
		panic("atomic: put of nil element")
	}
	p.free.Push((*StackElement)(unsafe.Pointer(el)))
}

// Payload returns the user bytes of a pool element.
func (p *Pool) Payload(el *Element) []byte {
	return unsafe.Slice((*byte)(unsafe.Add(unsafe.Pointer(el), elementSize)), p.payload)
}

// Index returns el's slot number within the pool.
func (p *Pool) Index(el *Element) int {
	return int((uintptr(unsafe.Pointer(el)) - p.base) / p.stride)
}

// Cap returns the number of slots in the pool.
func (p *Pool) Cap() int {
	return p.count
}
