// Copyright (c) Dave Boutcher. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package atomic

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// StackElement is the intrusive link of everything that travels through a
// Stack. Embed it anywhere in the payload struct; stack entries carry no
// counter of their own and need no particular alignment — the ABA guard
// lives entirely on the stack head.
type StackElement struct {
	next atomix.Uintptr
}

// Stack is a lock-free LIFO on a single counted head cell.
//
// Push and pop read the head, prepare a replacement, and retry a counted
// CAS until it lands. A concurrent pop-then-push of the same address bumps
// the head counter, so a stale CAS fails instead of succeeding on recycled
// state.
//
// The root must be 16-byte aligned; NewStack allocates one, Init exists for
// caller-placed roots.
type Stack struct {
	head taggedPtr
}

// NewStack returns an initialised empty stack.
func NewStack() *Stack {
	s := &Stack{}
	s.Init()
	return s
}

// Init prepares a caller-placed root.
func (s *Stack) Init() {
	checkAlign(unsafe.Pointer(s), "stack root")
	s.head.store(0, 0)
}

// Push places e on top of the stack.
func (s *Stack) Push(e *StackElement) {
	if e == nil {
		panic("atomic: push of nil element")
	}
	sw := spin.Wait{}
	for {
		headPtr, headCtr := s.head.load()
		if headPtr == sePtr(e) {
			panic("atomic: push of element already on the stack")
		}
		e.next.Store(headPtr)
		if s.head.cas(headPtr, headCtr, sePtr(e), 1) {
			return
		}
		sw.Once()
	}
}

// Pop removes the most recently pushed element.
// Returns (nil, ErrWouldBlock) when the stack is empty.
func (s *Stack) Pop() (*StackElement, error) {
	sw := spin.Wait{}
	for {
		headPtr, headCtr := s.head.load()
		if headPtr == 0 {
			return nil, ErrWouldBlock
		}

		// May read from an element another thread popped in the meantime;
		// the counted CAS below rejects the stale snapshot.
		next := seFrom(headPtr).next.Load()

		if s.head.cas(headPtr, headCtr, next, 1) {
			return seFrom(headPtr), nil
		}
		sw.Once()
	}
}

// Empty reports whether the stack was empty at the moment of the read.
// Advisory.
func (s *Stack) Empty() bool {
	headPtr, _ := s.head.load()
	return headPtr == 0
}

func sePtr(e *StackElement) uintptr {
	return uintptr(unsafe.Pointer(e))
}

func seFrom(p uintptr) *StackElement {
	return *(**StackElement)(unsafe.Pointer(&p))
}
