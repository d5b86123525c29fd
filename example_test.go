// Copyright (c) Dave Boutcher. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package atomic_test

import (
	"encoding/binary"
	"fmt"
	"sync"
	"unsafe"

	"code.hybscloud.com/iox"

	"github.com/daveboutcher/atomic"
)

func ExampleQueue() {
	pool := atomic.NewPool(8, 8)
	dummy, _ := pool.Get()
	q := atomic.NewQueue(dummy, pool.Put)

	for i := 1; i <= 3; i++ {
		el, _ := pool.Get()
		binary.LittleEndian.PutUint64(pool.Payload(el), uint64(i))
		q.Enqueue(el)
	}

	for {
		el, err := q.Dequeue()
		if err != nil {
			break
		}
		fmt.Println(binary.LittleEndian.Uint64(pool.Payload(el)))
		q.Release(el)
	}
	q.Free()

	// Output:
	// 1
	// 2
	// 3
}

func ExampleQueue_EnqueueMulti() {
	pool := atomic.NewPool(8, 8)
	dummy, _ := pool.Get()
	q := atomic.NewQueue(dummy, pool.Put)

	// Build a private chain, then insert it as one linearizable step.
	var els [3]*atomic.Element
	for i := range els {
		els[i], _ = pool.Get()
		binary.LittleEndian.PutUint64(pool.Payload(els[i]), uint64(i+1))
	}
	els[0].Link(els[1])
	els[1].Link(els[2])
	els[2].Link(nil)

	fmt.Println("queued:", q.EnqueueMulti(els[0]))

	for {
		el, err := q.Dequeue()
		if err != nil {
			break
		}
		fmt.Println(binary.LittleEndian.Uint64(pool.Payload(el)))
		q.Release(el)
	}
	q.Free()

	// Output:
	// queued: 3
	// 1
	// 2
	// 3
}

// A consumer that wants to block drives its own backoff loop around the
// non-blocking Dequeue.
func ExampleQueue_blocking() {
	pool := atomic.NewPool(64, 8)
	dummy, _ := pool.Get()
	q := atomic.NewQueue(dummy, pool.Put)

	const total = 1000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		backoff := iox.Backoff{}
		for i := 0; i < total; i++ {
			el, err := pool.Get()
			for err != nil {
				backoff.Wait()
				el, err = pool.Get()
			}
			backoff.Reset()
			q.Enqueue(el)
		}
	}()

	received := 0
	backoff := iox.Backoff{}
	for received < total {
		el, err := q.Dequeue()
		if err != nil {
			backoff.Wait()
			continue
		}
		backoff.Reset()
		received++
		q.Release(el)
	}
	wg.Wait()

	fmt.Println("received", received)

	// Output:
	// received 1000
}

func ExampleStack() {
	type task struct {
		link atomic.StackElement
		name string
	}

	tasks := []task{{name: "first"}, {name: "second"}, {name: "third"}}

	s := atomic.NewStack()
	for i := range tasks {
		s.Push(&tasks[i].link)
	}

	for {
		se, err := s.Pop()
		if err != nil {
			break
		}
		fmt.Println((*task)(unsafe.Pointer(se)).name)
	}

	// Output:
	// third
	// second
	// first
}
