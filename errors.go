// Copyright (c) Dave Boutcher. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package atomic

import "code.hybscloud.com/iox"

// ErrWouldBlock indicates the operation found nothing to do.
//
// For Queue.Dequeue and Stack.Pop: the container is empty.
// For Pool.Get: every slot is handed out.
//
// ErrWouldBlock is a control flow signal, not a failure. The queue is
// unbounded, so there is no "full" counterpart: Enqueue always succeeds.
// Callers wanting blocking semantics retry with a backoff or yield rather
// than propagating the error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    el, err := q.Dequeue()
//	    if err == nil {
//	        backoff.Reset()
//	        consume(el)
//	        continue
//	    }
//	    if atomic.IsWouldBlock(err) {
//	        backoff.Wait()
//	        continue
//	    }
//	    return err // Unexpected error
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil or ErrWouldBlock. Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
