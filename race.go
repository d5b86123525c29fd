// Copyright (c) Dave Boutcher. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package atomic

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent stress tests: the algorithm establishes
// happens-before through atomic orderings on separate cells, which the
// detector cannot observe and reports as false positives.
const RaceEnabled = true
