// SPDX-License-Identifier: MIT
/*
Package bitint has the power-of-two helpers used to size blocks and FFT
windows.

NextPowerOfTwo subtracts one before taking the bit length so that an exact
power of two maps to itself: bits.Len(7) is 3 and 1<<3 is 8, whereas
bits.Len(8) would give 16.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size, or 1 when size
// is not positive.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
