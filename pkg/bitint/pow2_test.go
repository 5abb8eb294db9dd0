// SPDX-License-Identifier: MIT
package bitint

import (
	"fmt"
	"testing"
)

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{-1, 1},
		{0, 1},
		{1, 1},
		{3, 4},
		{100, 128},
		{512, 512},
		{513, 1024},
		{4095, 4096},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.size), func(t *testing.T) {
			if got := NextPowerOfTwo(tt.size); got != tt.want {
				t.Errorf("NextPowerOfTwo(%d) = %d, want %d", tt.size, got, tt.want)
			}
		})
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		n    int
		want bool
	}{
		{-4, false},
		{0, false},
		{1, true},
		{96, false},
		{2048, true},
		{2049, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			if got := IsPowerOfTwo(tt.n); got != tt.want {
				t.Errorf("IsPowerOfTwo(%d) = %t, want %t", tt.n, got, tt.want)
			}
		})
	}
}

// Every result must itself pass IsPowerOfTwo.
func TestNextPowerOfTwoRoundTrip(t *testing.T) {
	for size := range 5000 {
		if p := NextPowerOfTwo(size); !IsPowerOfTwo(p) || p < size {
			t.Fatalf("NextPowerOfTwo(%d) = %d", size, p)
		}
	}
}

func BenchmarkNextPowerOfTwo(b *testing.B) {
	size := 0
	for b.Loop() {
		NextPowerOfTwo(size & 0x1fff)
		size++
	}
}
