// Package mixer sums signal blocks. It is used for implicit fan-in of
// signal connections and by objects that mix into shared buffers.
package mixer

import (
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Sum writes the sum of sources into dst. All slices must have the same
// length. With no sources dst is zeroed.
func Sum(dst []float64, sources ...[]float64) {
	if len(sources) == 0 {
		Zero(dst)
		return
	}
	copy(dst, sources[0])
	for _, src := range sources[1:] {
		vecmath.AddBlockInPlace(dst, src)
	}
}

// Add adds src into dst.
func Add(dst, src []float64) {
	vecmath.AddBlockInPlace(dst, src)
}

// Multiply writes the product of a and b into dst.
func Multiply(dst, a, b []float64) {
	vecmath.MulBlock(dst, a, b)
}

// MultiplyInPlace multiplies dst by src.
func MultiplyInPlace(dst, src []float64) {
	vecmath.MulBlockInPlace(dst, src)
}

// Subtract writes a minus b into dst. dst must not alias a or b.
func Subtract(dst, a, b []float64) {
	vecmath.ScaleBlock(dst, b, -1)
	vecmath.AddBlockInPlace(dst, a)
}

// Scale writes src multiplied by gain into dst.
func Scale(dst, src []float64, gain float64) {
	vecmath.ScaleBlock(dst, src, gain)
}

// Zero sets dst to zero.
func Zero(dst []float64) {
	for i := range dst {
		dst[i] = 0
	}
}

// Fill sets every sample of dst to v.
func Fill(dst []float64, v float64) {
	for i := range dst {
		dst[i] = v
	}
}
