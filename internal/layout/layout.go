// Package layout moves samples between signal buffers and the float32 host
// buffers of the engine. Host buffers are channel major: channel c occupies
// [c*size, (c+1)*size).
package layout

import (
	"pipelined.dev/signal"
)

// ReadChannelMajor fills dst from src. Samples missing in src are zeroed.
func ReadChannelMajor(dst signal.Float64, src []float32) {
	size := dst.Size()
	for c := range dst {
		for i := range dst[c] {
			if pos := c*size + i; pos < len(src) {
				dst[c][i] = float64(src[pos])
			} else {
				dst[c][i] = 0
			}
		}
	}
}

// WriteChannelMajor copies src into dst.
func WriteChannelMajor(dst []float32, src signal.Float64) {
	size := src.Size()
	for c := range src {
		for i := range src[c] {
			if pos := c*size + i; pos < len(dst) {
				dst[pos] = float32(src[c][i])
			}
		}
	}
}

// Interleave converts a channel-major buffer of numChannels into an
// interleaved one.
func Interleave(dst, src []float32, numChannels int) {
	if numChannels == 0 {
		return
	}
	size := len(src) / numChannels
	for c := 0; c < numChannels; c++ {
		for i := 0; i < size; i++ {
			dst[i*numChannels+c] = src[c*size+i]
		}
	}
}

// Zero silences every channel of s.
func Zero(s signal.Float64) {
	for c := range s {
		for i := range s[c] {
			s[c][i] = 0
		}
	}
}

// AsInts converts src into interleaved integers of bitDepth, clipping
// samples to [-1, 1]. dst is reused when it is large enough.
func AsInts(dst []int, src signal.Float64, bitDepth signal.BitDepth) []int {
	numChannels := src.NumChannels()
	n := src.Size() * numChannels
	if cap(dst) < n {
		dst = make([]int, n)
	}
	dst = dst[:n]
	scale := float64(int64(1)<<(uint(bitDepth)-1) - 1)
	for c := range src {
		for i, v := range src[c] {
			switch {
			case v > 1:
				v = 1
			case v < -1:
				v = -1
			}
			dst[i*numChannels+c] = int(v * scale)
		}
	}
	return dst
}
