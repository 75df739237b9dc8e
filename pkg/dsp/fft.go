// Package dsp provides the signal-processing primitives used by the voice
// feature extractor: FFT, windowing, mel filterbank, DCT-II, and linear
// prediction. Everything operates on float64 slices and is deterministic;
// no parallelism, so identical input always yields identical output.
package dsp

import "math"

// FFT performs an in-place radix-2 Cooley-Tukey FFT.
// re and im must have the same power-of-2 length.
func FFT(re, im []float64) {
	n := len(re)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation
	j := 0
	for i := 0; i < n-1; i++ {
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
		k := n >> 1
		for k <= j {
			j -= k
			k >>= 1
		}
		j += k
	}

	// Butterfly stages
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		angle := -2.0 * math.Pi / float64(size)
		wR := math.Cos(angle)
		wI := math.Sin(angle)

		for start := 0; start < n; start += size {
			tR, tI := 1.0, 0.0
			for k := 0; k < half; k++ {
				u := start + k
				v := u + half

				tmpR := tR*re[v] - tI*im[v]
				tmpI := tR*im[v] + tI*re[v]

				re[v] = re[u] - tmpR
				im[v] = im[u] - tmpI
				re[u] += tmpR
				im[u] += tmpI

				tR, tI = tR*wR-tI*wI, tR*wI+tI*wR
			}
		}
	}
}

// NextPow2 returns the smallest power of two >= n (minimum 1).
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// MagnitudeSpectrum computes the one-sided magnitude spectrum of frame.
// The frame is zero-padded to fftSize (a power of two); the returned slice
// has fftSize/2+1 bins.
func MagnitudeSpectrum(frame []float64, fftSize int) []float64 {
	re := make([]float64, fftSize)
	im := make([]float64, fftSize)
	copy(re, frame)
	FFT(re, im)

	half := fftSize/2 + 1
	mag := make([]float64, half)
	for i := 0; i < half; i++ {
		mag[i] = math.Hypot(re[i], im[i])
	}
	return mag
}
