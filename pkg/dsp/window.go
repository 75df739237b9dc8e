package dsp

import "math"

// HammingWindow generates a Hamming window of the given length.
func HammingWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// ApplyWindow multiplies frame by window element-wise into dst.
// dst, frame and window must have the same length.
func ApplyWindow(dst, frame, window []float64) {
	for i := range frame {
		dst[i] = frame[i] * window[i]
	}
}
