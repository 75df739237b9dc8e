package dsp

import (
	"math"
	"math/cmplx"
)

// Autocorrelation computes the autocorrelation of x for lags 0..maxLag
// inclusive. r[0] is the signal energy.
func Autocorrelation(x []float64, maxLag int) []float64 {
	if maxLag >= len(x) {
		maxLag = len(x) - 1
	}
	r := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		sum := 0.0
		for i := 0; i < len(x)-lag; i++ {
			sum += x[i] * x[i+lag]
		}
		r[lag] = sum
	}
	return r
}

// LPC computes linear prediction coefficients of the given order using the
// Levinson-Durbin recursion on the autocorrelation of x. The returned slice
// has order+1 entries with a[0] = 1, matching the convention of an
// all-pole filter A(z) = 1 + a[1]z^-1 + ... + a[p]z^-p.
// Returns nil when the signal has no energy or the recursion breaks down.
func LPC(x []float64, order int) []float64 {
	r := Autocorrelation(x, order)
	if r[0] == 0 {
		return nil
	}

	a := make([]float64, order+1)
	a[0] = 1
	e := r[0]

	for i := 1; i <= order; i++ {
		acc := r[i]
		for j := 1; j < i; j++ {
			acc += a[j] * r[i-j]
		}
		k := -acc / e

		// Update coefficients symmetrically
		half := i / 2
		for j := 1; j <= half; j++ {
			tmp := a[j] + k*a[i-j]
			a[i-j] += k * a[j]
			a[j] = tmp
		}
		a[i] = k

		e *= 1 - k*k
		if e <= 0 {
			return nil
		}
	}
	return a
}

// PolyRoots finds the complex roots of the polynomial
// c[0] + c[1]x + ... + c[n]x^n using the Durand-Kerner iteration.
// Deterministic: fixed initial guesses and iteration count.
func PolyRoots(c []float64) []complex128 {
	// Trim leading zero coefficients of the highest degree
	n := len(c) - 1
	for n > 0 && c[n] == 0 {
		n--
	}
	if n < 1 {
		return nil
	}

	// Normalize to monic
	monic := make([]complex128, n+1)
	lead := complex(c[n], 0)
	for i := 0; i <= n; i++ {
		monic[i] = complex(c[i], 0) / lead
	}

	eval := func(x complex128) complex128 {
		res := monic[n]
		for i := n - 1; i >= 0; i-- {
			res = res*x + monic[i]
		}
		return res
	}

	// Initial guesses spread on a circle, avoiding real axis symmetry traps
	roots := make([]complex128, n)
	seed := complex(0.4, 0.9)
	roots[0] = seed
	for i := 1; i < n; i++ {
		roots[i] = roots[i-1] * seed
	}

	const maxIter = 200
	const tol = 1e-12
	for iter := 0; iter < maxIter; iter++ {
		converged := true
		for i := 0; i < n; i++ {
			num := eval(roots[i])
			den := complex(1, 0)
			for j := 0; j < n; j++ {
				if j != i {
					den *= roots[i] - roots[j]
				}
			}
			if den == 0 {
				continue
			}
			delta := num / den
			roots[i] -= delta
			if cmplx.Abs(delta) > tol {
				converged = false
			}
		}
		if converged {
			break
		}
	}
	return roots
}

// RMS returns the root-mean-square amplitude of x (0 for empty input).
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}
