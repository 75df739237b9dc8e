package dsp

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestHammingWindow(t *testing.T) {
	w := HammingWindow(400)
	if len(w) != 400 {
		t.Fatalf("expected 400, got %d", len(w))
	}
	// Endpoints ~0.08, center ~1.0
	if math.Abs(w[0]-0.08) > 0.01 {
		t.Errorf("w[0] = %f, want ~0.08", w[0])
	}
	if math.Abs(w[199]-1.0) > 0.02 {
		t.Errorf("w[199] = %f, want ~1.0", w[199])
	}
}

func TestFFTSineBin(t *testing.T) {
	// A pure sine aligned to bin 8 of a 256-point FFT should peak there.
	n := 256
	re := make([]float64, n)
	im := make([]float64, n)
	for i := range re {
		re[i] = math.Sin(2 * math.Pi * 8 * float64(i) / float64(n))
	}
	FFT(re, im)

	peak, peakBin := 0.0, 0
	for i := 0; i < n/2; i++ {
		mag := math.Hypot(re[i], im[i])
		if mag > peak {
			peak, peakBin = mag, i
		}
	}
	if peakBin != 8 {
		t.Errorf("peak at bin %d, want 8", peakBin)
	}
	// Energy of a unit sine over n samples concentrates n/2 in the bin
	if math.Abs(peak-float64(n)/2) > 1e-6 {
		t.Errorf("peak magnitude = %f, want %f", peak, float64(n)/2)
	}
}

func TestMelConversionRoundTrip(t *testing.T) {
	mel := HzToMel(1000)
	if math.Abs(mel-1000.45) > 1.0 {
		t.Errorf("HzToMel(1000) = %f, want ~1000.45", mel)
	}
	hz := MelToHz(mel)
	if math.Abs(hz-1000) > 0.1 {
		t.Errorf("MelToHz(HzToMel(1000)) = %f, want 1000", hz)
	}
}

func TestMelFilterBankShape(t *testing.T) {
	bank := MelFilterBank(40, 2048, 22050, 0, 11025)
	if len(bank) != 40 {
		t.Fatalf("expected 40 filters, got %d", len(bank))
	}
	halfFFT := 2048/2 + 1
	for i, f := range bank {
		if len(f) != halfFFT {
			t.Fatalf("filter %d: expected %d bins, got %d", i, halfFFT, len(f))
		}
		hasNonZero := false
		for _, v := range f {
			if v > 0 {
				hasNonZero = true
				break
			}
		}
		if !hasNonZero {
			t.Errorf("filter %d is all zeros", i)
		}
	}
}

func TestDCT2FirstCoeff(t *testing.T) {
	// DCT-II of a constant signal has all energy in coefficient 0.
	in := []float64{3, 3, 3, 3}
	out := DCT2(in, 4)
	if math.Abs(out[0]-6.0) > 1e-9 { // 3*4*sqrt(1/4)
		t.Errorf("out[0] = %f, want 6.0", out[0])
	}
	for k := 1; k < 4; k++ {
		if math.Abs(out[k]) > 1e-9 {
			t.Errorf("out[%d] = %f, want 0", k, out[k])
		}
	}
}

func TestAutocorrelationLagZeroIsEnergy(t *testing.T) {
	x := []float64{1, -2, 3}
	r := Autocorrelation(x, 2)
	if math.Abs(r[0]-14) > 1e-12 {
		t.Errorf("r[0] = %f, want 14", r[0])
	}
	if math.Abs(r[1]-(-8)) > 1e-12 {
		t.Errorf("r[1] = %f, want -8", r[1])
	}
}

func TestLPCRecoverAR1(t *testing.T) {
	// Synthesize x[n] = 0.9*x[n-1] + noise-free impulse decay; LPC order 1
	// should recover a[1] ~= -0.9.
	n := 512
	x := make([]float64, n)
	x[0] = 1
	for i := 1; i < n; i++ {
		x[i] = 0.9 * x[i-1]
	}
	a := LPC(x, 1)
	if a == nil {
		t.Fatal("LPC returned nil")
	}
	if math.Abs(a[1]-(-0.9)) > 0.01 {
		t.Errorf("a[1] = %f, want ~-0.9", a[1])
	}
}

func TestPolyRootsQuadratic(t *testing.T) {
	// x^2 - 3x + 2 = (x-1)(x-2)
	roots := PolyRoots([]float64{2, -3, 1})
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	found1, found2 := false, false
	for _, r := range roots {
		if cmplx.Abs(r-complex(1, 0)) < 1e-6 {
			found1 = true
		}
		if cmplx.Abs(r-complex(2, 0)) < 1e-6 {
			found2 = true
		}
	}
	if !found1 || !found2 {
		t.Errorf("roots = %v, want 1 and 2", roots)
	}
}

func TestRMS(t *testing.T) {
	if got := RMS([]float64{3, 4, 3, 4}); math.Abs(got-math.Sqrt(12.5)) > 1e-12 {
		t.Errorf("RMS = %f", got)
	}
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %f, want 0", got)
	}
}
