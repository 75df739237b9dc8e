package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/soniva/backend/internal/audio"
	"github.com/soniva/backend/pkg/dsp"
)

// ExtractorConfig controls framing and estimation parameters. The defaults
// are the analysis contract; changing them changes every stored result, so
// they are fixed in one place rather than exposed as env config.
type ExtractorConfig struct {
	WindowSize int // analysis window in samples
	HopSize    int // hop between windows in samples
	FFTSize    int // must be >= WindowSize, power of two
	NumMels    int // mel filters for the cepstrum
	NumMFCC    int // cepstral coefficients kept

	TrimDB     float64 // frames more than this many dB below peak RMS are trimmed
	SilenceRMS float64 // absolute RMS floor for the voicing gate

	MinF0            float64 // pitch search band, Hz
	MaxF0            float64
	VoicingThreshold float64 // normalized autocorrelation peak required for a voiced frame

	LPCOrder     int     // linear-prediction order for formant estimation
	FormantMinHz float64 // plausible formant band
	FormantMaxHz float64

	RolloffPercent float64   // cumulative-energy fraction for spectral rolloff
	ContrastEdges  []float64 // band edges in Hz for spectral contrast
}

// DefaultExtractorConfig returns the fixed analysis parameters:
// 2048/512 framing at 22050 Hz, 13 MFCCs over 40 mel filters, pitch search
// C2..C6, 25 dB activity trim.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		WindowSize:       2048,
		HopSize:          512,
		FFTSize:          2048,
		NumMels:          40,
		NumMFCC:          13,
		TrimDB:           25,
		SilenceRMS:       1e-4,
		MinF0:            65.41,   // C2
		MaxF0:            1046.50, // C6
		VoicingThreshold: 0.30,
		LPCOrder:         12,
		FormantMinHz:     200,
		FormantMaxHz:     5000,
		RolloffPercent:   0.85,
		ContrastEdges:    []float64{200, 400, 800, 1600, 3200, 6400, 11025},
	}
}

// Extractor computes a FeatureVector from a decoded buffer. It holds only
// precomputed constants (window, filterbank) and is safe for concurrent use.
type Extractor struct {
	cfg        ExtractorConfig
	sampleRate int
	window     []float64
	melBank    [][]float64
}

// NewExtractor builds an Extractor for buffers at the given sample rate.
func NewExtractor(sampleRate int, cfg ExtractorConfig) *Extractor {
	return &Extractor{
		cfg:        cfg,
		sampleRate: sampleRate,
		window:     dsp.HammingWindow(cfg.WindowSize),
		melBank:    dsp.MelFilterBank(cfg.NumMels, cfg.FFTSize, sampleRate, 0, float64(sampleRate)/2),
	}
}

// Extract computes the full feature set. Deterministic: identical samples
// always yield bit-identical features. Returns ErrInsufficientSignal when
// the buffer is shorter than one analysis window; in every other case a
// complete FeatureVector is returned, with fields the signal cannot support
// (silent or unvoiced input) explicitly undetermined.
func (e *Extractor) Extract(buf *audio.Buffer) (*FeatureVector, error) {
	if buf.SampleRate != e.sampleRate {
		return nil, fmt.Errorf("buffer rate %d does not match extractor rate %d", buf.SampleRate, e.sampleRate)
	}
	if len(buf.Samples) < e.cfg.WindowSize {
		return nil, fmt.Errorf("%w: %d samples, need %d", ErrInsufficientSignal, len(buf.Samples), e.cfg.WindowSize)
	}

	y := buf.Samples
	yv, voicedRatio := e.trimSilence(y)
	if len(yv) < e.cfg.WindowSize {
		// Too little activity to analyze in isolation; analyze everything.
		yv, voicedRatio = y, 1.0
	}

	fv := &FeatureVector{
		DurationSeconds: float64(len(y)) / float64(e.sampleRate),
		SampleRate:      e.sampleRate,
		VoicedRatio:     voicedRatio,
	}

	e.extractFrames(yv, fv)
	e.extractFormants(yv, fv)
	return fv, nil
}

// trimSilence drops stretches more than TrimDB below the loudest frame,
// keeping the union of sample ranges covered by retained frames.
func (e *Extractor) trimSilence(y []float64) ([]float64, float64) {
	w, hop := e.cfg.WindowSize, e.cfg.HopSize
	numFrames := (len(y)-w)/hop + 1

	rms := make([]float64, numFrames)
	peak := 0.0
	for t := 0; t < numFrames; t++ {
		rms[t] = dsp.RMS(y[t*hop : t*hop+w])
		if rms[t] > peak {
			peak = rms[t]
		}
	}
	if peak == 0 {
		return y, 1.0
	}
	floor := peak * math.Pow(10, -e.cfg.TrimDB/20)

	keep := make([]bool, len(y))
	kept := 0
	for t := 0; t < numFrames; t++ {
		if rms[t] >= floor {
			for i := t * hop; i < t*hop+w; i++ {
				keep[i] = true
			}
			kept++
		}
	}
	if kept == 0 || kept == numFrames {
		return y, 1.0
	}

	out := make([]float64, 0, len(y))
	for i, k := range keep {
		if k {
			out = append(out, y[i])
		}
	}
	return out, float64(len(out)) / float64(len(y))
}

// extractFrames runs the single framing pass that produces every frame-wise
// statistic: pitch contour, cepstrum, spectral shape, ZCR and energy.
func (e *Extractor) extractFrames(y []float64, fv *FeatureVector) {
	cfg := e.cfg
	w, hop := cfg.WindowSize, cfg.HopSize
	numFrames := (len(y)-w)/hop + 1
	halfFFT := cfg.FFTSize/2 + 1
	binHz := float64(e.sampleRate) / float64(cfg.FFTSize)

	minLag := int(float64(e.sampleRate) / cfg.MaxF0)
	maxLag := int(float64(e.sampleRate) / cfg.MinF0)
	if minLag < 2 {
		minLag = 2
	}
	if maxLag >= w {
		maxLag = w - 1
	}

	var (
		f0s, hnrs             []float64
		zcrs, rmss            []float64
		centroids, bandwidths []float64
		rolloffs, flatnesses  []float64
		contrastSums          = make([]float64, len(cfg.ContrastEdges)-1)
		contrastFrames        int
		mfccSum, mfccSqSum    = make([]float64, cfg.NumMFCC), make([]float64, cfg.NumMFCC)
		windowed              = make([]float64, w)
		frame                 []float64
	)

	for t := 0; t < numFrames; t++ {
		frame = y[t*hop : t*hop+w]

		// Time-domain statistics on the raw frame.
		frameRMS := dsp.RMS(frame)
		rmss = append(rmss, frameRMS)
		zcrs = append(zcrs, zeroCrossingRate(frame))

		// Pitch and harmonicity from the autocorrelation.
		if f0, hnr, ok := e.pitchFrame(frame, frameRMS, minLag, maxLag); ok {
			f0s = append(f0s, f0)
			hnrs = append(hnrs, hnr)
		}

		// Spectral statistics on the windowed frame.
		dsp.ApplyWindow(windowed, frame, e.window)
		mag := dsp.MagnitudeSpectrum(windowed, cfg.FFTSize)

		mel := e.melLogEnergies(mag)
		coeffs := dsp.DCT2(mel, cfg.NumMFCC)
		for i, c := range coeffs {
			mfccSum[i] += c
			mfccSqSum[i] += c * c
		}

		total := 0.0
		for _, m := range mag {
			total += m
		}
		if total <= 0 {
			continue // digitally silent frame has no spectral shape
		}

		centroid := 0.0
		for k := 0; k < halfFFT; k++ {
			centroid += float64(k) * binHz * mag[k]
		}
		centroid /= total
		centroids = append(centroids, centroid)

		bw := 0.0
		for k := 0; k < halfFFT; k++ {
			d := float64(k)*binHz - centroid
			bw += mag[k] * d * d
		}
		bandwidths = append(bandwidths, math.Sqrt(bw/total))

		rolloffs = append(rolloffs, rolloffHz(mag, binHz, cfg.RolloffPercent))
		flatnesses = append(flatnesses, flatness(mag))

		if c := contrastBands(mag, binHz, cfg.ContrastEdges); c != nil {
			for i, v := range c {
				contrastSums[i] += v
			}
			contrastFrames++
		}
	}

	n := float64(numFrames)
	fv.ZCRMean, fv.ZCRStd = meanStd(zcrs)
	fv.RMSMean, fv.RMSStd = meanStd(rmss)
	fv.RMSRange = sliceRange(rmss)

	fv.MFCCMean = make([]float64, cfg.NumMFCC)
	fv.MFCCStd = make([]float64, cfg.NumMFCC)
	for i := 0; i < cfg.NumMFCC; i++ {
		m := mfccSum[i] / n
		fv.MFCCMean[i] = m
		fv.MFCCStd[i] = math.Sqrt(math.Max(0, mfccSqSum[i]/n-m*m))
	}

	fv.SpectralCentroid = detMean(centroids)
	fv.SpectralBandwidth = detMean(bandwidths)
	fv.SpectralRolloff = detMean(rolloffs)
	fv.SpectralFlatness = detMean(flatnesses)
	if contrastFrames > 0 {
		fv.SpectralContrast = make([]float64, len(contrastSums))
		for i, s := range contrastSums {
			fv.SpectralContrast[i] = s / float64(contrastFrames)
		}
	}

	fv.F0 = f0Stats(f0s)
	if len(hnrs) > 0 {
		m, _ := meanStd(hnrs)
		fv.HarmonicRatio = Det(m)
	}
}

// pitchFrame estimates F0 for one frame via the normalized autocorrelation
// peak. A frame is voiced when the peak clears the voicing threshold and the
// frame is above the silence floor. The normalized peak doubles as the
// harmonic-to-noise proxy for the frame.
func (e *Extractor) pitchFrame(frame []float64, frameRMS float64, minLag, maxLag int) (f0, hnr float64, voiced bool) {
	if frameRMS < e.cfg.SilenceRMS {
		return 0, 0, false
	}

	// Remove DC so low-frequency offset does not masquerade as pitch.
	mean := 0.0
	for _, v := range frame {
		mean += v
	}
	mean /= float64(len(frame))
	centered := make([]float64, len(frame))
	for i, v := range frame {
		centered[i] = v - mean
	}

	r := dsp.Autocorrelation(centered, maxLag)
	if r[0] <= 0 {
		return 0, 0, false
	}

	bestLag, bestVal := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		if r[lag] > bestVal {
			bestVal, bestLag = r[lag], lag
		}
	}
	if bestLag == 0 {
		return 0, 0, false
	}

	norm := bestVal / r[0]
	if norm < e.cfg.VoicingThreshold {
		return 0, 0, false
	}
	if norm > 1 {
		norm = 1
	}
	return float64(e.sampleRate) / float64(bestLag), norm, true
}

// extractFormants runs an LPC analysis on the centered analysis window of the
// active signal and picks the first three resonances in the plausible band.
func (e *Extractor) extractFormants(y []float64, fv *FeatureVector) {
	cfg := e.cfg
	segLen := cfg.WindowSize
	if len(y) < segLen {
		return
	}
	start := (len(y) - segLen) / 2
	seg := y[start : start+segLen]

	a := dsp.LPC(seg, cfg.LPCOrder)
	if a == nil {
		return
	}

	// Roots of A(z) with z treated as the variable: numpy-style, highest
	// order first means coefficient i multiplies x^(p-i).
	p := len(a) - 1
	c := make([]float64, p+1)
	for i := 0; i <= p; i++ {
		c[i] = a[p-i]
	}

	var freqs []float64
	for _, root := range dsp.PolyRoots(c) {
		if imag(root) < 0 {
			continue
		}
		angle := math.Atan2(imag(root), real(root))
		hz := angle * float64(e.sampleRate) / (2 * math.Pi)
		if hz > cfg.FormantMinHz && hz < cfg.FormantMaxHz {
			freqs = append(freqs, hz)
		}
	}
	sort.Float64s(freqs)

	if len(freqs) > 0 {
		fv.Formants.F1 = Det(freqs[0])
	}
	if len(freqs) > 1 {
		fv.Formants.F2 = Det(freqs[1])
	}
	if len(freqs) > 2 {
		fv.Formants.F3 = Det(freqs[2])
	}
}

// melLogEnergies applies the mel filterbank to a magnitude spectrum and
// returns floored log energies.
func (e *Extractor) melLogEnergies(mag []float64) []float64 {
	out := make([]float64, len(e.melBank))
	for m, filter := range e.melBank {
		sum := 0.0
		for k, fw := range filter {
			p := mag[k] * mag[k]
			sum += fw * p
		}
		if sum < 1e-10 {
			sum = 1e-10
		}
		out[m] = math.Log(sum)
	}
	return out
}

func zeroCrossingRate(frame []float64) float64 {
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame)-1)
}

func rolloffHz(mag []float64, binHz, percent float64) float64 {
	total := 0.0
	for _, m := range mag {
		total += m * m
	}
	target := total * percent
	cum := 0.0
	for k, m := range mag {
		cum += m * m
		if cum >= target {
			return float64(k) * binHz
		}
	}
	return float64(len(mag)-1) * binHz
}

func flatness(mag []float64) float64 {
	const eps = 1e-10
	logSum, sum := 0.0, 0.0
	for _, m := range mag {
		p := m*m + eps
		logSum += math.Log(p)
		sum += p
	}
	n := float64(len(mag))
	return math.Exp(logSum/n) / (sum / n)
}

// contrastBands computes per-band peak-to-valley contrast in dB. Returns nil
// when every band is empty.
func contrastBands(mag []float64, binHz float64, edges []float64) []float64 {
	const eps = 1e-10
	const quantile = 0.2

	out := make([]float64, len(edges)-1)
	any := false
	for b := 0; b < len(edges)-1; b++ {
		lo := int(edges[b] / binHz)
		hi := int(edges[b+1] / binHz)
		if hi > len(mag) {
			hi = len(mag)
		}
		if hi-lo < 2 {
			continue
		}
		band := make([]float64, hi-lo)
		copy(band, mag[lo:hi])
		sort.Float64s(band)

		k := int(float64(len(band)) * quantile)
		if k < 1 {
			k = 1
		}
		valley, peak := 0.0, 0.0
		for i := 0; i < k; i++ {
			valley += band[i]
			peak += band[len(band)-1-i]
		}
		valley /= float64(k)
		peak /= float64(k)

		out[b] = 20 * math.Log10((peak+eps)/(valley+eps))
		any = true
	}
	if !any {
		return nil
	}
	return out
}

// detMean reduces a per-frame series to a determined mean, or Undetermined
// when no frame produced a value.
func detMean(xs []float64) Scalar {
	if len(xs) == 0 {
		return Undetermined
	}
	m, _ := meanStd(xs)
	return Det(m)
}

func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, v := range xs {
		mean += v
	}
	mean /= float64(len(xs))
	for _, v := range xs {
		d := v - mean
		std += d * d
	}
	return mean, math.Sqrt(std / float64(len(xs)))
}

func sliceRange(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	lo, hi := xs[0], xs[0]
	for _, v := range xs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}

func f0Stats(f0s []float64) F0Stats {
	if len(f0s) == 0 {
		return F0Stats{}
	}
	mean, std := meanStd(f0s)

	sorted := make([]float64, len(f0s))
	copy(sorted, f0s)
	sort.Float64s(sorted)
	var median float64
	if n := len(sorted); n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	stability := 0.0
	if mean > 0 {
		stability = 1 - std/mean
		if stability < 0 {
			stability = 0
		}
	}

	return F0Stats{
		Mean:      Det(mean),
		Median:    Det(median),
		Std:       Det(std),
		Min:       Det(sorted[0]),
		Max:       Det(sorted[len(sorted)-1]),
		Stability: Det(stability),
	}
}
