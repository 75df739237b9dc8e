package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniva/backend/internal/audio"
)

const testRate = 22050

func sineBuf(freq float64, dur time.Duration) *audio.Buffer {
	n := int(float64(testRate) * dur.Seconds())
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.4 * math.Sin(2*math.Pi*freq*float64(i)/float64(testRate))
	}
	return &audio.Buffer{Samples: samples, SampleRate: testRate, Format: audio.FormatWAV}
}

func silenceBuf(dur time.Duration) *audio.Buffer {
	n := int(float64(testRate) * dur.Seconds())
	return &audio.Buffer{Samples: make([]float64, n), SampleRate: testRate, Format: audio.FormatWAV}
}

func newTestExtractor() *Extractor {
	return NewExtractor(testRate, DefaultExtractorConfig())
}

func TestExtractPitchOfSteadyTone(t *testing.T) {
	fv, err := newTestExtractor().Extract(sineBuf(250, time.Second))
	require.NoError(t, err)

	require.True(t, fv.F0.Mean.Determined)
	assert.InDelta(t, 250, fv.F0.Mean.Value, 10)
	require.True(t, fv.F0.Stability.Determined)
	assert.Greater(t, fv.F0.Stability.Value, 0.9)
	require.True(t, fv.HarmonicRatio.Determined)
	assert.Greater(t, fv.HarmonicRatio.Value, 0.8)

	assert.Len(t, fv.MFCCMean, 13)
	assert.Len(t, fv.MFCCStd, 13)
	assert.InDelta(t, 1.0, fv.DurationSeconds, 0.01)
}

func TestExtractLowPitch(t *testing.T) {
	fv, err := newTestExtractor().Extract(sineBuf(100, time.Second))
	require.NoError(t, err)

	require.True(t, fv.F0.Mean.Determined)
	assert.InDelta(t, 100, fv.F0.Mean.Value, 5)
}

func TestExtractDeterministic(t *testing.T) {
	e := newTestExtractor()
	buf := sineBuf(220, 700*time.Millisecond)

	first, err := e.Extract(buf)
	require.NoError(t, err)
	second, err := e.Extract(buf)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExtractSilence(t *testing.T) {
	fv, err := newTestExtractor().Extract(silenceBuf(time.Second))
	require.NoError(t, err)

	// Nothing to measure, but no fabricated values either.
	assert.False(t, fv.F0.Mean.Determined)
	assert.False(t, fv.F0.Stability.Determined)
	assert.False(t, fv.HarmonicRatio.Determined)
	assert.False(t, fv.SpectralCentroid.Determined)
	assert.False(t, fv.SpectralFlatness.Determined)
	assert.Nil(t, fv.SpectralContrast)
	assert.Zero(t, fv.ZCRMean)
	assert.Zero(t, fv.RMSMean)
}

func TestExtractTooShort(t *testing.T) {
	buf := &audio.Buffer{
		Samples:    make([]float64, 1000), // under one analysis window
		SampleRate: testRate,
	}
	_, err := newTestExtractor().Extract(buf)
	assert.ErrorIs(t, err, ErrInsufficientSignal)
}

func TestExtractRateMismatch(t *testing.T) {
	buf := sineBuf(220, time.Second)
	buf.SampleRate = 44100
	_, err := newTestExtractor().Extract(buf)
	assert.Error(t, err)
}

func TestCentroidTracksBrightness(t *testing.T) {
	e := newTestExtractor()

	dark, err := e.Extract(sineBuf(300, time.Second))
	require.NoError(t, err)
	bright, err := e.Extract(sineBuf(3000, time.Second))
	require.NoError(t, err)

	require.True(t, dark.SpectralCentroid.Determined)
	require.True(t, bright.SpectralCentroid.Determined)
	assert.Greater(t, bright.SpectralCentroid.Value, dark.SpectralCentroid.Value)
}

func TestScalarJSONNull(t *testing.T) {
	data, err := Undetermined.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var s Scalar
	require.NoError(t, s.UnmarshalJSON([]byte("null")))
	assert.False(t, s.Determined)
	require.NoError(t, s.UnmarshalJSON([]byte("123.5")))
	assert.True(t, s.Determined)
	assert.Equal(t, 123.5, s.Value)
}
