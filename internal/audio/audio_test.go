package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeWAV writes 16-bit PCM through the real encoder so decode tests see
// genuine container bytes, not hand-rolled headers.
func encodeWAV(t *testing.T, samples []float64, rate, channels int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(s * 32767)
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func sine(freq float64, rate int, dur time.Duration) []float64 {
	n := int(float64(rate) * dur.Seconds())
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func TestParseFormat(t *testing.T) {
	for _, ext := range []string{"wav", ".wav", ".WAV"} {
		f, err := ParseFormat(ext)
		require.NoError(t, err)
		assert.Equal(t, FormatWAV, f)
	}

	_, err := ParseFormat(".m4a")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = ParseFormat("")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeWAV(t *testing.T) {
	rate := 22050
	data := encodeWAV(t, sine(220, rate, time.Second), rate, 1)

	dec := NewDecoder(rate, 0, 0)
	buf, err := dec.Decode(data, FormatWAV)
	require.NoError(t, err)

	assert.Equal(t, rate, buf.SampleRate)
	assert.Equal(t, FormatWAV, buf.Format)
	assert.InDelta(t, time.Second.Seconds(), buf.Duration().Seconds(), 0.01)

	// Peak amplitude survives the round trip.
	var peak float64
	for _, s := range buf.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	assert.InDelta(t, 0.5, peak, 0.01)
}

func TestDecodeResamplesToTargetRate(t *testing.T) {
	data := encodeWAV(t, sine(220, 44100, time.Second), 44100, 1)

	dec := NewDecoder(22050, 0, 0)
	buf, err := dec.Decode(data, FormatWAV)
	require.NoError(t, err)

	assert.Equal(t, 22050, buf.SampleRate)
	assert.InDelta(t, 22050, len(buf.Samples), 300)
}

func TestDecodeDownmixesStereo(t *testing.T) {
	rate := 22050
	mono := sine(220, rate, 500*time.Millisecond)
	interleaved := make([]float64, 0, len(mono)*2)
	for _, s := range mono {
		interleaved = append(interleaved, s, s)
	}
	data := encodeWAV(t, interleaved, rate, 2)

	dec := NewDecoder(rate, 0, 0)
	buf, err := dec.Decode(data, FormatWAV)
	require.NoError(t, err)

	assert.Equal(t, len(mono), len(buf.Samples))
	// Identical channels average to themselves.
	assert.InDelta(t, mono[100], buf.Samples[100], 1e-3)
}

func TestDecodeSizeBoundary(t *testing.T) {
	rate := 22050
	data := encodeWAV(t, sine(220, rate, 200*time.Millisecond), rate, 1)

	// Exactly at the cap: accepted.
	dec := NewDecoder(rate, int64(len(data)), 0)
	_, err := dec.Decode(data, FormatWAV)
	require.NoError(t, err)

	// One byte over: rejected before decoding.
	dec = NewDecoder(rate, int64(len(data))-1, 0)
	_, err = dec.Decode(data, FormatWAV)
	assert.ErrorIs(t, err, ErrSizeExceeded)
}

func TestDecodeDurationLimit(t *testing.T) {
	rate := 22050
	data := encodeWAV(t, sine(220, rate, time.Second), rate, 1)

	dec := NewDecoder(rate, 0, 500*time.Millisecond)
	_, err := dec.Decode(data, FormatWAV)
	assert.ErrorIs(t, err, ErrDurationExceeded)
}

func TestDecodeCorruptAndEmpty(t *testing.T) {
	dec := NewDecoder(22050, 0, 0)

	_, err := dec.Decode([]byte("definitely not a riff header"), FormatWAV)
	assert.ErrorIs(t, err, ErrCorruptAudio)

	_, err = dec.Decode(nil, FormatWAV)
	assert.ErrorIs(t, err, ErrCorruptAudio)

	_, err = dec.Decode([]byte{0x00, 0x01}, FormatMP3)
	assert.ErrorIs(t, err, ErrCorruptAudio)
}

func TestDecodeUndeclaredFormat(t *testing.T) {
	dec := NewDecoder(22050, 0, 0)
	_, err := dec.Decode([]byte{0x00}, Format("m4a"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
