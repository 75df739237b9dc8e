// Package audio decodes uploaded voice recordings into the uniform PCM
// representation the analysis pipeline consumes: mono float64 samples at a
// fixed target rate.
package audio

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error kinds surfaced by the decoder. All are terminal for the request.
var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrCorruptAudio      = errors.New("corrupt audio data")
	ErrSizeExceeded      = errors.New("file size limit exceeded")
	ErrDurationExceeded  = errors.New("audio duration limit exceeded")
)

// Format is a declared container/codec tag from the upload allow-list.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatMP3  Format = "mp3"
	FormatFLAC Format = "flac"
	FormatOGG  Format = "ogg"
)

// ParseFormat maps a file extension (with or without leading dot) to a
// supported Format. Anything outside the allow-list, including m4a/aac which
// have no pure-Go decoder, yields ErrUnsupportedFormat.
func ParseFormat(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "wav":
		return FormatWAV, nil
	case "mp3":
		return FormatMP3, nil
	case "flac":
		return FormatFLAC, nil
	case "ogg":
		return FormatOGG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Buffer is a decoded recording: mono samples at SampleRate.
// It is request-scoped; the extractor consumes and discards it.
type Buffer struct {
	Samples    []float64
	SampleRate int
	Format     Format
}

// Duration returns the buffer length as wall time.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// Decoder turns raw upload bytes into an analysis-ready Buffer.
type Decoder struct {
	targetRate  int
	maxBytes    int64
	maxDuration time.Duration
}

// NewDecoder creates a Decoder that downmixes to mono and resamples to
// targetRate, rejecting inputs over maxBytes or maxDuration.
func NewDecoder(targetRate int, maxBytes int64, maxDuration time.Duration) *Decoder {
	return &Decoder{
		targetRate:  targetRate,
		maxBytes:    maxBytes,
		maxDuration: maxDuration,
	}
}

// MaxBytes reports the size cap the decoder enforces.
func (d *Decoder) MaxBytes() int64 { return d.maxBytes }

// Decode decodes data declared as format into a mono Buffer at the target
// rate. A file exactly at the size limit passes; one byte over fails with
// ErrSizeExceeded. No partial buffer is ever returned alongside an error.
func (d *Decoder) Decode(data []byte, format Format) (*Buffer, error) {
	if d.maxBytes > 0 && int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrSizeExceeded, len(data), d.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrCorruptAudio)
	}

	var (
		interleaved []float64
		channels    int
		rate        int
		err         error
	)
	switch format {
	case FormatWAV:
		interleaved, channels, rate, err = decodeWAV(data)
	case FormatMP3:
		interleaved, channels, rate, err = decodeMP3(data)
	case FormatFLAC:
		interleaved, channels, rate, err = decodeFLAC(data)
	case FormatOGG:
		interleaved, channels, rate, err = decodeOGG(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if len(interleaved) == 0 || channels <= 0 || rate <= 0 {
		return nil, fmt.Errorf("%w: no samples decoded", ErrCorruptAudio)
	}

	mono := downmix(interleaved, channels)

	if d.maxDuration > 0 {
		dur := time.Duration(float64(len(mono)) / float64(rate) * float64(time.Second))
		if dur > d.maxDuration {
			return nil, fmt.Errorf("%w: %s (limit %s)", ErrDurationExceeded, dur.Round(time.Millisecond), d.maxDuration)
		}
	}

	if rate != d.targetRate {
		mono, err = resample(mono, rate, d.targetRate)
		if err != nil {
			return nil, fmt.Errorf("resample %d->%d Hz: %v: %w", rate, d.targetRate, err, ErrCorruptAudio)
		}
	}
	if len(mono) == 0 {
		return nil, fmt.Errorf("%w: no samples after resampling", ErrCorruptAudio)
	}

	return &Buffer{Samples: mono, SampleRate: d.targetRate, Format: format}, nil
}

// downmix averages interleaved channels into mono.
func downmix(interleaved []float64, channels int) []float64 {
	if channels == 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}
