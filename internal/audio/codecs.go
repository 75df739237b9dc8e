package audio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"

	"github.com/go-audio/wav"
)

// decodeWAV reads PCM WAV data of any common bit depth.
func decodeWAV(data []byte) ([]float64, int, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("invalid wav header: %w", ErrCorruptAudio)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read wav pcm: %v: %w", err, ErrCorruptAudio)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, 0, fmt.Errorf("empty wav pcm: %w", ErrCorruptAudio)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, 0, 0, fmt.Errorf("wav bit depth %d: %w", bitDepth, ErrCorruptAudio)
	}
	scale := float64(int64(1) << (bitDepth - 1))

	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / scale
	}
	return samples, buf.Format.NumChannels, buf.Format.SampleRate, nil
}

// decodeMP3 reads MPEG layer-3 data. The decoder always emits 16-bit
// little-endian stereo regardless of the source channel layout.
func decodeMP3(data []byte) ([]float64, int, int, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("open mp3: %v: %w", err, ErrCorruptAudio)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read mp3 pcm: %v: %w", err, ErrCorruptAudio)
	}
	if len(pcm) < 4 {
		return nil, 0, 0, fmt.Errorf("empty mp3 pcm: %w", ErrCorruptAudio)
	}

	n := len(pcm) / 2
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		s := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		samples[i] = float64(s) / 32768.0
	}
	return samples, 2, dec.SampleRate(), nil
}

// decodeFLAC reads FLAC data frame by frame, interleaving the subframes.
func decodeFLAC(data []byte) ([]float64, int, int, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("open flac: %v: %w", err, ErrCorruptAudio)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	rate := int(stream.Info.SampleRate)
	bps := int(stream.Info.BitsPerSample)
	if channels <= 0 || rate <= 0 || bps <= 0 {
		return nil, 0, 0, fmt.Errorf("flac stream info: %w", ErrCorruptAudio)
	}
	scale := float64(int64(1) << (bps - 1))

	var samples []float64
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, 0, fmt.Errorf("parse flac frame: %v: %w", err, ErrCorruptAudio)
		}
		if len(frame.Subframes) != channels {
			return nil, 0, 0, fmt.Errorf("flac channel mismatch: %w", ErrCorruptAudio)
		}
		frameLen := len(frame.Subframes[0].Samples)
		for i := 0; i < frameLen; i++ {
			for c := 0; c < channels; c++ {
				samples = append(samples, float64(frame.Subframes[c].Samples[i])/scale)
			}
		}
	}
	return samples, channels, rate, nil
}

// decodeOGG reads an Ogg Vorbis stream in full.
func decodeOGG(data []byte) ([]float64, int, int, error) {
	pcm, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read ogg vorbis: %v: %w", err, ErrCorruptAudio)
	}
	samples := make([]float64, len(pcm))
	for i, v := range pcm {
		samples[i] = float64(v)
	}
	return samples, format.Channels, format.SampleRate, nil
}
