package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// resample converts mono samples from srcRate to dstRate using a pure-Go
// soxr-style polyphase resampler. The whole buffer is processed in one call
// so output length and values are deterministic for a given input.
func resample(samples []float64, srcRate, dstRate int) ([]float64, error) {
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("create resampler: %w", err)
	}

	out, err := rs.Process(samples)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	return out, nil
}
