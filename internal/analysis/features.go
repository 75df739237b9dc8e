// Package analysis implements the voice feature-extraction pipeline:
// framing, voice-activity trimming, pitch tracking, cepstral and spectral
// statistics, and the orchestration from decoded audio to an assembled
// analysis result.
package analysis

import (
	"encoding/json"
	"errors"
)

// ErrInsufficientSignal is returned when the decoded buffer is shorter than
// one analysis window and no features can be computed at all.
var ErrInsufficientSignal = errors.New("signal shorter than one analysis window")

// Scalar is a measurement that may be undetermined (e.g. F0 of an unvoiced
// recording). Undetermined is an explicit state, never a zero sentinel, so
// downstream scoring can distinguish "no pitch" from "pitch of 0 Hz".
type Scalar struct {
	Value      float64
	Determined bool
}

// Det wraps a determined measurement.
func Det(v float64) Scalar { return Scalar{Value: v, Determined: true} }

// Undetermined is the explicit missing-measurement value.
var Undetermined = Scalar{}

// MarshalJSON renders undetermined scalars as null.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.Determined {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON accepts null as undetermined.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Undetermined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Det(v)
	return nil
}

// F0Stats summarizes the fundamental-frequency contour over voiced frames.
// All fields are undetermined when no frame passes the voicing gate.
type F0Stats struct {
	Mean      Scalar `json:"mean"`
	Median    Scalar `json:"median"`
	Std       Scalar `json:"std"`
	Min       Scalar `json:"min"`
	Max       Scalar `json:"max"`
	Stability Scalar `json:"stability"` // 1 - std/mean, clamped to [0,1]
}

// Formants holds the first three vocal-tract resonances in Hz.
type Formants struct {
	F1 Scalar `json:"f1"`
	F2 Scalar `json:"f2"`
	F3 Scalar `json:"f3"`
}

// FeatureVector is the fixed-shape output of the extractor. It is built once
// per request and immutable thereafter. Every field is either a valid
// measurement or explicitly undetermined.
type FeatureVector struct {
	DurationSeconds float64 `json:"duration_seconds"`
	SampleRate      int     `json:"sample_rate"`
	VoicedRatio     float64 `json:"voiced_ratio"`

	F0 F0Stats `json:"f0_hz"`

	MFCCMean []float64 `json:"mfcc_mean"` // frame-averaged, fixed coefficient count
	MFCCStd  []float64 `json:"mfcc_std"`

	SpectralCentroid  Scalar    `json:"spectral_centroid_hz"`
	SpectralBandwidth Scalar    `json:"spectral_bandwidth_hz"`
	SpectralRolloff   Scalar    `json:"spectral_rolloff_hz"`
	SpectralFlatness  Scalar    `json:"spectral_flatness"`
	SpectralContrast  []float64 `json:"spectral_contrast"` // per-band means, nil when undetermined

	ZCRMean float64 `json:"zcr_mean"`
	ZCRStd  float64 `json:"zcr_std"`

	RMSMean  float64 `json:"rms_mean"`
	RMSStd   float64 `json:"rms_std"`
	RMSRange float64 `json:"rms_dynamic_range"`

	HarmonicRatio Scalar `json:"harmonic_ratio"`

	Formants Formants `json:"formants_hz"`
}
