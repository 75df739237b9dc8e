package voicetype

import (
	"github.com/samber/lo"

	"github.com/soniva/backend/internal/analysis"
)

// Attributes are the playful per-voice traits derived from the raw features.
// PerceivedAge and PerceivedHeight are 0 when no pitch could be tracked.
type Attributes struct {
	PerceivedAge    int      `json:"perceived_age"`
	PerceivedHeight int      `json:"perceived_height_cm"`
	Temperature     string   `json:"temperature"` // warm | neutral | cool
	Attribute       string   `json:"attribute"`   // dominant | soft | flexible
	CharmIndex      float64  `json:"charm_index"` // 0..100
	Tags            []string `json:"tags"`
}

const (
	TemperatureWarm    = "warm"
	TemperatureNeutral = "neutral"
	TemperatureCool    = "cool"

	AttributeDominant = "dominant"
	AttributeSoft     = "soft"
	AttributeFlexible = "flexible"
)

type tagRule struct {
	name  string
	match func(fv *analysis.FeatureVector) bool
}

var tagRules = []tagRule{
	{"clear_enunciation", func(fv *analysis.FeatureVector) bool {
		return fv.F0.Stability.Determined && fv.F0.Stability.Value > 0.90 &&
			fv.HarmonicRatio.Determined && fv.HarmonicRatio.Value > 0.70
	}},
	{"pure_and_high", func(fv *analysis.FeatureVector) bool {
		return fv.F0.Stability.Determined && fv.F0.Stability.Value > 0.85 && fv.RMSMean > 0.05
	}},
	{"tingly", func(fv *analysis.FeatureVector) bool {
		return fv.HarmonicRatio.Determined && fv.HarmonicRatio.Value > 0.80 &&
			fv.SpectralCentroid.Determined && fv.SpectralCentroid.Value < 2000
	}},
	{"gentle_refined", func(fv *analysis.FeatureVector) bool {
		return fv.SpectralCentroid.Determined && fv.SpectralCentroid.Value < 2000 && fv.RMSMean < 0.06
	}},
	{"calm_composed", func(fv *analysis.FeatureVector) bool {
		return fv.HarmonicRatio.Determined && fv.HarmonicRatio.Value < 0.55 && fv.ZCRMean > 0.10
	}},
	{"high_pitched", func(fv *analysis.FeatureVector) bool {
		return fv.RMSMean > 0.08 && fv.SpectralCentroid.Determined && fv.SpectralCentroid.Value > 2200
	}},
	{"lively_cute", func(fv *analysis.FeatureVector) bool {
		return fv.SpectralCentroid.Determined && fv.SpectralCentroid.Value > 3500 && fv.ZCRMean > 0.15
	}},
	{"quiet_soothing", func(fv *analysis.FeatureVector) bool {
		return fv.RMSMean < 0.04 && fv.HarmonicRatio.Determined && fv.HarmonicRatio.Value > 0.75
	}},
}

// DeriveAttributes computes the presentation-layer traits. All formulas are
// clamped to plausible human ranges per gender.
func DeriveAttributes(fv *analysis.FeatureVector, gender Gender) Attributes {
	a := Attributes{
		Temperature: TemperatureNeutral,
		Attribute:   AttributeFlexible,
	}

	if fv.F0.Mean.Determined {
		f0 := fv.F0.Mean.Value
		if gender == GenderFemale {
			a.PerceivedAge = clampInt(int(40-f0/15), 16, 35)
			a.PerceivedHeight = clampInt(int(140+f0/10), 155, 175)
		} else {
			a.PerceivedAge = clampInt(int(50-f0/5), 18, 45)
			a.PerceivedHeight = clampInt(int(180-f0/20), 165, 190)
		}
	}

	if fv.SpectralCentroid.Determined {
		switch {
		case fv.SpectralCentroid.Value < 2000:
			a.Temperature = TemperatureWarm
		case fv.SpectralCentroid.Value > 3000:
			a.Temperature = TemperatureCool
		}
	}

	if fv.F0.Stability.Determined {
		switch {
		case fv.F0.Stability.Value > 0.8:
			a.Attribute = AttributeDominant
		case fv.F0.Stability.Value < 0.5:
			a.Attribute = AttributeSoft
		}
	}

	a.CharmIndex = charmIndex(fv)
	a.Tags = lo.FilterMap(tagRules, func(r tagRule, _ int) (string, bool) {
		return r.name, r.match(fv)
	})
	return a
}

// charmIndex blends tonal purity, pitch steadiness and delivery energy into
// one 0..100 figure. Undetermined components contribute nothing.
func charmIndex(fv *analysis.FeatureVector) float64 {
	var c float64
	if fv.HarmonicRatio.Determined {
		c += 40 * clamp01(fv.HarmonicRatio.Value)
	}
	if fv.F0.Stability.Determined {
		c += 30 * clamp01(fv.F0.Stability.Value)
	}
	c += 30 * clamp01(fv.RMSMean/0.08)
	return round1(c)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
