package voicetype

import (
	"math"

	"github.com/soniva/backend/internal/analysis"
)

// feature names one scalar drawn from a FeatureVector.
type feature int

const (
	featF0Mean feature = iota
	featF0Stability
	featCentroid
	featHarmonicRatio
	featRMSMean
	featZCRMean
)

// featureValue pulls one scalar out of the vector. ok is false when the
// underlying measurement is undetermined; such rules contribute zero.
func featureValue(fv *analysis.FeatureVector, f feature) (float64, bool) {
	switch f {
	case featF0Mean:
		return fv.F0.Mean.Value, fv.F0.Mean.Determined
	case featF0Stability:
		return fv.F0.Stability.Value, fv.F0.Stability.Determined
	case featCentroid:
		return fv.SpectralCentroid.Value, fv.SpectralCentroid.Determined
	case featHarmonicRatio:
		return fv.HarmonicRatio.Value, fv.HarmonicRatio.Determined
	case featRMSMean:
		return fv.RMSMean, true
	case featZCRMean:
		return fv.ZCRMean, true
	}
	return 0, false
}

// rule is one weighted band-membership term. Membership is 1 inside
// [lo, hi], falls off linearly over taper outside the band, and is 0 beyond.
// Open-ended bands use ±Inf.
type rule struct {
	feat   feature
	lo, hi float64
	taper  float64
	weight float64
}

var inf = math.Inf(1)

// membership evaluates the trapezoid for value v.
func (r rule) membership(v float64) float64 {
	if v >= r.lo && v <= r.hi {
		return 1
	}
	if r.taper <= 0 {
		return 0
	}
	var d float64
	if v < r.lo {
		d = r.lo - v
	} else {
		d = v - r.hi
	}
	if d >= r.taper {
		return 0
	}
	return 1 - d/r.taper
}

// Rule tables. A label scores 100 only when every rule is fully matched;
// the per-label weight sum is the fixed normalization denominator, so scores
// are comparable across requests.
var femaleRules = map[FemaleLabel][]rule{
	FemaleLoli: {
		{featF0Mean, 260, 400, 60, 0.60},
		{featF0Stability, 0, 0.60, 0.15, 0.25},
		{featCentroid, 3000, inf, 800, 0.15},
	},
	FemaleYoungGirl: {
		{featF0Mean, 200, 260, 25, 0.60},
		{featF0Stability, 0.50, 0.85, 0.10, 0.20},
		{featHarmonicRatio, 0.65, 1, 0.10, 0.20},
	},
	FemaleMature: {
		{featF0Mean, 165, 200, 20, 0.50},
		{featF0Stability, 0.80, 1, 0.10, 0.35},
		{featRMSMean, 0.03, inf, 0.02, 0.15},
	},
	FemaleQueen: {
		{featF0Mean, 0, 170, 20, 0.50},
		{featRMSMean, 0.05, inf, 0.02, 0.35},
		{featF0Stability, 0.70, 1, 0.15, 0.15},
	},
	FemaleSoftCute: {
		{featHarmonicRatio, 0.75, 1, 0.08, 0.45},
		{featRMSMean, 0, 0.05, 0.02, 0.35},
		{featF0Mean, 220, inf, 40, 0.20},
	},
	FemaleGentle: {
		{featCentroid, 0, 2500, 500, 0.45},
		{featRMSMean, 0, 0.05, 0.02, 0.35},
		{featHarmonicRatio, 0.65, 1, 0.10, 0.20},
	},
	FemaleSweet: {
		{featHarmonicRatio, 0.70, 1, 0.08, 0.45},
		{featCentroid, 2500, inf, 500, 0.35},
		{featF0Mean, 200, 280, 30, 0.20},
	},
	FemaleIntellectual: {
		{featF0Stability, 0.75, 1, 0.10, 0.45},
		{featF0Mean, 0, 200, 25, 0.35},
		{featHarmonicRatio, 0.60, 1, 0.10, 0.20},
	},
	FemaleNeutral: {
		{featF0Mean, 145, 185, 20, 0.50},
		{featCentroid, 1800, 3000, 400, 0.30},
		{featF0Stability, 0.50, 0.90, 0.10, 0.20},
	},
	FemaleSmoky: {
		{featHarmonicRatio, 0, 0.55, 0.10, 0.60},
		{featZCRMean, 0.08, inf, 0.04, 0.25},
		{featRMSMean, 0.03, inf, 0.02, 0.15},
	},
}

var maleRules = map[MaleLabel][]rule{
	MaleBoy: {
		{featF0Mean, 180, 300, 40, 0.60},
		{featHarmonicRatio, 0.70, 1, 0.10, 0.25},
		{featRMSMean, 0, 0.06, 0.02, 0.15},
	},
	MaleTeen: {
		{featF0Mean, 140, 180, 20, 0.60},
		{featF0Stability, 0.50, 0.90, 0.10, 0.25},
		{featHarmonicRatio, 0.60, 1, 0.10, 0.15},
	},
	MaleYoung: {
		{featF0Mean, 100, 140, 15, 0.60},
		{featF0Stability, 0.50, 0.95, 0.10, 0.25},
		{featHarmonicRatio, 0.55, 1, 0.10, 0.15},
	},
	MaleDeepMature: {
		{featF0Mean, 0, 100, 15, 0.65},
		{featRMSMean, 0.03, inf, 0.02, 0.20},
		{featCentroid, 0, 2000, 400, 0.15},
	},
	MaleDominant: {
		{featF0Mean, 100, 140, 15, 0.50},
		{featRMSMean, 0.05, inf, 0.02, 0.35},
		{featF0Stability, 0.60, 1, 0.10, 0.15},
	},
	MaleSoft: {
		{featF0Mean, 100, 145, 15, 0.50},
		{featRMSMean, 0, 0.04, 0.015, 0.35},
		{featHarmonicRatio, 0.65, 1, 0.10, 0.15},
	},
	MalePuppy: {
		{featHarmonicRatio, 0.75, 1, 0.08, 0.45},
		{featRMSMean, 0, 0.04, 0.015, 0.35},
		{featF0Mean, 120, 180, 20, 0.20},
	},
	MaleWolfdog: {
		{featHarmonicRatio, 0, 0.65, 0.10, 0.40},
		{featRMSMean, 0.06, inf, 0.02, 0.40},
		{featF0Mean, 90, 140, 15, 0.20},
	},
	MaleBroadcast: {
		{featF0Stability, 0.85, 1, 0.08, 0.50},
		{featF0Mean, 95, 150, 20, 0.25},
		{featHarmonicRatio, 0.65, 1, 0.10, 0.25},
	},
	MaleSmoky: {
		{featHarmonicRatio, 0, 0.55, 0.10, 0.60},
		{featZCRMean, 0.08, inf, 0.04, 0.25},
		{featRMSMean, 0.03, inf, 0.02, 0.15},
	},
}
