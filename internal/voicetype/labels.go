// Package voicetype maps extracted voice features to the product's
// voice-type taxonomy. Scoring is a pure function over a declarative rule
// table; no I/O, no state.
package voicetype

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownGender is returned for any gender tag outside the two supported
// categories.
var ErrUnknownGender = errors.New("unknown gender category")

// Gender selects which label enumeration the scorer uses.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// ParseGender validates a request-supplied gender tag.
func ParseGender(s string) (Gender, error) {
	switch Gender(strings.ToLower(s)) {
	case GenderFemale:
		return GenderFemale, nil
	case GenderMale:
		return GenderMale, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGender, s)
	}
}

// FemaleLabel and MaleLabel are distinct types so a score set can never mix
// labels across genders.
type (
	FemaleLabel string
	MaleLabel   string
)

const (
	FemaleLoli         FemaleLabel = "loli"
	FemaleYoungGirl    FemaleLabel = "young_girl"
	FemaleMature       FemaleLabel = "mature_female"
	FemaleQueen        FemaleLabel = "queen"
	FemaleSoftCute     FemaleLabel = "soft_cute"
	FemaleGentle       FemaleLabel = "gentle"
	FemaleSweet        FemaleLabel = "sweet"
	FemaleIntellectual FemaleLabel = "intellectual"
	FemaleNeutral      FemaleLabel = "neutral"
	FemaleSmoky        FemaleLabel = "smoky"
)

const (
	MaleBoy        MaleLabel = "boy"
	MaleTeen       MaleLabel = "teen"
	MaleYoung      MaleLabel = "young_male"
	MaleDeepMature MaleLabel = "deep_mature"
	MaleDominant   MaleLabel = "dominant_young"
	MaleSoft       MaleLabel = "soft_young"
	MalePuppy      MaleLabel = "puppy"
	MaleWolfdog    MaleLabel = "wolfdog"
	MaleBroadcast  MaleLabel = "broadcast"
	MaleSmoky      MaleLabel = "smoky"
)

// Enumeration order doubles as the tie-break priority: when two labels have
// the same top score, the one listed earlier wins.
var (
	femaleOrder = []FemaleLabel{
		FemaleLoli, FemaleYoungGirl, FemaleMature, FemaleQueen, FemaleSoftCute,
		FemaleGentle, FemaleSweet, FemaleIntellectual, FemaleNeutral, FemaleSmoky,
	}
	maleOrder = []MaleLabel{
		MaleBoy, MaleTeen, MaleYoung, MaleDeepMature, MaleDominant,
		MaleSoft, MalePuppy, MaleWolfdog, MaleBroadcast, MaleSmoky,
	}
)

// Entry is one label/score pair of a ScoreSet, in enumeration order.
type Entry struct {
	Label string  `json:"label"`
	Score float64 `json:"score"` // 0..100, fixed per-label normalization
}

// ScoreSet is the scorer output: scores over exactly one gender's label
// enumeration. The gender tag plus the distinct label types prevent
// cross-gender leakage by construction.
type ScoreSet struct {
	Gender  Gender  `json:"gender"`
	Entries []Entry `json:"entries"`
}

// Main returns the top-scoring entry. Ties resolve to the label declared
// earliest in the enumeration (Entries preserves that order).
func (s *ScoreSet) Main() Entry {
	best := s.Entries[0]
	for _, e := range s.Entries[1:] {
		if e.Score > best.Score {
			best = e
		}
	}
	return best
}
