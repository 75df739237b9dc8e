package voicetype

import (
	"math"

	"github.com/soniva/backend/internal/analysis"
)

// Score evaluates the gender's full label enumeration against the feature
// vector. Rules over undetermined measurements contribute zero membership but
// still count in the denominator, so missing measurements never inflate a
// label's score.
func Score(fv *analysis.FeatureVector, gender Gender) (*ScoreSet, error) {
	set := &ScoreSet{Gender: gender}
	switch gender {
	case GenderFemale:
		for _, label := range femaleOrder {
			set.Entries = append(set.Entries, Entry{
				Label: string(label),
				Score: scoreRules(fv, femaleRules[label]),
			})
		}
	case GenderMale:
		for _, label := range maleOrder {
			set.Entries = append(set.Entries, Entry{
				Label: string(label),
				Score: scoreRules(fv, maleRules[label]),
			})
		}
	default:
		return nil, ErrUnknownGender
	}
	return set, nil
}

func scoreRules(fv *analysis.FeatureVector, rules []rule) float64 {
	var got, total float64
	for _, r := range rules {
		total += r.weight
		v, ok := featureValue(fv, r.feat)
		if !ok {
			continue
		}
		got += r.weight * r.membership(v)
	}
	if total == 0 {
		return 0
	}
	return round1(100 * got / total)
}

// round1 rounds to one decimal place, the precision results are stored and
// rendered at.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
