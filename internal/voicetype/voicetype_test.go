package voicetype

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniva/backend/internal/analysis"
	"github.com/soniva/backend/internal/audio"
)

func vec(f0, stability, harmonic, centroid, rms, zcr float64) *analysis.FeatureVector {
	return &analysis.FeatureVector{
		F0: analysis.F0Stats{
			Mean:      analysis.Det(f0),
			Stability: analysis.Det(stability),
		},
		HarmonicRatio:    analysis.Det(harmonic),
		SpectralCentroid: analysis.Det(centroid),
		RMSMean:          rms,
		ZCRMean:          zcr,
	}
}

func TestParseGender(t *testing.T) {
	g, err := ParseGender("Female")
	require.NoError(t, err)
	assert.Equal(t, GenderFemale, g)

	g, err = ParseGender("male")
	require.NoError(t, err)
	assert.Equal(t, GenderMale, g)

	_, err = ParseGender("other")
	assert.ErrorIs(t, err, ErrUnknownGender)
}

func TestScoreUnknownGender(t *testing.T) {
	_, err := Score(vec(200, 0.7, 0.7, 2500, 0.04, 0.06), Gender("alien"))
	assert.ErrorIs(t, err, ErrUnknownGender)
}

func TestScoreFemaleYoungGirl(t *testing.T) {
	// 250 Hz, steady, clean tone: squarely inside every young_girl band.
	set, err := Score(vec(250, 0.70, 0.70, 2600, 0.04, 0.06), GenderFemale)
	require.NoError(t, err)

	main := set.Main()
	assert.Equal(t, string(FemaleYoungGirl), main.Label)
	assert.InDelta(t, 100.0, main.Score, 0.001)
}

func TestScoreMaleDeepMature(t *testing.T) {
	set, err := Score(vec(85, 0.85, 0.60, 1500, 0.05, 0.05), GenderMale)
	require.NoError(t, err)

	main := set.Main()
	assert.Equal(t, string(MaleDeepMature), main.Label)
	assert.InDelta(t, 100.0, main.Score, 0.001)
}

func TestScoreCoversFullEnumeration(t *testing.T) {
	fv := vec(180, 0.6, 0.6, 2200, 0.05, 0.07)

	set, err := Score(fv, GenderFemale)
	require.NoError(t, err)
	require.Len(t, set.Entries, len(femaleOrder))
	for i, label := range femaleOrder {
		assert.Equal(t, string(label), set.Entries[i].Label)
	}

	set, err = Score(fv, GenderMale)
	require.NoError(t, err)
	require.Len(t, set.Entries, len(maleOrder))
	for i, label := range maleOrder {
		assert.Equal(t, string(label), set.Entries[i].Label)
	}
}

func TestScoreNoCrossGenderLeakage(t *testing.T) {
	fv := vec(150, 0.8, 0.6, 2000, 0.05, 0.07)

	female, err := Score(fv, GenderFemale)
	require.NoError(t, err)
	male, err := Score(fv, GenderMale)
	require.NoError(t, err)

	maleOnly := map[string]bool{}
	for _, label := range maleOrder {
		maleOnly[string(label)] = true
	}
	// "smoky" exists in both taxonomies.
	delete(maleOnly, string(MaleSmoky))

	for _, e := range female.Entries {
		assert.False(t, maleOnly[e.Label], "female set contains male label %s", e.Label)
	}
	assert.Equal(t, GenderFemale, female.Gender)
	assert.Equal(t, GenderMale, male.Gender)
}

func TestScoreUndeterminedMeasurements(t *testing.T) {
	// Near-silence: no pitch, no spectrum, flat energy. Nothing should score
	// outside [0,100] and pitch-driven labels should score 0.
	fv := &analysis.FeatureVector{}

	set, err := Score(fv, GenderFemale)
	require.NoError(t, err)
	for _, e := range set.Entries {
		assert.GreaterOrEqual(t, e.Score, 0.0)
		assert.LessOrEqual(t, e.Score, 100.0)
	}
}

func TestScoreBandTaper(t *testing.T) {
	// 270 Hz is 10 Hz past the young_girl band with a 25 Hz taper: the f0
	// rule should contribute 0.6 * (1 - 10/25).
	in, err := Score(vec(260, 0.70, 0.70, 2600, 0.04, 0.06), GenderFemale)
	require.NoError(t, err)
	out, err := Score(vec(270, 0.70, 0.70, 2600, 0.04, 0.06), GenderFemale)
	require.NoError(t, err)

	assert.InDelta(t, 100.0, in.Entries[1].Score, 0.001)
	assert.InDelta(t, 100.0-60.0*10.0/25.0, out.Entries[1].Score, 0.05)
}

func TestMainTieBreakDeclarationOrder(t *testing.T) {
	set := &ScoreSet{
		Gender: GenderFemale,
		Entries: []Entry{
			{Label: "loli", Score: 62.5},
			{Label: "young_girl", Score: 62.5},
			{Label: "queen", Score: 40.0},
		},
	}
	assert.Equal(t, "loli", set.Main().Label)
}

func TestDeriveAttributesFemale(t *testing.T) {
	a := DeriveAttributes(vec(250, 0.85, 0.70, 2600, 0.04, 0.06), GenderFemale)

	assert.Equal(t, 23, a.PerceivedAge)       // clamp(40 - 250/15)
	assert.Equal(t, 165, a.PerceivedHeight)   // clamp(140 + 250/10)
	assert.Equal(t, TemperatureNeutral, a.Temperature)
	assert.Equal(t, AttributeDominant, a.Attribute)
	assert.InDelta(t, 68.5, a.CharmIndex, 0.001)
}

func TestDeriveAttributesMaleClamped(t *testing.T) {
	a := DeriveAttributes(vec(300, 0.4, 0.5, 3500, 0.02, 0.12), GenderMale)

	assert.Equal(t, 18, a.PerceivedAge)     // 50 - 300/5 = -10, clamped up
	assert.Equal(t, 165, a.PerceivedHeight) // 180 - 300/20 = 165
	assert.Equal(t, TemperatureCool, a.Temperature)
	assert.Equal(t, AttributeSoft, a.Attribute)
}

func TestDeriveAttributesUndeterminedPitch(t *testing.T) {
	a := DeriveAttributes(&analysis.FeatureVector{}, GenderFemale)

	assert.Zero(t, a.PerceivedAge)
	assert.Zero(t, a.PerceivedHeight)
	assert.Equal(t, TemperatureNeutral, a.Temperature)
	assert.Equal(t, AttributeFlexible, a.Attribute)
	assert.Empty(t, a.Tags)
	assert.Zero(t, a.CharmIndex)
}

// TestScoreExtractedTone runs extraction and scoring end to end on a
// synthesized 15-second clean 250 Hz tone: a bright, steady, harmonic-rich
// signal should land on a young female label with a non-empty tag set.
func TestScoreExtractedTone(t *testing.T) {
	const rate = 22050
	samples := make([]float64, 15*rate)
	for i := range samples {
		samples[i] = 0.4 * math.Sin(2*math.Pi*250*float64(i)/rate)
	}
	buf := &audio.Buffer{Samples: samples, SampleRate: rate, Format: audio.FormatWAV}

	fv, err := analysis.NewExtractor(rate, analysis.DefaultExtractorConfig()).Extract(buf)
	require.NoError(t, err)

	set, err := Score(fv, GenderFemale)
	require.NoError(t, err)

	main := set.Main()
	assert.Equal(t, string(FemaleYoungGirl), main.Label)
	assert.Greater(t, main.Score, 50.0)

	attrs := DeriveAttributes(fv, GenderFemale)
	assert.NotEmpty(t, attrs.Tags)
}

func TestDeriveAttributesTags(t *testing.T) {
	a := DeriveAttributes(vec(220, 0.95, 0.82, 1800, 0.03, 0.05), GenderFemale)

	assert.Contains(t, a.Tags, "clear_enunciation")
	assert.Contains(t, a.Tags, "tingly")
	assert.Contains(t, a.Tags, "gentle_refined")
	assert.Contains(t, a.Tags, "quiet_soothing")
	assert.NotContains(t, a.Tags, "high_pitched")
}
