package aireport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniva/backend/internal/analysis"
	"github.com/soniva/backend/internal/config"
	"github.com/soniva/backend/internal/voicetype"
)

func testRequest() Request {
	fv := &analysis.FeatureVector{
		F0: analysis.F0Stats{
			Mean:      analysis.Det(245),
			Stability: analysis.Det(0.82),
		},
		SpectralCentroid: analysis.Det(2400),
		HarmonicRatio:    analysis.Det(0.74),
		RMSMean:          0.045,
	}
	scores, _ := voicetype.Score(fv, voicetype.GenderFemale)
	return Request{
		Nickname:   "Mio",
		Gender:     voicetype.GenderFemale,
		Features:   fv,
		Scores:     scores,
		Attributes: voicetype.DeriveAttributes(fv, voicetype.GenderFemale),
	}
}

func TestTemplateComposerDeterministic(t *testing.T) {
	req := testRequest()
	c := NewTemplateComposer()

	first, err := c.GenerateReport(context.Background(), req)
	require.NoError(t, err)
	second, err := c.GenerateReport(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, "template", first.Provider)
	assert.Contains(t, first.Content, req.Scores.Main().Label)
}

func TestGatewayFallsBackToTemplate(t *testing.T) {
	// No API keys configured: the gateway must still produce a report.
	gw := NewGateway(config.ReportConfig{
		DefaultProvider: "openai",
		MaxRetries:      0,
	})

	rep, err := gw.Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "template", rep.Provider)
	assert.NotEmpty(t, rep.Content)
}

func TestBuildUserPromptOmitsUndetermined(t *testing.T) {
	fv := &analysis.FeatureVector{RMSMean: 0.01}
	scores, err := voicetype.Score(fv, voicetype.GenderMale)
	require.NoError(t, err)

	prompt := buildUserPrompt(Request{
		Gender:     voicetype.GenderMale,
		Features:   fv,
		Scores:     scores,
		Attributes: voicetype.DeriveAttributes(fv, voicetype.GenderMale),
	})

	assert.NotContains(t, prompt, "Pitch:")
	assert.NotContains(t, prompt, "Brightness:")
	assert.Contains(t, prompt, "Energy:")
}

func TestCalculateCost(t *testing.T) {
	cost := CalculateCost("gpt-4o-mini", 1000, 1000)
	assert.InDelta(t, 0.00015+0.0006, cost, 1e-9)
	assert.Zero(t, CalculateCost("unknown-model", 1000, 1000))
}
