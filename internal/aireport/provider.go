// Package aireport turns an assembled voice analysis into a short narrative
// for the user. Generation goes through a multi-provider gateway with retry
// and fallback; when no provider is configured (or all fail) a deterministic
// template composer takes over, so report generation never blocks a result.
package aireport

import (
	"context"

	"github.com/soniva/backend/internal/analysis"
	"github.com/soniva/backend/internal/voicetype"
)

// Provider abstracts one hosted model behind the gateway.
type Provider interface {
	GenerateReport(ctx context.Context, req Request) (*Report, error)
	Name() string
}

// Gateway routes report generation across providers with retry and fallback.
type Gateway interface {
	Generate(ctx context.Context, req Request) (*Report, error)
}

// Request carries everything the prompt needs about one analysis.
type Request struct {
	Nickname   string
	Gender     voicetype.Gender
	Features   *analysis.FeatureVector
	Scores     *voicetype.ScoreSet
	Attributes voicetype.Attributes
}

// Report is the generated narrative plus usage accounting.
type Report struct {
	Content      string  `json:"content"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	LatencyMs    int64   `json:"latency_ms"`
}
