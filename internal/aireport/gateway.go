package aireport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soniva/backend/internal/config"
)

type gateway struct {
	providers        map[string]Provider
	defaultProvider  string
	fallbackProvider string
	maxRetries       int
	template         *TemplateComposer
}

// NewGateway wires the configured providers. The template composer is always
// registered as the terminal fallback, so Generate only fails on context
// cancellation.
func NewGateway(cfg config.ReportConfig) Gateway {
	g := &gateway{
		providers:        make(map[string]Provider),
		defaultProvider:  cfg.DefaultProvider,
		fallbackProvider: cfg.FallbackProvider,
		maxRetries:       cfg.MaxRetries,
		template:         NewTemplateComposer(),
	}

	if cfg.OpenAIKey != "" {
		g.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey, cfg.DefaultModel)
	}
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey, "")
	}

	return g
}

func (g *gateway) Generate(ctx context.Context, req Request) (*Report, error) {
	resp, err := g.generateWithRetry(ctx, g.defaultProvider, req)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if g.fallbackProvider != "" && g.fallbackProvider != g.defaultProvider {
		slog.Warn("primary report provider failed, trying fallback",
			"primary", g.defaultProvider,
			"fallback", g.fallbackProvider,
			"error", err,
		)
		resp, err = g.generateWithRetry(ctx, g.fallbackProvider, req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	slog.Warn("report providers unavailable, composing from template", "error", err)
	return g.template.GenerateReport(ctx, req)
}

func (g *gateway) generateWithRetry(ctx context.Context, providerName string, req Request) (*Report, error) {
	p, ok := g.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", providerName)
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			slog.Debug("retrying report generation", "provider", providerName, "attempt", attempt)
		}

		resp, err := p.GenerateReport(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all retries exhausted for %s: %w", providerName, lastErr)
}
