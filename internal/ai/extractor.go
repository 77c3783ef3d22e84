// README: Extractor composes the LLM path with the rule fallback behind a breaker.
package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/circuit"
	"dispatch/internal/metrics"
	"dispatch/internal/types"
)

// llmTimeout is the total deadline for the LLM path including network.
const llmTimeout = 8 * time.Second

// Extractor runs the LLM path under the mediator policy and falls back to
// the deterministic rules on any failure. Callers always get an Extraction.
type Extractor struct {
	provider Provider
	rules    *RuleExtractor
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewExtractor(provider Provider, breaker *circuit.Breaker, logger *slog.Logger) *Extractor {
	return &Extractor{
		provider: provider,
		rules:    NewRuleExtractor(),
		breaker:  breaker,
		logger:   logger,
	}
}

// Extract never fails: if the LLM path errors, times out, or the breaker is
// open, the rule path answers with the identical schema.
func (e *Extractor) Extract(ctx context.Context, message string, history []types.Turn, trade string, now time.Time) *Extraction {
	if e.provider != nil {
		ctx, cancel := context.WithTimeout(ctx, llmTimeout)
		defer cancel()
		var result *Extraction
		err := circuit.Do(ctx, e.breaker, circuit.DefaultRetry(llmTimeout), isTransient,
			func(ctx context.Context) error {
				ex, err := e.provider.Extract(ctx, message, history, trade, now)
				if err != nil {
					return err
				}
				result = ex
				return nil
			})
		if err == nil {
			return result
		}
		metrics.ProviderFallbacksTotal.WithLabelValues("llm").Inc()
		e.logger.Warn("llm extraction failed, using rules", "error", err)
	}
	return e.rules.Extract(message, trade)
}

// isTransient decides whether a provider error is worth a retry. Parse
// failures are deterministic; everything network-shaped is retried.
func isTransient(err error) bool {
	if errors.Is(err, ErrBadResponse) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
