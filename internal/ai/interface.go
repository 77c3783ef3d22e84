// README: Provider contract for LLM-backed extraction.
package ai

import (
	"context"
	"time"

	"dispatch/internal/types"
)

// Provider defines the contract for the LLM extraction path. Keeping it this
// narrow means swapping models or vendors is a one-file change; provider
// message shapes never leak past this package.
type Provider interface {
	// Extract reads the latest customer message in the context of prior
	// turns and returns the structured extraction.
	Extract(ctx context.Context, message string, history []types.Turn, trade string, now time.Time) (*Extraction, error)
}
