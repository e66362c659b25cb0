package ai

import (
	"context"

	"github.com/bryanwahyu/automaton-poc/internal/domain/analysis"
)

// Client wraps the generative-text service. One call, bounded by maxTokens;
// usage is whatever the provider reported for that call.
type Client interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, analysis.TokenUsage, error)
}
