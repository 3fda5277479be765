package provider

import (
	"context"

	"smartquiz/internal/domain"

	"go.uber.org/zap"
)

// Chain tries an ordered list of providers until one returns text.
// Retry granularity is "try next provider", never "retry same
// provider": a failing provider contributes its error and the chain
// moves on. When every provider is skipped or fails the chain reports
// CodeProviderUnavailable carrying the last underlying error.
type Chain struct {
	providers []domain.TextProvider
	logger    *zap.Logger
}

// NewChain builds a fallback chain. Order matters: providers are tried
// strictly in the order given.
func NewChain(logger *zap.Logger, providers ...domain.TextProvider) *Chain {
	return &Chain{
		providers: providers,
		logger:    logger,
	}
}

// Generate implements domain.TextGenerator.
func (c *Chain) Generate(ctx context.Context, system, prompt, model string) (string, error) {
	var lastErr error

	for _, p := range c.providers {
		if !p.Available() {
			c.logger.Debug("Skipping unavailable provider", zap.String("provider", p.Name()))
			continue
		}

		text, err := p.Generate(ctx, system, prompt, model)
		if err != nil {
			lastErr = err
			c.logger.Warn("Provider call failed, trying next provider",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}

		c.logger.Info("Provider call succeeded", zap.String("provider", p.Name()))
		return text, nil
	}

	return "", domain.NewProviderUnavailableError(lastErr)
}

var _ domain.TextGenerator = (*Chain)(nil)
