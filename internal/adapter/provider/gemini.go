package provider

import (
	"context"
	"fmt"
	"time"

	"smartquiz/internal/config"
	"smartquiz/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

// GeminiProvider is the primary hosted text-generation provider. It is
// only usable when an API key is configured; the chain skips it
// otherwise.
type GeminiProvider struct {
	llm     *googleai.GoogleAI
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGeminiProvider creates the Gemini client. A missing API key is
// not an error: the provider is returned unavailable so the fallback
// chain can move on.
func NewGeminiProvider(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) (*GeminiProvider, error) {
	p := &GeminiProvider{
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}
	if cfg.APIKey == "" {
		logger.Info("Gemini API key not configured, primary provider disabled")
		return p, nil
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.llm = llm
	logger.Info("GeminiProvider initialized", zap.String("model", cfg.Model))
	return p, nil
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) Available() bool {
	return p.llm != nil
}

// Generate sends the combined system instruction and task prompt to
// Gemini and returns the raw model text.
func (p *GeminiProvider) Generate(ctx context.Context, system, prompt, model string) (string, error) {
	if p.llm == nil {
		return "", domain.NewInternalError("Gemini provider is not configured", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	opts := []llms.CallOption{
		llms.WithTemperature(0.15),
		llms.WithMaxTokens(1500),
	}
	if model != "" {
		opts = append(opts, llms.WithModel(model))
	}

	response, err := p.llm.Call(ctx, system+"\n\n"+prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}
	return response, nil
}

var _ domain.TextProvider = (*GeminiProvider)(nil)
