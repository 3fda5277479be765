package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"smartquiz/internal/config"
	"smartquiz/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// OllamaProvider is the local fallback provider, talking to an Ollama
// server. It can be disabled entirely through configuration.
type OllamaProvider struct {
	llm     *ollama.LLM
	enabled bool
	timeout time.Duration
	logger  *zap.Logger
}

// NewOllamaProvider creates the Ollama client against the configured
// server URL and default model.
func NewOllamaProvider(cfg config.OllamaConfig, logger *zap.Logger) (*OllamaProvider, error) {
	p := &OllamaProvider{
		enabled: cfg.Enabled,
		timeout: cfg.Timeout,
		logger:  logger,
	}
	if !cfg.Enabled {
		logger.Info("Ollama fallback disabled by configuration")
		return p, nil
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     10 * time.Second,
		},
	}

	llm, err := ollama.New(
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.Model),
		ollama.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	p.llm = llm
	logger.Info("OllamaProvider initialized",
		zap.String("server_url", cfg.ServerURL),
		zap.String("model", cfg.Model))
	return p, nil
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

func (p *OllamaProvider) Available() bool {
	return p.enabled && p.llm != nil
}

// Generate sends the full prompt to the local Ollama server. Ollama
// has no separate system channel here, so system and task prompts are
// concatenated the same way the hosted provider combines them.
func (p *OllamaProvider) Generate(ctx context.Context, system, prompt, model string) (string, error) {
	if !p.Available() {
		return "", domain.NewInternalError("Ollama provider is not available", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	opts := []llms.CallOption{llms.WithTemperature(0.15)}
	if model != "" {
		opts = append(opts, llms.WithModel(model))
	}

	response, err := p.llm.Call(ctx, system+"\n\n"+prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("ollama call failed: %w", err)
	}
	return response, nil
}

var _ domain.TextProvider = (*OllamaProvider)(nil)
