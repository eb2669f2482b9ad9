package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/newsmania/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name disables LLM features and returns (nil, nil).
func NewProvider(config Config) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch strings.ToLower(config.Provider) {
	case "openai":
		p, err = NewOpenAIProvider(config)
	case "anthropic", "claude":
		p, err = NewAnthropicProvider(config)
	case "gemini", "google":
		p, err = NewGeminiProvider(context.Background(), config)
	case "ollama":
		p, err = NewOllamaProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, gemini, ollama)", config.Provider)
	}

	if err != nil {
		return nil, err
	}
	return p, nil
}

// ConfigFromModel converts the application config to llm.Config
func ConfigFromModel(llmConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:   llmConfig.Provider,
		Model:      llmConfig.Model,
		APIKey:     llmConfig.APIKey,
		BaseURL:    llmConfig.BaseURL,
		Timeout:    llmConfig.Timeout,
		MaxTokens:  llmConfig.MaxTokens,
		HTTPProxy:  httpConfig.HTTPProxy,
		HTTPSProxy: httpConfig.HTTPSProxy,
		NoProxy:    httpConfig.NoProxy,
	}
}
