package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// textGenerator is the slice of the genai client the provider uses
type textGenerator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

type genaiGenerator struct {
	client *genai.Client
}

func (g genaiGenerator) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text, err := result.Text()
	if err != nil {
		return "", fmt.Errorf("get text from result: %w", err)
	}
	return text, nil
}

// GeminiProvider implements the Provider interface for Google Gemini models
type GeminiProvider struct {
	gen    textGenerator
	config Config
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: config.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiProvider{gen: genaiGenerator{client: client}, config: config}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable reports whether the client was configured; the API has no cheap probe
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	return p.gen != nil && p.config.APIKey != ""
}

// Generate produces a completion. The system instruction is prepended to the
// prompt; sampling uses the model defaults.
func (p *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := p.config.model(req.Model, defaultGeminiModel)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()

	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + prompt
	}

	text, err := p.gen.GenerateText(ctxWithTimeout, model, prompt)
	if err != nil {
		zap.L().Debug("gemini generate failed", zap.String("model", model), zap.Error(err))
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	text = strings.TrimSpace(text)
	return &GenerateResponse{
		Text:  text,
		Model: model,
		// Rough estimate: 1 token ≈ 4 characters
		TokensUsed: (len(prompt) + len(text)) / 4,
	}, nil
}
