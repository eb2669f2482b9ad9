package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubGenerator struct {
	model  string
	prompt string
	text   string
	err    error
}

func (s *stubGenerator) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	s.model = model
	s.prompt = prompt
	return s.text, s.err
}

func TestGeminiProvider_Generate(t *testing.T) {
	gen := &stubGenerator{text: "  context text \n"}
	provider := &GeminiProvider{gen: gen, config: Config{APIKey: "k"}}

	resp, err := provider.Generate(context.Background(), GenerateRequest{System: "sys", Prompt: "prompt"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Text != "context text" {
		t.Errorf("Unexpected text: %q", resp.Text)
	}
	if gen.model != defaultGeminiModel {
		t.Errorf("Expected default model, got %s", gen.model)
	}
	if !strings.HasPrefix(gen.prompt, "sys\n\n") || !strings.HasSuffix(gen.prompt, "prompt") {
		t.Errorf("System instruction not prepended: %q", gen.prompt)
	}
}

func TestGeminiProvider_Generate_Error(t *testing.T) {
	provider := &GeminiProvider{gen: &stubGenerator{err: errors.New("429 resource exhausted")}, config: Config{APIKey: "k", Model: "gemini-pro"}}

	if _, err := provider.Generate(context.Background(), GenerateRequest{Prompt: "x"}); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), Config{}); err == nil {
		t.Error("Expected error without API key")
	}
}
