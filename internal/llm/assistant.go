package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/newsmania/internal/model"
)

// InvalidInputError is returned when a question or context request lacks required fields.
// Its message is suitable to show the user.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

const (
	assistantTemperature = 0.7
	assistantMaxTokens   = 500
	notAvailable         = "Not available"
)

const chatPrompt = `You are a helpful assistant that answers questions about news articles. Provide factual, balanced information without political bias.

Article Title: %s
Article Description: %s
Article Content: %s

User Question: %s

Please answer the question based on the article content. If the answer cannot be determined from the article, say so clearly but try to provide general information that might be helpful.`

const contextPrompt = `You are a helpful assistant that provides background context for news articles. Provide factual, balanced information without political bias.

Article Title: %s
Article Description: %s
Article Content: %s

Please provide background context and additional information about this news topic in 3-4 paragraphs.`

// Assistant answers questions about articles and generates background context.
// A nil provider makes every call return the fallback text.
type Assistant struct {
	provider Provider
}

// NewAssistant creates an assistant backed by provider (may be nil)
func NewAssistant(provider Provider) *Assistant {
	return &Assistant{provider: provider}
}

// Enabled reports whether a provider is configured
func (a *Assistant) Enabled() bool {
	return a.provider != nil
}

// Answer responds to a question about an article. Generation failures are
// reported as a fallback sentence, never as an error; only missing input errors.
func (a *Assistant) Answer(ctx context.Context, article model.Article, question string) (string, error) {
	if article.Title == "" || question == "" {
		return "", &InvalidInputError{Message: "I need both article information and a question to provide a helpful answer."}
	}

	prompt := fmt.Sprintf(chatPrompt,
		article.Title,
		orNotAvailable(article.Description),
		orNotAvailable(article.Content),
		question)

	text, err := a.generate(ctx, prompt)
	if err != nil {
		zap.L().Warn("chat generation failed", zap.String("title", article.Title), zap.Error(err))
		return fmt.Sprintf("I'm having trouble analyzing the article \"%s\" to answer your question. This might be due to temporary service limitations. You might want to try a different question or try again later.", article.Title), nil
	}
	if text == "" {
		return fmt.Sprintf("I don't have enough information in the article to answer your question about \"%s\" specifically. You might want to try asking a different question or consulting additional sources.", article.Title), nil
	}
	return text, nil
}

// Context generates background context for an article, with the same
// fallback policy as Answer
func (a *Assistant) Context(ctx context.Context, article model.Article) (string, error) {
	if article.Title == "" {
		return "", &InvalidInputError{Message: "Unable to generate context without article information. Please provide a valid article."}
	}

	prompt := fmt.Sprintf(contextPrompt,
		article.Title,
		orNotAvailable(article.Description),
		orNotAvailable(article.Content))

	text, err := a.generate(ctx, prompt)
	if err != nil {
		zap.L().Warn("context generation failed", zap.String("title", article.Title), zap.Error(err))
		return fmt.Sprintf("This article titled \"%s\" may require additional context. While our AI system couldn't generate specific background information at this moment, you can look for related news from multiple sources to get a more complete picture.", article.Title), nil
	}
	if text == "" {
		return "This news topic appears to be about " + article.Title + ". While specific context couldn't be generated, you can research more about this topic through reliable news sources and fact-checking websites.", nil
	}
	return text, nil
}

func (a *Assistant) generate(ctx context.Context, prompt string) (string, error) {
	if a.provider == nil {
		return "", ErrDisabled
	}

	resp, err := a.provider.Generate(ctx, GenerateRequest{
		Prompt:      prompt,
		MaxTokens:   assistantMaxTokens,
		Temperature: assistantTemperature,
	})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errors.New("empty response")
	}

	zap.L().Debug("generated text", zap.String("provider", a.provider.Name()), zap.Int("tokens", resp.TokensUsed))
	return resp.Text, nil
}

func orNotAvailable(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
