package llmservice

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"

	"pdf-rag-chat/internal/config"
)

// NewOllamaLLM builds a langchaingo model client for one model on an
// Ollama-compatible endpoint.
func NewOllamaLLM(llmConfig *config.LLMConfig) (llms.Model, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	return llm, nil
}

// GenerateText sends a single user prompt and returns the model's text
// output. One blocking round-trip, no retries.
func GenerateText(ctx context.Context, model llms.Model, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}
	res, err := model.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	return firstChoice(res)
}

// GenerateVision sends an instruction plus one image to a vision-capable
// model and returns its text output.
func GenerateVision(ctx context.Context, model llms.Model, instruction, mimeType string, image []byte) (string, error) {
	messages := []llms.MessageContent{
		{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(instruction),
				llms.BinaryPart(mimeType, image),
			},
		},
	}
	res, err := model.GenerateContent(ctx, messages, llms.WithTemperature(0))
	if err != nil {
		return "", err
	}
	return firstChoice(res)
}

func firstChoice(res *llms.ContentResponse) (string, error) {
	if res == nil || len(res.Choices) == 0 {
		return "", fmt.Errorf("llmservice: response contained no choices")
	}
	return res.Choices[0].Content, nil
}
