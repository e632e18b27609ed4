package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = "You are an expert software engineer. Rewrite the " +
	"following change request into a precise, self-contained instruction " +
	"for an autonomous coding agent working inside a checkout of the " +
	"repository. Keep the ticket id. Reply with the instruction only."

// OpenAIPlanner refines instructions through a chat completion.
type OpenAIPlanner struct {
	client *openai.Client
	logger *zap.Logger
	model  string
}

// NewOpenAIPlanner creates an OpenAI-backed planner.
func NewOpenAIPlanner(apiKey, model string, logger *zap.Logger) *OpenAIPlanner {
	client := openai.NewClient(apiKey)

	if model == "" {
		model = openai.GPT4TurboPreview
	}

	return &OpenAIPlanner{
		client: client,
		logger: logger,
		model:  model,
	}
}

// Refine asks the model for a sharper version of the instruction.
func (p *OpenAIPlanner) Refine(ctx context.Context, instruction string) (string, error) {
	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: instruction,
				},
			},
			Temperature: 0.2,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	refined := strings.TrimSpace(resp.Choices[0].Message.Content)
	if refined == "" {
		return "", fmt.Errorf("empty response from model")
	}

	p.logger.Info("refined instruction",
		zap.Int("original_len", len(instruction)),
		zap.Int("refined_len", len(refined)),
	)

	return refined, nil
}
