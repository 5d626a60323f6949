// Package openai implements ai.Generator on top of the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spigell/career-advisor/internal/ai"
	"github.com/spigell/career-advisor/internal/apperr"
	"github.com/spigell/career-advisor/internal/logger"
)

const (
	Provider     = "openai"
	DefaultModel = "gpt-3.5-turbo"
)

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, e.g. for an OpenAI-compatible gateway.
	BaseURL string
}

type Generator struct {
	client *goopenai.Client
	model  string
	logger *zap.Logger
}

var _ ai.Generator = (*Generator)(nil)

func NewGenerator(cfg Config, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &apperr.InvalidInputError{Field: "llm.openai.api-key", Reason: "openai api key is required"}
	}

	clientConfig := goopenai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		client: goopenai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger.WithCommonFields(log, Provider, model),
	}, nil
}

// Generate performs one chat completion with a system and a user message.
func (g *Generator) Generate(ctx context.Context, req ai.Request) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("openai generator is not initialized")
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if system := strings.TrimSpace(req.System); system != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt})

	request := goopenai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxOutputTokens,
	}
	if req.JSON {
		request.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	if err != nil {
		g.logger.Debug("openai request failed", zap.Error(err))
		return "", apperr.Upstream(Provider, "create chat completion", err)
	}

	if len(resp.Choices) == 0 {
		return "", apperr.Upstream(Provider, "create chat completion", errors.New("openai api returned no choices"))
	}

	choice := resp.Choices[0]
	if strings.TrimSpace(choice.Message.Content) == "" {
		g.logger.Warn("openai returned empty content", zap.String("finish_reason", string(choice.FinishReason)))
	}

	// Blank content is still a reply; decoding reports it as malformed.
	return choice.Message.Content, nil
}

func (g *Generator) Provider() string {
	return Provider
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
