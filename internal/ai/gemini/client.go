package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/career-advisor/internal/ai"
	"github.com/spigell/career-advisor/internal/apperr"
	"github.com/spigell/career-advisor/internal/logger"
)

const (
	Provider     = "gemini"
	DefaultModel = "gemini-2.5-flash"

	jsonMIMEType = "application/json"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client and implements ai.Generator.
type Generator struct {
	models contentGenerator
	model  string
	logger *zap.Logger
}

var _ ai.Generator = (*Generator)(nil)

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, &apperr.InvalidInputError{Field: "llm.gemini.api-key", Reason: "gemini api key is required"}
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, model, log), nil
}

func newGenerator(models contentGenerator, model string, log *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}

	return &Generator{
		models: models,
		model:  model,
		logger: logger.WithCommonFields(log, Provider, model),
	}
}

// Generate sends a single request to Gemini and returns the textual reply.
func (g *Generator) Generate(ctx context.Context, req ai.Request) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxOutputTokens)
	}
	if system := strings.TrimSpace(req.System); system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.JSON {
		config.ResponseMIMEType = jsonMIMEType
	}
	if budget := thinkingBudget(g.model); budget != nil {
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: budget}
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), config)
	if err != nil {
		g.logger.Debug("gemini request failed", zap.Error(err))
		return "", apperr.Upstream(Provider, "generate content", err)
	}

	if !hasContent(resp) {
		return "", apperr.Upstream(Provider, "generate content", errors.New("gemini api returned no candidates"))
	}

	// Blank text is still a reply; decoding reports it as malformed.
	return responseText(resp), nil
}

// thinkingBudget turns thinking off for flash models, where thought tokens count against
// MaxOutputTokens. Pro models cannot disable thinking and keep their default.
func thinkingBudget(model string) *int32 {
	if strings.Contains(strings.ToLower(model), "flash") {
		return genai.Ptr[int32](0)
	}
	return nil
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

func hasContent(resp *genai.GenerateContentResponse) bool {
	if resp == nil {
		return false
	}
	for _, candidate := range resp.Candidates {
		if candidate != nil && candidate.Content != nil {
			return true
		}
	}
	return false
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			builder.WriteString(part.Text)
		}
		// only the first candidate with content is used
		if builder.Len() > 0 {
			break
		}
	}

	return builder.String()
}
