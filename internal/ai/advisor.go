package ai

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/career-advisor/internal/analysis"
	"github.com/spigell/career-advisor/internal/apperr"
	"github.com/spigell/career-advisor/internal/catalog"
	"github.com/spigell/career-advisor/internal/logger"
	"github.com/spigell/career-advisor/internal/prompt"
	"github.com/spigell/career-advisor/internal/util"
)

const defaultMaxLogLength = 200

// Advisor turns answer sets into validated analyses using a Generator.
type Advisor struct {
	generator Generator
	catalog   *catalog.Catalog
	timeout   time.Duration
	maxLogLen int
	logger    *zap.Logger
}

// AdvisorConfig holds the optional knobs of an Advisor.
type AdvisorConfig struct {
	// Timeout bounds a single upstream call. Zero leaves the caller's context untouched.
	Timeout time.Duration
	// MaxLogLength limits prompt and reply previews in debug logs.
	MaxLogLength int
}

func NewAdvisor(generator Generator, cat *catalog.Catalog, cfg AdvisorConfig, log *zap.Logger) *Advisor {
	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Advisor{
		generator: generator,
		catalog:   cat,
		timeout:   cfg.Timeout,
		maxLogLen: maxLogLen,
		logger:    logger.WithCommonFields(log, generator.Provider(), generator.Model()),
	}
}

// Catalog returns the question catalog the advisor builds prompts from.
func (a *Advisor) Catalog() *catalog.Catalog {
	return a.catalog
}

// Analyze builds the prompt for answers and requests an analysis for it.
func (a *Advisor) Analyze(ctx context.Context, answers catalog.AnswerSet) (*analysis.Analysis, error) {
	text, err := prompt.Build(answers, a.catalog)
	if err != nil {
		return nil, err
	}

	return a.RequestAnalysis(ctx, text)
}

// RequestAnalysis sends text to the model once and validates the reply.
func (a *Advisor) RequestAnalysis(ctx context.Context, text string) (*analysis.Analysis, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	a.logger.Debug("generate analysis request",
		zap.Int("prompt_length", utf8.RuneCountInString(text)),
		zap.String("prompt_preview", util.TruncateForLog(text, a.maxLogLen)),
	)

	raw, err := a.generator.Generate(ctx, Request{
		System:          prompt.SystemInstruction,
		Prompt:          text,
		Temperature:     AnalysisTemperature,
		MaxOutputTokens: AnalysisMaxOutputTokens,
		JSON:            true,
	})
	if err != nil {
		var upstream *apperr.UpstreamUnavailableError
		if !errors.As(err, &upstream) {
			err = apperr.Upstream(a.generator.Provider(), "generate content", err)
		}
		a.logger.Warn("generate analysis failed", zap.Error(err))
		return nil, err
	}

	a.logger.Debug("generate analysis response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, a.maxLogLen)),
	)

	result, err := analysis.Decode(raw)
	if err != nil {
		a.logger.Warn("model reply rejected",
			zap.String("kind", apperr.Kind(err)),
			zap.String("response_preview", util.TruncateForLog(raw, a.maxLogLen)),
			zap.Error(err),
		)
		return nil, err
	}

	return result, nil
}
