package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/career-advisor/internal/analysis"
	"github.com/spigell/career-advisor/internal/apperr"
	"github.com/spigell/career-advisor/internal/catalog"
	"github.com/spigell/career-advisor/internal/metrics"
	"github.com/spigell/career-advisor/internal/speech"
)

// Analyzer turns a complete answer set into an analysis.
type Analyzer interface {
	Analyze(ctx context.Context, answers catalog.AnswerSet) (*analysis.Analysis, error)
	Catalog() *catalog.Catalog
}

// Speaker synthesizes speech and lists voices.
type Speaker interface {
	Synthesize(ctx context.Context, text, voiceID string) (*speech.AudioPayload, error)
	ListVoices(ctx context.Context) ([]speech.Voice, error)
}

type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type AnalyzeRequest struct {
	Answers []Answer `json:"answers"`
}

type SpeechRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

type VoicesResponse struct {
	Voices []speech.Voice `json:"voices"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type handlers struct {
	analyzer Analyzer
	speaker  Speaker
}

func (h *handlers) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Career Assessment API"})
}

func (h *handlers) questions(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyzer.Catalog())
}

func (h *handlers) analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// every analyze failure is reported as 500
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	answers := catalog.AnswerSet{}
	for _, item := range req.Answers {
		answers.Record(item.Question, item.Answer)
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), answers)
	metrics.ObserveAnalysis(err)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *handlers) speech(c *gin.Context) {
	var req SpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, &apperr.InvalidInputError{Reason: err.Error()})
		return
	}

	payload, err := h.speaker.Synthesize(c.Request.Context(), req.Text, req.VoiceID)
	metrics.ObserveSpeech(metrics.OperationSynthesize, err)
	if err != nil {
		respondError(c, apperr.HTTPStatus(err), err)
		return
	}

	c.JSON(http.StatusOK, payload)
}

func (h *handlers) voices(c *gin.Context) {
	voices, err := h.speaker.ListVoices(c.Request.Context())
	metrics.ObserveSpeech(metrics.OperationVoices, err)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, VoicesResponse{Voices: voices})
}

func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	requestLogger(c).Warn("request failed",
		zap.String("kind", apperr.Kind(err)),
		zap.Int("status", status),
		zap.Error(err),
	)

	c.JSON(status, ErrorResponse{Detail: err.Error()})
}
