// Package server exposes the assessment and speech flows over HTTP.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const DefaultAllowedOrigin = "http://localhost:3000"

type RouterConfig struct {
	AllowedOrigins []string
	Analyzer       Analyzer
	// Speaker is optional; speech routes are registered only when it is set.
	Speaker Speaker
	Logger  *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{DefaultAllowedOrigin}
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestID(log),
		RequestLogger(),
		Metrics(),
		CORS(origins),
	)

	h := &handlers{analyzer: cfg.Analyzer, speaker: cfg.Speaker}

	router.GET("/", h.root)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/questions", h.questions)
		api.POST("/analyze", h.analyze)

		if cfg.Speaker != nil {
			api.POST("/speech", h.speech)
			api.GET("/voices", h.voices)
		}
	}

	return router
}
