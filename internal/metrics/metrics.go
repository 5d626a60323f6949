package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/spigell/career-advisor/internal/apperr"
)

const (
	OutcomeSuccess = "success"

	OperationSynthesize = "synthesize"
	OperationVoices     = "voices"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_advisor_analyses_total",
			Help: "Total number of analysis requests by outcome",
		},
		[]string{"outcome"},
	)

	SpeechRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_advisor_speech_requests_total",
			Help: "Total number of speech provider requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "career_advisor_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route", "status"},
	)
)

// Outcome labels err with its error kind, or "success" when nil.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	return apperr.Kind(err)
}

func ObserveAnalysis(err error) {
	AnalysesTotal.WithLabelValues(Outcome(err)).Inc()
}

func ObserveSpeech(operation string, err error) {
	SpeechRequestsTotal.WithLabelValues(operation, Outcome(err)).Inc()
}

func ObserveHTTP(method, route, status string, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}
