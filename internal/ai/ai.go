// Package ai sends assessment prompts to a generative model and turns the reply into an analysis.
package ai

import "context"

const (
	// AnalysisTemperature is the sampling temperature used for every analysis request.
	AnalysisTemperature float32 = 0.7
	// AnalysisMaxOutputTokens caps the length of the model reply.
	AnalysisMaxOutputTokens = 2000
)

// Request is a single generation call.
type Request struct {
	System          string
	Prompt          string
	Temperature     float32
	MaxOutputTokens int
	// JSON asks the provider to constrain the reply to a JSON object.
	JSON bool
}

// Generator is a generative-model provider. Implementations perform exactly one upstream
// call per Generate and report failures as *apperr.UpstreamUnavailableError.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Provider() string
	Model() string
}
