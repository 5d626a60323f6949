package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/career-advisor/internal/ai/gemini"
	"github.com/spigell/career-advisor/internal/ai/openai"
	"github.com/spigell/career-advisor/internal/analysis"
	"github.com/spigell/career-advisor/internal/server"
)

func TestGetConfigDefaults(t *testing.T) {
	config, err := getConfig()
	require.NoError(t, err)

	assert.Equal(t, gemini.Provider, config.LLM.Provider)
	assert.Equal(t, 60*time.Second, config.LLM.Timeout)
	assert.Equal(t, gemini.DefaultModel, config.LLM.Gemini.Model)
	assert.Equal(t, openai.DefaultModel, config.LLM.OpenAI.Model)
	assert.Equal(t, "us-west-2", config.Speech.Region)
	assert.Equal(t, "Joanna", config.Speech.Voice)
	assert.False(t, config.Speech.Enabled)
	assert.Equal(t, server.DefaultListen, config.Server.Listen)
	assert.Equal(t, []string{server.DefaultAllowedOrigin}, config.Server.AllowedOrigins)
	assert.Equal(t, analysis.DefaultFile, config.Output)
}

func TestGetConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "career-advisor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: openai
  timeout: 5s
  openai:
    model: gpt-4o-mini
    base-url: http://localhost:8080/v1
speech:
  enabled: true
  voice: Matthew
server:
  allowed-origins:
    - https://careers.example.com
`), 0o600))

	v := viper.GetViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	t.Cleanup(func() {
		viper.Reset()
		setConfigDefaults()
	})

	config, err := getConfig()
	require.NoError(t, err)

	assert.Equal(t, "openai", config.LLM.Provider)
	assert.Equal(t, 5*time.Second, config.LLM.Timeout)
	assert.Equal(t, "gpt-4o-mini", config.LLM.OpenAI.Model)
	assert.Equal(t, "http://localhost:8080/v1", config.LLM.OpenAI.BaseURL)
	assert.True(t, config.Speech.Enabled)
	assert.Equal(t, "Matthew", config.Speech.Voice)
	assert.Equal(t, []string{"https://careers.example.com"}, config.Server.AllowedOrigins)
}

func TestNewLoggerWritesToOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assess.log")

	log := newLogger(path)
	log.Info("collecting answers")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "collecting answers")
}

func TestNewGeneratorMissingKeyFailsFast(t *testing.T) {
	t.Setenv(envGeminiAPIKey, "")

	_, err := newGenerator(context.Background(), &LLMConfig{
		Provider: "gemini",
		Gemini:   &GeminiConfig{},
		OpenAI:   &OpenAIConfig{},
	}, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), envGeminiAPIKey)
}

func TestNewGeneratorOpenAI(t *testing.T) {
	generator, err := newGenerator(context.Background(), &LLMConfig{
		Provider: "OpenAI",
		Gemini:   &GeminiConfig{},
		OpenAI:   &OpenAIConfig{APIKey: "sk-test"},
	}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, openai.Provider, generator.Provider())
	assert.Equal(t, openai.DefaultModel, generator.Model())
}

func TestNewGeneratorUnknownProvider(t *testing.T) {
	_, err := newGenerator(context.Background(), &LLMConfig{
		Provider: "llama",
		Gemini:   &GeminiConfig{},
		OpenAI:   &OpenAIConfig{},
	}, zap.NewNop())

	assert.ErrorContains(t, err, "unsupported llm provider")
}
