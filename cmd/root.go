package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/career-advisor/internal/ai"
	"github.com/spigell/career-advisor/internal/ai/gemini"
	"github.com/spigell/career-advisor/internal/ai/openai"
	"github.com/spigell/career-advisor/internal/analysis"
	"github.com/spigell/career-advisor/internal/catalog"
	"github.com/spigell/career-advisor/internal/logger"
	"github.com/spigell/career-advisor/internal/secrets"
	"github.com/spigell/career-advisor/internal/server"
	"github.com/spigell/career-advisor/internal/speech"
)

const (
	app       = "career-advisor"
	envPrefix = "CAREER_ADVISOR"

	envGeminiAPIKey       = "GEMINI_API_KEY"
	envOpenAIAPIKey       = "OPENAI_API_KEY"
	envAWSAccessKeyID     = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	envAWSRegion          = "AWS_REGION"
)

type Config struct {
	LLM         *LLMConfig    `mapstructure:"llm"`
	Speech      *SpeechConfig `mapstructure:"speech"`
	Server      *ServerConfig `mapstructure:"server"`
	Output      string        `mapstructure:"output"`
	CatalogFile string        `mapstructure:"catalog-file"`
}

type LLMConfig struct {
	Provider     string        `mapstructure:"provider"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
}

type SpeechConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access-key-id"`
	SecretAccessKey string `mapstructure:"secret-access-key"`
	Voice           string `mapstructure:"voice"`
}

type ServerConfig struct {
	Listen         string   `mapstructure:"listen"`
	AllowedOrigins []string `mapstructure:"allowed-origins"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "career-advisor runs a career assessment and asks a language model for guidance",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setConfigDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is career-advisor.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// setConfigDefaults registers environment bindings and default values.
func setConfigDefaults() {
	bindings := map[string]string{
		"llm.gemini.api-key":       envGeminiAPIKey,
		"llm.openai.api-key":       envOpenAIAPIKey,
		"speech.access-key-id":     envAWSAccessKeyID,
		"speech.secret-access-key": envAWSSecretAccessKey,
		"speech.region":            envAWSRegion,
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("llm.provider", gemini.Provider)
	viper.SetDefault("llm.timeout", 60*time.Second)
	viper.SetDefault("llm.max-log-length", 200)
	viper.SetDefault("llm.gemini.model", gemini.DefaultModel)
	viper.SetDefault("llm.openai.model", openai.DefaultModel)
	viper.SetDefault("speech.enabled", false)
	viper.SetDefault("speech.region", speech.DefaultRegion)
	viper.SetDefault("speech.voice", speech.DefaultVoice)
	viper.SetDefault("server.listen", server.DefaultListen)
	viper.SetDefault("server.allowed-origins", []string{server.DefaultAllowedOrigin})
	viper.SetDefault("output", analysis.DefaultFile)
	viper.SetDefault("catalog-file", "")
}

func initConfig() {
	// A missing .env is fine, variables may come from the real environment.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless it was asked for explicitly.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		return nil, errors.New("config is empty")
	}
	if config.LLM == nil {
		config.LLM = &LLMConfig{}
	}
	if config.LLM.Gemini == nil {
		config.LLM.Gemini = &GeminiConfig{}
	}
	if config.LLM.OpenAI == nil {
		config.LLM.OpenAI = &OpenAIConfig{}
	}
	if config.Speech == nil {
		config.Speech = &SpeechConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}

	return config, nil
}

// Commands that own stdout (prompts, tables, reports) log to stderr instead.
const (
	logToStdout = ""
	logToStderr = "stderr"
)

func newLogger(output string) *zap.Logger {
	l, err := logger.New(logger.Options{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		Output: output,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func newGenerator(ctx context.Context, cfg *LLMConfig, log *zap.Logger) (ai.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", gemini.Provider:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  cfg.Gemini.APIKeyFile,
			Value: cfg.Gemini.APIKey,
			Env:   envGeminiAPIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (or set llm.gemini.api-key-file)", err)
		}
		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, log)
		if err != nil {
			return nil, err
		}
		return generator, nil
	case openai.Provider:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			File:  cfg.OpenAI.APIKeyFile,
			Value: cfg.OpenAI.APIKey,
			Env:   envOpenAIAPIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (or set llm.openai.api-key-file)", err)
		}
		generator, err := openai.NewGenerator(openai.Config{
			APIKey:  apiKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		}, log)
		if err != nil {
			return nil, err
		}
		return generator, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

func newAdvisor(ctx context.Context, config *Config, log *zap.Logger) (*ai.Advisor, error) {
	cat, err := catalog.Load(config.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	generator, err := newGenerator(ctx, config.LLM, log)
	if err != nil {
		return nil, err
	}

	return ai.NewAdvisor(generator, cat, ai.AdvisorConfig{
		Timeout:      config.LLM.Timeout,
		MaxLogLength: config.LLM.MaxLogLength,
	}, log), nil
}

func newSpeechClient(ctx context.Context, cfg *SpeechConfig, log *zap.Logger) (*speech.Client, error) {
	return speech.NewFromConfig(ctx, speech.Config{
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Voice:           cfg.Voice,
	}, log)
}
