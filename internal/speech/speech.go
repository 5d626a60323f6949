// Package speech converts text to audio with Amazon Polly.
package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/spigell/career-advisor/internal/apperr"
	"github.com/spigell/career-advisor/internal/logger"
)

const (
	Provider = "polly"

	DefaultVoice  = "Joanna"
	DefaultRegion = "us-west-2"

	contentTypeMP3 = "audio/mpeg"
)

// PollyAPI is the subset of the Polly client used here.
type PollyAPI interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
	DescribeVoices(ctx context.Context, params *polly.DescribeVoicesInput, optFns ...func(*polly.Options)) (*polly.DescribeVoicesOutput, error)
}

type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// Voice is used when a request does not name one.
	Voice string
}

// AudioPayload is a synthesized mp3 encoded for JSON transport.
type AudioPayload struct {
	AudioBase64 string `json:"audio"`
	ContentType string `json:"content_type"`
}

// Bytes decodes the audio back to raw mp3 data.
func (p *AudioPayload) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.AudioBase64)
}

type Voice struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Gender           string   `json:"gender"`
	LanguageCode     string   `json:"language_code"`
	LanguageName     string   `json:"language_name"`
	SupportedEngines []string `json:"supported_engines"`
}

type Client struct {
	api          PollyAPI
	defaultVoice string
	logger       *zap.Logger
}

func New(api PollyAPI, defaultVoice string, log *zap.Logger) *Client {
	if defaultVoice = strings.TrimSpace(defaultVoice); defaultVoice == "" {
		defaultVoice = DefaultVoice
	}

	return &Client{
		api:          api,
		defaultVoice: defaultVoice,
		logger:       logger.WithFields(log, zap.String(logger.FieldProvider, Provider)),
	}
}

// NewFromConfig builds a Polly client from the default AWS credential chain, overridden by
// static credentials when both keys are set.
func NewFromConfig(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}

	accessKey, secretKey := strings.TrimSpace(cfg.AccessKeyID), strings.TrimSpace(cfg.SecretAccessKey)
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return New(polly.NewFromConfig(awsCfg), cfg.Voice, log), nil
}

// Synthesize converts text to mp3 speech. Blank text is rejected before Polly is called.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) (*AudioPayload, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &apperr.InvalidInputError{Field: "text", Reason: "must not be empty"}
	}

	if voiceID = strings.TrimSpace(voiceID); voiceID == "" {
		voiceID = c.defaultVoice
	}

	log := c.logger.With(zap.String(logger.FieldVoice, voiceID))
	log.Debug("synthesize speech", zap.Int("text_length", len(text)))

	out, err := c.api.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		OutputFormat: types.OutputFormatMp3,
		VoiceId:      types.VoiceId(voiceID),
		Engine:       types.EngineNeural,
	})
	if err != nil {
		c.logFailure(log, "synthesize speech", err)
		return nil, apperr.Upstream(Provider, "synthesize speech", err)
	}

	if out == nil || out.AudioStream == nil {
		return nil, apperr.Upstream(Provider, "synthesize speech", errors.New("polly returned no audio stream"))
	}
	defer out.AudioStream.Close()

	audio, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return nil, apperr.Upstream(Provider, "read audio stream", err)
	}

	log.Debug("speech synthesized", zap.Int("audio_bytes", len(audio)))

	return &AudioPayload{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		ContentType: contentTypeMP3,
	}, nil
}

// ListVoices returns every voice Polly offers, following pagination.
func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	voices := make([]Voice, 0)
	input := &polly.DescribeVoicesInput{}

	for {
		out, err := c.api.DescribeVoices(ctx, input)
		if err != nil {
			c.logFailure(c.logger, "describe voices", err)
			return nil, apperr.Upstream(Provider, "describe voices", err)
		}
		if out == nil {
			break
		}

		for _, v := range out.Voices {
			voices = append(voices, convertVoice(v))
		}

		if aws.ToString(out.NextToken) == "" {
			break
		}
		input = &polly.DescribeVoicesInput{NextToken: out.NextToken}
	}

	c.logger.Debug("voices listed", zap.Int("count", len(voices)))

	return voices, nil
}

func (c *Client) logFailure(log *zap.Logger, op string, err error) {
	fields := []zap.Field{zap.String("operation", op), zap.Error(err)}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fields = append(fields, zap.String("error_code", apiErr.ErrorCode()))
	}

	log.Warn("polly request failed", fields...)
}

func convertVoice(v types.Voice) Voice {
	engines := make([]string, 0, len(v.SupportedEngines))
	for _, engine := range v.SupportedEngines {
		engines = append(engines, string(engine))
	}

	return Voice{
		ID:               string(v.Id),
		Name:             aws.ToString(v.Name),
		Gender:           string(v.Gender),
		LanguageCode:     string(v.LanguageCode),
		LanguageName:     aws.ToString(v.LanguageName),
		SupportedEngines: engines,
	}
}
