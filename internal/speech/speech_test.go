package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/career-advisor/internal/apperr"
)

type fakePolly struct {
	synthOut *polly.SynthesizeSpeechOutput
	synthErr error

	pages    []*polly.DescribeVoicesOutput
	voiceErr error

	synthCalls []*polly.SynthesizeSpeechInput
	voiceCalls []*polly.DescribeVoicesInput
}

func (f *fakePolly) SynthesizeSpeech(_ context.Context, params *polly.SynthesizeSpeechInput, _ ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error) {
	f.synthCalls = append(f.synthCalls, params)
	return f.synthOut, f.synthErr
}

func (f *fakePolly) DescribeVoices(_ context.Context, params *polly.DescribeVoicesInput, _ ...func(*polly.Options)) (*polly.DescribeVoicesOutput, error) {
	f.voiceCalls = append(f.voiceCalls, params)
	if f.voiceErr != nil {
		return nil, f.voiceErr
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

type trackingReader struct {
	io.Reader
	closed bool
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}

func TestSynthesizeEncodesAudio(t *testing.T) {
	stream := &trackingReader{Reader: strings.NewReader("ID3-audio")}
	api := &fakePolly{synthOut: &polly.SynthesizeSpeechOutput{AudioStream: stream}}

	payload, err := New(api, "", zap.NewNop()).Synthesize(context.Background(), "Hello", "")
	require.NoError(t, err)

	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("ID3-audio")), payload.AudioBase64)
	assert.Equal(t, "audio/mpeg", payload.ContentType)
	assert.True(t, stream.closed)

	raw, err := payload.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "ID3-audio", string(raw))

	require.Len(t, api.synthCalls, 1)
	input := api.synthCalls[0]
	assert.Equal(t, "Hello", aws.ToString(input.Text))
	assert.Equal(t, types.VoiceId(DefaultVoice), input.VoiceId)
	assert.Equal(t, types.OutputFormatMp3, input.OutputFormat)
	assert.Equal(t, types.EngineNeural, input.Engine)
}

func TestSynthesizeUsesRequestedVoice(t *testing.T) {
	api := &fakePolly{synthOut: &polly.SynthesizeSpeechOutput{AudioStream: io.NopCloser(strings.NewReader("x"))}}

	_, err := New(api, "Matthew", zap.NewNop()).Synthesize(context.Background(), "Hello", " Amy ")
	require.NoError(t, err)

	assert.Equal(t, types.VoiceId("Amy"), api.synthCalls[0].VoiceId)
}

func TestSynthesizeRejectsBlankText(t *testing.T) {
	api := &fakePolly{}

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := New(api, "", zap.NewNop()).Synthesize(context.Background(), text, "Joanna")

		var invalid *apperr.InvalidInputError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "text", invalid.Field)
	}

	assert.Empty(t, api.synthCalls)
}

func TestSynthesizeTransportFailure(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	api := &fakePolly{synthErr: refused}

	_, err := New(api, "", zap.NewNop()).Synthesize(context.Background(), "Hello", "")

	var upstream *apperr.UpstreamUnavailableError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, Provider, upstream.Provider)
	assert.True(t, errors.Is(err, syscall.ECONNREFUSED))
	assert.Len(t, api.synthCalls, 1)
}

func TestSynthesizeAPIError(t *testing.T) {
	api := &fakePolly{synthErr: &smithy.GenericAPIError{Code: "InvalidParameterValue", Message: "bad voice"}}

	_, err := New(api, "", zap.NewNop()).Synthesize(context.Background(), "Hello", "Nobody")

	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.Kind(err))

	var apiErr smithy.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "InvalidParameterValue", apiErr.ErrorCode())
}

func TestSynthesizeMissingAudioStream(t *testing.T) {
	api := &fakePolly{synthOut: &polly.SynthesizeSpeechOutput{}}

	_, err := New(api, "", zap.NewNop()).Synthesize(context.Background(), "Hello", "")

	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.Kind(err))
}

func TestListVoicesFollowsPages(t *testing.T) {
	api := &fakePolly{pages: []*polly.DescribeVoicesOutput{
		{
			Voices: []types.Voice{{
				Id:               types.VoiceIdJoanna,
				Name:             aws.String("Joanna"),
				Gender:           types.GenderFemale,
				LanguageCode:     types.LanguageCodeEnUs,
				LanguageName:     aws.String("US English"),
				SupportedEngines: []types.Engine{types.EngineNeural, types.EngineStandard},
			}},
			NextToken: aws.String("page-2"),
		},
		{
			Voices: []types.Voice{{Id: types.VoiceIdMatthew, Name: aws.String("Matthew")}},
		},
	}}

	voices, err := New(api, "", zap.NewNop()).ListVoices(context.Background())
	require.NoError(t, err)

	require.Len(t, voices, 2)
	assert.Equal(t, Voice{
		ID:               "Joanna",
		Name:             "Joanna",
		Gender:           "Female",
		LanguageCode:     "en-US",
		LanguageName:     "US English",
		SupportedEngines: []string{"neural", "standard"},
	}, voices[0])
	assert.Equal(t, "Matthew", voices[1].ID)

	require.Len(t, api.voiceCalls, 2)
	assert.Nil(t, api.voiceCalls[0].NextToken)
	assert.Equal(t, "page-2", aws.ToString(api.voiceCalls[1].NextToken))
}

func TestListVoicesFailure(t *testing.T) {
	api := &fakePolly{voiceErr: context.DeadlineExceeded}

	_, err := New(api, "", zap.NewNop()).ListVoices(context.Background())

	var upstream *apperr.UpstreamUnavailableError
	require.ErrorAs(t, err, &upstream)
	assert.True(t, upstream.Timeout)
}
