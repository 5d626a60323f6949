package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/career-advisor/internal/analysis"
	"github.com/spigell/career-advisor/internal/apperr"
	"github.com/spigell/career-advisor/internal/catalog"
	"github.com/spigell/career-advisor/internal/speech"
)

type fakeAnalyzer struct {
	catalog *catalog.Catalog
	results []*analysis.Analysis
	errs    []error

	calls   int
	answers catalog.AnswerSet
}

func (f *fakeAnalyzer) Analyze(_ context.Context, answers catalog.AnswerSet) (*analysis.Analysis, error) {
	i := f.calls
	f.calls++
	f.answers = answers
	return f.results[i], f.errs[i]
}

func (f *fakeAnalyzer) Catalog() *catalog.Catalog { return f.catalog }

// scriptedChooser picks keys in order, always the first option when the script runs out.
type scriptedChooser struct {
	keys []string
}

func (c *scriptedChooser) Choose(question catalog.Question) (string, error) {
	if len(c.keys) == 0 {
		return question.Options[0].Key, nil
	}
	key := c.keys[0]
	c.keys = c.keys[1:]
	return key, nil
}

type scriptedSelector struct {
	picks  []string
	labels [][]string
}

func (s *scriptedSelector) Select(_ string, items []string) (string, error) {
	s.labels = append(s.labels, items)
	if len(s.picks) == 0 {
		return "", errors.New("no more picks")
	}
	pick := s.picks[0]
	s.picks = s.picks[1:]
	return pick, nil
}

type fakeSynthesizer struct {
	text string
	err  error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, _ string) (*speech.AudioPayload, error) {
	f.text = text
	if f.err != nil {
		return nil, f.err
	}
	return &speech.AudioPayload{AudioBase64: base64.StdEncoding.EncodeToString([]byte("mp3")), ContentType: "audio/mpeg"}, nil
}

func sampleAnalysis() *analysis.Analysis {
	return &analysis.Analysis{
		ProfileSummary:      "A hands-on learner.",
		Strengths:           []string{"Curiosity"},
		AreasForDevelopment: []string{"Public speaking"},
		RecommendedPaths: []analysis.CareerPath{{
			Title:             "Backend Developer",
			Description:       "Builds services.",
			RequiredSkills:    []string{"Go"},
			LearningResources: []string{"Go by Example"},
			NextSteps:         []string{"Ship a side project"},
		}},
	}
}

func newTestSession(t *testing.T, analyzer *fakeAnalyzer, sel *scriptedSelector) (*assessSession, *bytes.Buffer) {
	t.Helper()

	cat, err := catalog.Default()
	require.NoError(t, err)
	analyzer.catalog = cat

	dir := t.TempDir()
	out := &bytes.Buffer{}

	return &assessSession{
		analyzer:  analyzer,
		chooser:   &scriptedChooser{},
		selector:  sel,
		out:       out,
		output:    filepath.Join(dir, analysis.DefaultFile),
		speechOut: filepath.Join(dir, "summary.mp3"),
		autoSave:  true,
		logger:    zap.NewNop(),
	}, out
}

func TestAssessSessionSuccessSavesAnalysis(t *testing.T) {
	analyzer := &fakeAnalyzer{results: []*analysis.Analysis{sampleAnalysis()}, errs: []error{nil}}
	session, out := newTestSession(t, analyzer, &scriptedSelector{})
	session.chooser = &scriptedChooser{keys: []string{"3"}}

	require.NoError(t, session.run(context.Background()))

	assert.Equal(t, 1, analyzer.calls)
	assert.Equal(t, analyzer.catalog.Len(), len(analyzer.answers))
	assert.Equal(t, "Advanced - Can handle complex tasks and solve difficult problems",
		analyzer.answers["What is your level of technical/professional expertise?"])

	assert.Contains(t, out.String(), "Profile Summary")
	assert.Contains(t, out.String(), "Analysis saved to")

	saved, err := analysis.Load(session.output)
	require.NoError(t, err)
	assert.Equal(t, "A hands-on learner.", saved.ProfileSummary)
}

func TestAssessSessionAutoSaveDisabled(t *testing.T) {
	analyzer := &fakeAnalyzer{results: []*analysis.Analysis{sampleAnalysis()}, errs: []error{nil}}
	session, _ := newTestSession(t, analyzer, &scriptedSelector{})
	session.autoSave = false

	require.NoError(t, session.run(context.Background()))

	_, err := os.Stat(session.output)
	assert.True(t, os.IsNotExist(err))
}

func TestAssessSessionRetryAfterFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{
		results: []*analysis.Analysis{nil, sampleAnalysis()},
		errs:    []error{&apperr.MalformedResponseError{Raw: "oops"}, nil},
	}
	sel := &scriptedSelector{picks: []string{PromptRetry}}
	session, out := newTestSession(t, analyzer, sel)

	require.NoError(t, session.run(context.Background()))

	assert.Equal(t, 2, analyzer.calls)
	assert.Equal(t, [][]string{{PromptRetry, PromptExit}}, sel.labels)
	assert.Contains(t, out.String(), "Failed to generate analysis report.")
}

func TestAssessSessionExitAfterFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{
		results: []*analysis.Analysis{nil},
		errs:    []error{apperr.Upstream("gemini", "generate content", context.DeadlineExceeded)},
	}
	session, _ := newTestSession(t, analyzer, &scriptedSelector{picks: []string{PromptExit}})

	err := session.run(context.Background())

	assert.ErrorIs(t, err, errExit)
	assert.Equal(t, 1, analyzer.calls)
}

func TestAssessSessionReadAloud(t *testing.T) {
	analyzer := &fakeAnalyzer{results: []*analysis.Analysis{sampleAnalysis()}, errs: []error{nil}}
	session, _ := newTestSession(t, analyzer, &scriptedSelector{picks: []string{PromptReadAloud, PromptExit}})
	synth := &fakeSynthesizer{}
	session.speaker = synth

	err := session.run(context.Background())

	assert.ErrorIs(t, err, errExit)
	assert.Equal(t, "A hands-on learner.", synth.text)

	audio, err := os.ReadFile(session.speechOut)
	require.NoError(t, err)
	assert.Equal(t, "mp3", string(audio))
}

func TestAssessSessionSpeechFailureKeepsSession(t *testing.T) {
	analyzer := &fakeAnalyzer{results: []*analysis.Analysis{sampleAnalysis()}, errs: []error{nil}}
	sel := &scriptedSelector{picks: []string{PromptReadAloud, PromptExit}}
	session, _ := newTestSession(t, analyzer, sel)
	session.speaker = &fakeSynthesizer{err: apperr.Upstream("polly", "synthesize speech", errors.New("refused"))}

	err := session.run(context.Background())

	assert.ErrorIs(t, err, errExit)
	assert.Len(t, sel.labels, 2)
	_, statErr := os.Stat(session.speechOut)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAssessSessionRejectsUnknownChoice(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	session, _ := newTestSession(t, analyzer, &scriptedSelector{})
	session.chooser = &scriptedChooser{keys: []string{"9"}}

	err := session.run(context.Background())

	assert.Equal(t, apperr.KindInvalidInput, apperr.Kind(err))
	assert.Zero(t, analyzer.calls)
}

func TestAssessSessionShowPrompt(t *testing.T) {
	analyzer := &fakeAnalyzer{results: []*analysis.Analysis{sampleAnalysis()}, errs: []error{nil}}
	session, out := newTestSession(t, analyzer, &scriptedSelector{})
	session.showPrompt = true
	session.autoSave = false

	require.NoError(t, session.run(context.Background()))

	assert.Contains(t, out.String(), "Q: How do you prefer to work?\nA: Independently - I work best on my own")
}

func TestHandleActionUnknown(t *testing.T) {
	session, _ := newTestSession(t, &fakeAnalyzer{}, &scriptedSelector{})

	assert.Error(t, session.handleAction(context.Background(), "dance", nil))
}
