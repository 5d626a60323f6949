package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/career-advisor/internal/analysis"
	"github.com/spigell/career-advisor/internal/apperr"
	"github.com/spigell/career-advisor/internal/catalog"
	"github.com/spigell/career-advisor/internal/logger"
	"github.com/spigell/career-advisor/internal/prompt"
	"github.com/spigell/career-advisor/internal/speech"
)

const (
	PromptRetry       = "Retry analysis"
	PromptReadAloud   = "Read the profile summary aloud"
	PromptExit        = "Exit"
	defaultSpeechFile = "profile_summary.mp3"
)

var errExit = errors.New("exit requested")

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Answer the career questionnaire and get an analysis",
	Run: func(cmd *cobra.Command, _ []string) {
		assess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().Bool("show-prompt", false, "print the prompt before sending it to the model")
	assessCmd.Flags().Bool("auto-save", true, "save a successful analysis to the output file")
	assessCmd.Flags().StringP("output", "o", "", "file to save the analysis to (default is career_analysis.json)")
	assessCmd.Flags().String("speech-out", defaultSpeechFile, "file to write the spoken profile summary to")

	viper.BindPFlag("output", assessCmd.Flags().Lookup("output"))
}

// analyzer is the part of ai.Advisor the questionnaire needs.
type analyzer interface {
	Analyze(ctx context.Context, answers catalog.AnswerSet) (*analysis.Analysis, error)
	Catalog() *catalog.Catalog
}

type synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) (*speech.AudioPayload, error)
}

// chooser reads the option key picked for a question.
type chooser interface {
	Choose(question catalog.Question) (string, error)
}

// selector shows a menu and returns the picked item.
type selector interface {
	Select(label string, items []string) (string, error)
}

type promptChooser struct{}

func (promptChooser) Choose(question catalog.Question) (string, error) {
	keys := question.Keys()
	input := promptui.Prompt{
		Label: fmt.Sprintf("Your choice (%s)", question.ChoiceRange()),
		Validate: func(value string) error {
			if _, ok := question.Option(strings.TrimSpace(value)); !ok {
				return fmt.Errorf("please enter a valid choice (%s)", strings.Join(keys, ", "))
			}
			return nil
		},
	}

	choice, err := input.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(choice), nil
}

type promptSelector struct{}

func (promptSelector) Select(label string, items []string) (string, error) {
	sel := promptui.Select{Label: label, Items: items}
	_, item, err := sel.Run()
	return item, err
}

type assessSession struct {
	analyzer   analyzer
	speaker    synthesizer
	chooser    chooser
	selector   selector
	out        io.Writer
	output     string
	speechOut  string
	autoSave   bool
	showPrompt bool
	logger     *zap.Logger
}

func assess(cmd *cobra.Command) {
	ctx := context.Background()
	log := newLogger(logToStderr)

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	log = logger.WithFields(log, zap.String(logger.FieldSessionID, uuid.NewString()))
	log.Info("starting the career-advisor", zap.String("version", version))

	// Fail before any question is asked when the model cannot be reached anyway.
	advisor, err := newAdvisor(ctx, config, log)
	if err != nil {
		log.Fatal("preparing the language model client", zap.Error(err),
			zap.String("hint", "put the api key into a .env file or the configuration file"),
		)
	}

	session := &assessSession{
		analyzer:  advisor,
		chooser:   promptChooser{},
		selector:  promptSelector{},
		out:       os.Stdout,
		output:    config.Output,
		speechOut: cmd.Flag("speech-out").Value.String(),
		logger:    log,
	}
	session.autoSave, _ = cmd.Flags().GetBool("auto-save")
	session.showPrompt, _ = cmd.Flags().GetBool("show-prompt")

	if config.Speech.Enabled {
		client, err := newSpeechClient(ctx, config.Speech, log)
		if err != nil {
			log.Warn("speech is disabled", zap.Error(err))
		} else {
			session.speaker = client
		}
	}

	if err := session.run(ctx); err != nil && !errors.Is(err, errExit) {
		log.Fatal("exiting", zap.Error(err))
	}
}

func (s *assessSession) run(ctx context.Context) error {
	answers, err := s.collect()
	if err != nil {
		return err
	}

	if s.showPrompt {
		if err := s.printPrompt(answers); err != nil {
			return err
		}
	}

	for {
		result, err := s.analyzer.Analyze(ctx, answers)
		if err != nil {
			s.logger.Error("generating the analysis", zap.String("kind", apperr.Kind(err)), zap.Error(err))
			fmt.Fprintln(s.out, promptui.Styler(promptui.FGRed)("Failed to generate analysis report."))

			action, err := s.selector.Select("What next?", []string{PromptRetry, PromptExit})
			if err != nil {
				return err
			}
			if err := s.handleAction(ctx, action, nil); err != nil {
				return err
			}
			continue
		}

		if err := analysis.Render(s.out, result); err != nil {
			return fmt.Errorf("rendering the report: %w", err)
		}
		s.save(result)

		if s.speaker == nil {
			return nil
		}

		for {
			action, err := s.selector.Select("What next?", []string{PromptReadAloud, PromptExit})
			if err != nil {
				return err
			}
			if err := s.handleAction(ctx, action, result); err != nil {
				return err
			}
		}
	}
}

func (s *assessSession) handleAction(ctx context.Context, action string, result *analysis.Analysis) error {
	switch action {
	case PromptRetry:
		s.logger.Info("retrying the analysis")
		return nil
	case PromptReadAloud:
		s.readAloud(ctx, result)
		return nil
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// collect asks every catalog question in order and records the chosen labels.
func (s *assessSession) collect() (catalog.AnswerSet, error) {
	cat := s.analyzer.Catalog()
	answers := catalog.AnswerSet{}

	fmt.Fprintln(s.out, promptui.Styler(promptui.FGBlue, promptui.FGBold)("Career Assessment Questionnaire"))
	fmt.Fprintln(s.out, "Please answer the following questions to help us understand your profile.")

	for _, category := range cat.Categories {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, promptui.Styler(promptui.FGGreen, promptui.FGBold)(category.Title))

		for i, question := range category.Questions {
			fmt.Fprintf(s.out, "\n%d. %s\n", i+1, question.Text)
			for _, option := range question.Options {
				fmt.Fprintf(s.out, "   %s. %s\n", option.Key, option.Label)
			}

			key, err := s.chooser.Choose(question)
			if err != nil {
				return nil, fmt.Errorf("reading the answer: %w", err)
			}

			label, ok := question.Option(key)
			if !ok {
				return nil, &apperr.InvalidInputError{Field: question.Text, Reason: fmt.Sprintf("unknown choice %q", key)}
			}
			answers.Record(question.Text, label)
		}

		fmt.Fprintln(s.out, "\n"+strings.Repeat("=", 50))
	}

	s.logger.Debug("answers collected", zap.Int("count", len(answers)))

	return answers, nil
}

func (s *assessSession) printPrompt(answers catalog.AnswerSet) error {
	text, err := prompt.Build(answers, s.analyzer.Catalog())
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out, text)
	return nil
}

func (s *assessSession) save(result *analysis.Analysis) {
	if !s.autoSave {
		return
	}

	output := s.output
	if output == "" {
		output = analysis.DefaultFile
	}

	if err := analysis.Save(output, result); err != nil {
		s.logger.Error("saving the analysis", zap.String("filename", output), zap.Error(err))
		return
	}

	fmt.Fprintln(s.out, promptui.Styler(promptui.FGGreen)("Analysis saved to "+output))
}

// readAloud writes the spoken profile summary to an mp3 file. Failures are logged only.
func (s *assessSession) readAloud(ctx context.Context, result *analysis.Analysis) {
	if s.speaker == nil || result == nil {
		return
	}

	payload, err := s.speaker.Synthesize(ctx, result.ProfileSummary, "")
	if err != nil {
		s.logger.Error("synthesizing the profile summary", zap.String("kind", apperr.Kind(err)), zap.Error(err))
		return
	}

	filename := s.speechOut
	if filename == "" {
		filename = defaultSpeechFile
	}

	if err := writeAudio(filename, payload); err != nil {
		s.logger.Error("writing the audio file", zap.String("filename", filename), zap.Error(err))
		return
	}

	fmt.Fprintln(s.out, promptui.Styler(promptui.FGGreen)("Profile summary audio saved to "+filename))
}
