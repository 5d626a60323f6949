package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/career-advisor/internal/speech"
)

var speakCmd = &cobra.Command{
	Use:   "speak [text]",
	Short: "Convert text to speech and write it to an mp3 file",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		speak(cmd, strings.Join(args, " "))
	},
}

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the voices available for speech synthesis",
	Run: func(_ *cobra.Command, _ []string) {
		listVoices()
	},
}

func init() {
	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(voicesCmd)

	speakCmd.Flags().String("out", "speech.mp3", "file to write the audio to")
	speakCmd.Flags().String("voice", "", "voice id (default is speech.voice from the config)")
}

func speak(cmd *cobra.Command, text string) {
	ctx := context.Background()
	log := newLogger(logToStdout)

	client := mustSpeechClient(ctx, log)

	voice, _ := cmd.Flags().GetString("voice")
	payload, err := client.Synthesize(ctx, text, voice)
	if err != nil {
		log.Fatal("synthesizing speech", zap.Error(err))
	}

	out, _ := cmd.Flags().GetString("out")
	if err := writeAudio(out, payload); err != nil {
		log.Fatal("writing the audio file", zap.Error(err))
	}

	log.Info("speech saved", zap.String("filename", out))
}

func listVoices() {
	ctx := context.Background()
	log := newLogger(logToStderr)

	voices, err := mustSpeechClient(ctx, log).ListVoices(ctx)
	if err != nil {
		log.Fatal("listing voices", zap.Error(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLANGUAGE\tENGINES")
	for _, voice := range voices {
		fmt.Fprintf(w, "%s\t%s\t%s (%s)\t%s\n",
			voice.ID, voice.Name, voice.LanguageName, voice.LanguageCode, strings.Join(voice.SupportedEngines, ","))
	}
	w.Flush()
}

func mustSpeechClient(ctx context.Context, log *zap.Logger) *speech.Client {
	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	client, err := newSpeechClient(ctx, config.Speech, log)
	if err != nil {
		log.Fatal("preparing the speech client", zap.Error(err))
	}
	return client
}

// writeAudio stores the decoded mp3 of payload in filename.
func writeAudio(filename string, payload *speech.AudioPayload) error {
	audio, err := payload.Bytes()
	if err != nil {
		return fmt.Errorf("decode audio: %w", err)
	}

	return os.WriteFile(filename, audio, 0o644)
}
