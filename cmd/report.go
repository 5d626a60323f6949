package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/career-advisor/internal/analysis"
)

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Print a saved analysis (default is the configured output file)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		filename := viper.GetString("output")
		if len(args) == 1 {
			filename = args[0]
		}
		report(filename)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func report(filename string) {
	log := newLogger(logToStderr)

	result, err := analysis.Load(filename)
	if err != nil {
		log.Fatal("loading the analysis", zap.String("filename", filename), zap.Error(err))
	}

	if err := analysis.Render(os.Stdout, result); err != nil {
		log.Fatal("rendering the report", zap.Error(err))
	}
}
