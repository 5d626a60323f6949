package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/career-advisor/internal/prompt"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the prompt revision",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s (prompt v%s)\n", app, version, prompt.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
