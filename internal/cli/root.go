// Package cli defines the cobra commands of the interview binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev" // set via ldflags at build time

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "interview",
		Short: "Timed voice interview sessions in the terminal",
		Long: `Interview asks a fixed list of questions out loud, transcribes the
spoken answers while a per-question countdown runs and shows all answers when
the session ends.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newQuestionsCmd())
	return rootCmd
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
