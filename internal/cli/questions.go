package cli

import (
	"encoding/json"
	"fmt"

	"github.com/skillsage/voice-interview/core/questions"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of question set files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(questions.Schema(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshalling schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newQuestionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "questions [file]",
		Short: "Validate and print a question set",
		Long:  "Validate and print a question set. Without a file the built-in questions are printed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set := questions.Default()
			if len(args) == 1 {
				var err error
				if set, err = questions.Load(args[0]); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if set.Title != "" {
				fmt.Fprintln(out, set.Title)
			}
			fmt.Fprintf(out, "%d questions, %ds each\n", len(set.Questions), set.QuestionDurationSeconds)
			for i, question := range set.Questions {
				fmt.Fprintf(out, "%d. %s\n", i+1, question)
			}
			return nil
		},
	}
}
