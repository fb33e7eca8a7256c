package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jnspo1/chatgpt-stats/internal"
)

// promptSeparator follows every prompt in the output file
var promptSeparator = strings.Repeat("-", 36)

var (
	onlyFirstPrompt bool
	promptsOutput   string
	promptsPrint    bool
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Extract your prompts from the export",
	Long: `Collect the text of every user message in the export, in document order.

Each prompt is cut after its first semicolon. With --only-first-prompt, prompts
without a semicolon are left out entirely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompts, err := internal.LoadUserPrompts(cfg.Conversations, onlyFirstPrompt)
		if err != nil {
			return sourceGuidance(cfg.Conversations, err)
		}
		internal.LogInfo("extracted %d prompt(s)", len(prompts))

		if promptsOutput != "" {
			if err := writePrompts(promptsOutput, prompts); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			internal.PrintSuccess(fmt.Sprintf("Wrote %d prompt(s) to %s", len(prompts), promptsOutput))
		}

		if promptsPrint {
			w := cmd.OutOrStdout()
			for _, p := range prompts {
				fmt.Fprintln(w, p)
				fmt.Fprintln(w, dateStyle.Render(promptSeparator))
			}
		}
		return nil
	},
}

func writePrompts(path string, prompts []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, p := range prompts {
		if _, err := w.WriteString(p + "\n" + promptSeparator + "\n"); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func init() {
	rootCmd.AddCommand(promptsCmd)
	promptsCmd.Flags().BoolVarP(&onlyFirstPrompt, "only-first-prompt", "f", false, "Keep only prompts containing a semicolon, cut after it")
	promptsCmd.Flags().StringVarP(&promptsOutput, "output", "o", "", "Write prompts to this file")
	promptsCmd.Flags().BoolVarP(&promptsPrint, "print", "p", false, "Print the prompts")
}
