package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phazer-schmid/phasergun/pkg/phasergun"
)

func newGenerateCmd() *cobra.Command {
	var promptFile string

	cmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Run the full retrieve-then-generate pipeline for a prompt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			var promptText string
			if promptFile != "" {
				data, err := os.ReadFile(promptFile)
				if err != nil {
					return fmt.Errorf("read prompt file: %w", err)
				}
				promptText = string(data)
			} else {
				data, err := os.ReadFile(filepath.Join(absPath, "Context", "Prompt", "prompt.md"))
				if err != nil {
					return fmt.Errorf("read default prompt file: %w", err)
				}
				promptText = string(data)
			}

			svc, err := phasergun.New(absPath)
			if err != nil {
				return err
			}
			defer svc.Close()

			out, err := svc.Generate(context.Background(), absPath, "", promptText)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), out.GeneratedContent)
			if out.Status != "ok" {
				return fmt.Errorf("generation status: %s", out.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&promptFile, "prompt-file", "", "Path to a prompt file (default: <path>/Context/Prompt/prompt.md)")
	return cmd
}
