package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phazer-schmid/phasergun/internal/retrieval"
	"github.com/phazer-schmid/phasergun/pkg/phasergun"
)

func newQueryCmd() *cobra.Command {
	var (
		topKProcedures int
		topKContext    int
		format         string
	)

	cmd := &cobra.Command{
		Use:   "query <prompt> [path]",
		Short: "Run retrieval only, without invoking a TextGenerator",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := args[0]
			path := "."
			if len(args) > 1 {
				path = args[1]
			}
			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			svc, err := phasergun.New(absPath)
			if err != nil {
				return err
			}
			defer svc.Close()

			opts := retrieval.Options{
				TopKProcedures:   topKProcedures,
				TopKContext:      topKContext,
				IncludeSummaries: true,
				MaxTokens:        -1,
			}
			result, err := svc.Retriever.Retrieve(context.Background(), absPath, "", prompt, opts)
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.AssembledContext)
			return nil
		},
	}

	cmd.Flags().IntVar(&topKProcedures, "top-k-procedures", -1, "Procedure chunks to return (-1 = use config default)")
	cmd.Flags().IntVar(&topKContext, "top-k-context", -1, "Context chunks to return (-1 = use config default)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}
