// Package cmd provides the CLI commands for phasergun.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/phazer-schmid/phasergun/pkg/version"
)

// NewRootCmd creates the root command for the phasergun CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phasergun",
		Short: "Retrieval-augmented procedure and context assistant",
		Long: `phasergun indexes a project's Procedures/ and Context/ directories,
answers prompts grounded in that material, and cites every procedure and
context excerpt it used.

It runs entirely locally: embeddings are computed with a deterministic
hash-based model, and the cache lives under the platform temp directory.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("phasergun version {{.Version}}\n")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
