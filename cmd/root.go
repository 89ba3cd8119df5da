package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/takecopter/backend/cmd/config"
)

// NewRootCmd assembles the backend CLI. The serve command is what the
// desktop app runs; the rest mirror the command surface for scripting and
// debugging a project root directly.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "takecopter-backend",
		Short:         "Persistence backend for the takecopter writing app",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	config.AddGlobalFlags(cmd)

	cmd.AddCommand(
		NewServeCmd(),
		NewStatusCmd(),
		NewInitCmd(),
		NewOpenCmd(),
		NewStoryCmd(),
		NewExportCmd(),
		NewImportCmd(),
		NewBackupCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// printJSON writes v to stdout as indented JSON, the output format of every
// read command.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
