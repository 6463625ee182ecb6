package cmd

import (
	"github.com/spf13/cobra"
)

var Version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:     "wuu",
	Short:   "Wuu language toolchain",
	Long:    `wuu lexes, parses, checks, formats, and runs programs in the Wuu language, a small statically-typed language with workflow/step constructs and capability-style effects.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
