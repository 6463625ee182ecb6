package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wuu-lang/wuu/internal/interp"
	"github.com/wuu-lang/wuu/internal/parser"
)

var runEntry string

var runCmd = &cobra.Command{
	Use:   "run <path>",
	Short: "Execute a Wuu source file's entry function via the tree interpreter",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runEntry, "entry", "", "name of the zero-argument function to execute (required)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if runEntry == "" {
		return fmt.Errorf("--entry is required")
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	module, perr := parser.ParseModule(string(src))
	if perr != nil {
		return perr
	}

	result, rerr := interp.RunEntry(module, runEntry)
	if rerr != nil {
		return rerr
	}
	if !result.IsUnit() {
		fmt.Println(result.String())
	}
	return nil
}
