package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wuu-lang/wuu/internal/checker"
	"github.com/wuu-lang/wuu/internal/parser"
)

var checkCmd = &cobra.Command{
	Use:   "check <path>",
	Short: "Parse, type-check, and effect-check a Wuu source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	module, perr := parser.ParseModule(string(src))
	if perr != nil {
		return perr
	}
	if terr := checker.CheckTypes(module); terr != nil {
		return terr
	}
	if eerr := checker.CheckEffects(module); eerr != nil {
		return eerr
	}
	return nil
}
