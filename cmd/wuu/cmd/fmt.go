package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wuu-lang/wuu/internal/format"
	"github.com/wuu-lang/wuu/internal/parser"
	"github.com/wuu-lang/wuu/internal/selfhost"
)

var (
	fmtCheck  bool
	fmtStage1 bool
	fmtWrite  bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt <path>",
	Short: "Format a Wuu source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "fail if the formatted output differs from the file")
	fmtCmd.Flags().BoolVar(&fmtStage1, "stage1", false, "route through the self-hosted formatter and enforce stage0==stage1")
	fmtCmd.Flags().BoolVar(&fmtWrite, "write", false, "write the formatted output back to the file")
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	if fmtCheck && fmtWrite {
		return fmt.Errorf("--check and --write are mutually exclusive")
	}

	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	module, perr := parser.ParseModule(string(src))
	if perr != nil {
		return perr
	}
	stage0 := format.Module(module)

	out := stage0
	if fmtStage1 {
		stage1, serr := selfhost.Format(string(src))
		if serr != nil {
			return serr
		}
		if stage1 != stage0 {
			return fmt.Errorf("stage0/stage1 formatter mismatch for %s", path)
		}
		out = stage1
	}

	if fmtCheck {
		if out != string(src) {
			return fmt.Errorf("%s is not formatted", path)
		}
		return nil
	}

	if fmtWrite {
		return os.WriteFile(path, []byte(out), 0o644)
	}

	fmt.Print(out)
	return nil
}
