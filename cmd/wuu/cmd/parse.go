package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wuu-lang/wuu/internal/format"
	"github.com/wuu-lang/wuu/internal/parser"
	"github.com/wuu-lang/wuu/internal/selfhost"
)

var parseStage1 bool

var parseCmd = &cobra.Command{
	Use:   "parse <path>",
	Short: "Parse a Wuu source file and print the formatted result",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseStage1, "stage1", false, "run the self-hosted parser instead of stage0")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	parseFn := parser.ParseModule
	if parseStage1 {
		parseFn = selfhost.Parse
	}

	mod, perr := parseFn(string(src))
	if perr != nil {
		return perr
	}

	fmt.Print(format.Module(mod))
	return nil
}
