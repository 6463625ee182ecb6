package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wuu-lang/wuu/internal/lexer"
	"github.com/wuu-lang/wuu/internal/selfhost"
)

var (
	lexStage1 bool
	lexCheck  bool
)

var lexCmd = &cobra.Command{
	Use:   "lex <path>",
	Short: "Print the non-trivia token dump of a Wuu source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLex,
}

func init() {
	lexCmd.Flags().BoolVar(&lexStage1, "stage1", false, "also lex through the self-hosted lexer")
	lexCmd.Flags().BoolVar(&lexCheck, "check", false, "fail if stage0 and stage1 disagree (requires --stage1)")
	rootCmd.AddCommand(lexCmd)
}

func runLex(cmd *cobra.Command, args []string) error {
	if lexCheck && !lexStage1 {
		return fmt.Errorf("--check requires --stage1")
	}

	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	tokens, lerr := lexer.Lex(string(src))
	if lerr != nil {
		return lerr
	}
	stage0 := lexer.Dump(tokens)

	if lexStage1 {
		stage1, serr := selfhost.Lex(string(src))
		if serr != nil {
			return serr
		}
		if lexCheck && stage1 != stage0 {
			return fmt.Errorf("stage0/stage1 lexer mismatch for %s", path)
		}
	}

	fmt.Print(stage0)
	return nil
}
