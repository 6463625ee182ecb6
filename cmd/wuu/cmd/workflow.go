package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wuu-lang/wuu/internal/parser"
	"github.com/wuu-lang/wuu/internal/replay"
	"github.com/wuu-lang/wuu/internal/wuuerr"
)

var (
	workflowLogPath    string
	workflowModulePath string
	workflowEntry      string
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Workflow-related commands",
}

var workflowReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded effect log against a workflow's step/effect structure",
	Args:  cobra.NoArgs,
	RunE:  runWorkflowReplay,
}

func init() {
	workflowReplayCmd.Flags().StringVar(&workflowLogPath, "log", "", "path to the CBOR effect log (required)")
	workflowReplayCmd.Flags().StringVar(&workflowModulePath, "module", "", "path to the Wuu source declaring the workflow (required)")
	workflowReplayCmd.Flags().StringVar(&workflowEntry, "entry", "", "name of the workflow to replay (required)")
	workflowCmd.AddCommand(workflowReplayCmd)
	rootCmd.AddCommand(workflowCmd)
}

func runWorkflowReplay(cmd *cobra.Command, args []string) error {
	if workflowLogPath == "" || workflowModulePath == "" || workflowEntry == "" {
		return wuuerr.New(wuuerr.KindReplay, "--log, --module, and --entry are all required")
	}

	logBytes, err := os.ReadFile(workflowLogPath)
	if err != nil {
		return err
	}
	moduleSrc, err := os.ReadFile(workflowModulePath)
	if err != nil {
		return err
	}

	module, perr := parser.ParseModule(string(moduleSrc))
	if perr != nil {
		return perr
	}

	records, derr := replay.DecodeLog(logBytes)
	if derr != nil {
		return derr
	}

	if rerr := replay.ReplayWorkflow(module, workflowEntry, records); rerr != nil {
		return rerr
	}
	return nil
}
