package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cpunion/slidegen/pkg/tasklog"
	"github.com/cpunion/slidegen/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats <archive dir>",
	Short: "Summarize an archived task history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, skipped, err := tasklog.Replay(args[0])
		if err != nil {
			return err
		}
		report := summarize(tasks)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STAGE\tTOTAL\tCOMPLETED\tFAILED\tSUCCESS\tAVG")
		for _, row := range report {
			s := row.Stats
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.0f%%\t%s\n", row.Stage, s.Total, s.Completed, s.Failed, s.SuccessRate*100, s.AverageDuration.Round(time.Millisecond))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if skipped > 0 {
			fmt.Fprintf(os.Stderr, "skipped %d unreadable lines\n", skipped)
		}
		return nil
	},
}

type stageStats struct {
	Stage string        `json:"stage"`
	Stats tasklog.Stats `json:"stats"`
}

// summarize returns per-stage statistics followed by an "all" row.
func summarize(tasks []types.AgentTask) []stageStats {
	order := []types.TaskType{types.TaskResearch, types.TaskContent, types.TaskDesign, types.TaskAsset, types.TaskGenerator}
	out := make([]stageStats, 0, len(order)+1)
	for _, typ := range order {
		out = append(out, stageStats{Stage: string(typ), Stats: tasklog.Summarize(tasks, typ)})
	}
	return append(out, stageStats{Stage: "all", Stats: tasklog.Summarize(tasks, "")})
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}
