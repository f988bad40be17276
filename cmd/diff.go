package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eirenik0/log-analyzer/internal/compare"
	"github.com/eirenik0/log-analyzer/internal/ui"
)

var diffCmd = &cobra.Command{
	Use:   "diff <file1> <file2>",
	Short: "Show only the field-level payload differences between two runs",
	Long: `Like compare, but prints just the differing fields of each paired
entry, without the unique-entry sections. Exits with status 1 when any
difference is found, so it can gate scripts.

Examples:
  lga diff run1.log run2.log
  lga diff run1.log run2.log -f "type:Command" -j -c`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

var diffSortBy string

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringVar(&diffSortBy, "sort-by", "time", "Sort records by: time, component, level, type, diff-count")
}

func runDiff(cmd *cobra.Command, args []string) error {
	results, err := compareFiles(args[0], args[1])
	if err != nil {
		return err
	}

	order, err := compare.ParseSortOrder(diffSortBy)
	if err != nil {
		return err
	}
	compare.SortRecords(results.Paired, order)

	w, closeOut, err := outputWriter()
	if err != nil {
		return err
	}
	defer closeOut()

	if jsonFormat() {
		if err := writeJSON(w, compareView(results, true, false)); err != nil {
			return err
		}
	} else {
		trimmed := &compare.Results{Paired: results.Paired}
		ui.WriteCompareReport(w, trimmed, filepath.Base(args[0]), filepath.Base(args[1]), uiOptions(true))
	}

	if results.HasDifferences() {
		// Differences are a distinct exit status, not an error message.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("differences found")
	}
	return nil
}
