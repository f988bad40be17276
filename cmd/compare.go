package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eirenik0/log-analyzer/internal/compare"
	"github.com/eirenik0/log-analyzer/internal/parser"
	"github.com/eirenik0/log-analyzer/internal/ui"
)

var compareCmd = &cobra.Command{
	Use:   "compare <file1> <file2>",
	Short: "Compare two log files semantically",
	Long: `Pair entries from two runs by (component, type, name, direction) in
order of occurrence and diff their JSON payloads field by field. Entries
with a counterpart only on one side are reported as unique to that side.

Examples:
  lga compare run1.log run2.log
  lga compare run1.log run2.log -f "component:core" --diff-only
  lga compare run1.log run2.log --sort-by diff-count -j`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

var (
	// compare flags
	compareDiffOnly bool
	compareFull     bool
	compareSortBy   string
)

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().BoolVar(&compareDiffOnly, "diff-only", false, "Show only field differences, not unique entries")
	compareCmd.Flags().BoolVar(&compareFull, "full", false, "Include pairs with no differences")
	compareCmd.Flags().StringVar(&compareSortBy, "sort-by", "time", "Sort records by: time, component, level, type, diff-count")
}

func runCompare(cmd *cobra.Command, args []string) error {
	results, err := compareFiles(args[0], args[1])
	if err != nil {
		return err
	}

	order, err := compare.ParseSortOrder(compareSortBy)
	if err != nil {
		return err
	}
	compare.SortRecords(results.Paired, order)
	compare.SortEntries(results.Unique1, order)
	compare.SortEntries(results.Unique2, order)

	w, closeOut, err := outputWriter()
	if err != nil {
		return err
	}
	defer closeOut()

	if jsonFormat() {
		return writeJSON(w, compareView(results, compareDiffOnly, compareFull))
	}

	if compareDiffOnly {
		trimmed := &compare.Results{Paired: results.Paired}
		ui.WriteCompareReport(w, trimmed, filepath.Base(args[0]), filepath.Base(args[1]), uiOptions(true))
	} else {
		ui.WriteCompareReport(w, results, filepath.Base(args[0]), filepath.Base(args[1]), uiOptions(true))
	}
	if compareFull {
		writeUnchangedPairs(w, results)
	}
	return nil
}

// compareFiles parses both sides with the active profile and filter, then
// pairs and diffs them.
func compareFiles(path1, path2 string) (*compare.Results, error) {
	profile, err := loadProfile()
	if err != nil {
		return nil, err
	}
	expr, err := parseFilter()
	if err != nil {
		return nil, err
	}

	p := parser.New(profile)
	result1, err := p.ParseFile(path1, 0)
	if err != nil {
		return nil, err
	}
	result2, err := p.ParseFile(path2, 1)
	if err != nil {
		return nil, err
	}
	printParseWarnings(append(result1.Warnings, result2.Warnings...))

	return compare.Compare(expr.Apply(result1.Entries), expr.Apply(result2.Entries)), nil
}

func writeUnchangedPairs(w io.Writer, results *compare.Results) {
	count := 0
	for i := range results.Paired {
		if len(results.Paired[i].FieldDiffs) == 0 {
			count++
		}
	}
	if count > 0 {
		fmt.Fprintf(w, "%d pairs identical\n", count)
	}
}

type fieldDiffView struct {
	Path   string `json:"path"`
	Change string `json:"change"`
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

type diffRecordView struct {
	Key    string          `json:"key"`
	Entry1 entryView       `json:"entry1"`
	Entry2 entryView       `json:"entry2"`
	Diffs  []fieldDiffView `json:"diffs"`
}

type compareResultsView struct {
	Paired  []diffRecordView `json:"paired"`
	Unique1 []entryView      `json:"unique_to_first,omitempty"`
	Unique2 []entryView      `json:"unique_to_second,omitempty"`
}

func compareView(results *compare.Results, diffOnly, full bool) compareResultsView {
	view := compareResultsView{Paired: []diffRecordView{}}
	for i := range results.Paired {
		rec := &results.Paired[i]
		if len(rec.FieldDiffs) == 0 && !full {
			continue
		}
		rv := diffRecordView{
			Key:    rec.Key,
			Entry1: newEntryView(rec.Entry1),
			Entry2: newEntryView(rec.Entry2),
			Diffs:  []fieldDiffView{},
		}
		for _, d := range rec.FieldDiffs {
			rv.Diffs = append(rv.Diffs, fieldDiffView{
				Path:   d.Path,
				Change: d.Change.String(),
				Before: d.Before,
				After:  d.After,
			})
		}
		view.Paired = append(view.Paired, rv)
	}
	if !diffOnly {
		view.Unique1 = entryViews(results.Unique1)
		view.Unique2 = entryViews(results.Unique2)
	}
	return view
}
