package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eirenik0/log-analyzer/internal/search"
	"github.com/eirenik0/log-analyzer/internal/ui"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>...",
	Short: "Aggregate one payload field across matching entries",
	Long: `Extract the value at a dot-separated payload path from every entry
matching the filter expression and report the distinct values with their
occurrence counts. Numeric path segments index into arrays.

Examples:
  lga extract app.log --field user.id
  lga extract app.log --field settings.retries.0 -f "component:core"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

var extractField string

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractField, "field", "", "Dot-separated payload path to extract (required)")
	_ = extractCmd.MarkFlagRequired("field")
}

func runExtract(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}
	entries, err := loadEntries(profile, args)
	if err != nil {
		return err
	}
	expr, err := parseFilter()
	if err != nil {
		return err
	}

	indices := search.MatchIndices(entries, expr)
	summary := search.Extract(entries, indices, extractField)

	w, closeOut, err := outputWriter()
	if err != nil {
		return err
	}
	defer closeOut()

	if jsonFormat() {
		return writeJSON(w, summary)
	}
	ui.WriteExtractSummary(w, summary)
	return nil
}
