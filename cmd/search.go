package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eirenik0/log-analyzer/internal/search"
	"github.com/eirenik0/log-analyzer/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:   "search <file>...",
	Short: "List entries matching the filter expression",
	Long: `List entries matching the global filter expression, optionally with
surrounding context lines and payloads, or grouped counts instead of the
listing.

Examples:
  lga search app.log -f "level:ERROR"
  lga search app.log -f "t:timeout" --context 2
  lga search app.log -f "component:core" --payloads
  lga search app.log -f "level:ERROR" --count-by component`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	// search flags
	searchContext  int
	searchPayloads bool
	searchCountBy  string
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchContext, "context", "C", 0, "Show N entries of context around each match")
	searchCmd.Flags().BoolVar(&searchPayloads, "payloads", false, "Print JSON payloads under matching entries")
	searchCmd.Flags().StringVar(&searchCountBy, "count-by", "", "Count matches by: matches, component, level, type, payload")
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	w, closeOut, err := outputWriter()
	if err != nil {
		return err
	}
	defer closeOut()

	if searchCountBy != "" {
		mode, err := search.ParseCountMode(searchCountBy)
		if err != nil {
			return err
		}
		groups := search.CountBy(entries, indices, mode)
		if jsonFormat() {
			return writeJSON(w, groups)
		}
		ui.WriteGroups(w, groups)
		return nil
	}

	if len(indices) == 0 {
		if !jsonFormat() {
			fmt.Fprintln(w, "No matching entries")
			return nil
		}
		return writeJSON(w, []entryView{})
	}

	if jsonFormat() {
		views := make([]entryView, 0, len(indices))
		for _, idx := range indices {
			views = append(views, newEntryView(entries[idx]))
		}
		return writeJSON(w, views)
	}

	shown := indices
	var matched map[int]bool
	if searchContext > 0 {
		matched = make(map[int]bool, len(indices))
		for _, idx := range indices {
			matched[idx] = true
		}
		shown = search.WithContext(len(entries), indices, searchContext)
	}

	ui.WriteMatches(w, entries, shown, matched, uiOptions(searchPayloads))
	fmt.Fprintf(w, "\n%d matches\n", len(indices))
	return nil
}
