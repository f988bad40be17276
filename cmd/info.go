package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/eirenik0/log-analyzer/internal/session"
	"github.com/eirenik0/log-analyzer/internal/ui"
	"github.com/eirenik0/log-analyzer/pkg/types"
)

var infoCmd = &cobra.Command{
	Use:     "info <file>...",
	Aliases: []string{"i", "inspect"},
	Short:   "Show an overview of parsed log files",
	Long: `Parse the given log files and print an overview: entry counts by
level, type, and component, the observed time range, and profile insights
when the active profile declares known names or session levels.

Examples:
  lga info app.log
  lga info app.log worker.log -f "component:core"
  lga info app.log --config myprofile.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	entries, profile, err := loadFiltered(args)
	if err != nil {
		return err
	}

	w, closeOut, err := outputWriter()
	if err != nil {
		return err
	}
	defer closeOut()

	if jsonFormat() {
		return writeJSON(w, infoSummary(entries))
	}

	ui.WriteInfoReport(w, entries, profile)

	if len(profile.Sessions.Levels) > 0 {
		forest := session.NewTracker(profile.Sessions.Levels).Track(entries)
		ui.WriteSessionReport(w, forest, verbosity > 0)
	}
	return nil
}

type countView struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type infoView struct {
	Entries    int         `json:"entries"`
	RangeStart string      `json:"range_start,omitempty"`
	RangeEnd   string      `json:"range_end,omitempty"`
	Levels     []countView `json:"levels"`
	Types      []countView `json:"types"`
	Components []countView `json:"components"`
}

func infoSummary(entries []*types.LogEntry) infoView {
	view := infoView{Entries: len(entries)}
	if len(entries) > 0 {
		view.RangeStart = entries[0].Timestamp.Format("2006-01-02T15:04:05.000Z07:00")
		view.RangeEnd = entries[len(entries)-1].Timestamp.Format("2006-01-02T15:04:05.000Z07:00")
	}

	levels := make(map[string]int)
	kinds := make(map[string]int)
	components := make(map[string]int)
	for _, entry := range entries {
		levels[string(entry.Level)]++
		kinds[entry.Kind.String()]++
		if entry.Component != "" {
			components[entry.Component]++
		}
	}

	view.Levels = countViews(levels)
	view.Types = countViews(kinds)
	view.Components = countViews(components)
	return view
}

func countViews(counts map[string]int) []countView {
	views := make([]countView, 0, len(counts))
	for name, count := range counts {
		views = append(views, countView{Name: name, Count: count})
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Count != views[j].Count {
			return views[i].Count > views[j].Count
		}
		return views[i].Name < views[j].Name
	})
	return views
}
