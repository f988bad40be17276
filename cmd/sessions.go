package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eirenik0/log-analyzer/internal/session"
	"github.com/eirenik0/log-analyzer/internal/ui"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions <file>...",
	Short: "Report session lifecycles per configured hierarchy level",
	Long: `Track create/complete command pairs along the component path
hierarchy and report, per configured level, the sessions observed, their
completion state, summary field values, and nested operation counts.

Requires a profile with session levels configured; the embedded base
profile tracks none.

Examples:
  lga sessions app.log --config myprofile.yaml
  lga sessions app.log --config myprofile.yaml -v`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	entries, profile, err := loadFiltered(args)
	if err != nil {
		return err
	}

	forest := session.NewTracker(profile.Sessions.Levels).Track(entries)

	w, closeOut, err := outputWriter()
	if err != nil {
		return err
	}
	defer closeOut()

	if jsonFormat() {
		return writeJSON(w, sessionView(forest))
	}

	ui.WriteSessionReport(w, forest, verbosity > 0)
	return nil
}

type sessionNodeView struct {
	Path            string            `json:"path"`
	Completed       bool              `json:"completed"`
	FirstSeen       string            `json:"first_seen"`
	LastSeen        string            `json:"last_seen"`
	EntryCount      int               `json:"entry_count"`
	ChildCount      int               `json:"child_count"`
	CreatedVia      string            `json:"created_via,omitempty"`
	CompletedVia    string            `json:"completed_via,omitempty"`
	SummaryFields   map[string]string `json:"summary_fields,omitempty"`
	OperationCounts map[string]int    `json:"operation_counts,omitempty"`
}

type sessionLevelView struct {
	Name       string            `json:"level"`
	Total      int               `json:"total"`
	Completed  int               `json:"completed"`
	Incomplete int               `json:"incomplete"`
	Sessions   []sessionNodeView `json:"sessions"`
}

func sessionView(forest *session.Forest) []sessionLevelView {
	reports := forest.Report()
	views := make([]sessionLevelView, 0, len(reports))
	for i := range reports {
		report := &reports[i]
		lv := sessionLevelView{
			Name:       report.Level.Name,
			Total:      report.Total,
			Completed:  report.Completed,
			Incomplete: report.Incomplete,
			Sessions:   []sessionNodeView{},
		}
		for _, idx := range report.Nodes {
			node := &forest.Nodes[idx]
			lv.Sessions = append(lv.Sessions, sessionNodeView{
				Path:            node.Path,
				Completed:       node.Completed(),
				FirstSeen:       node.FirstSeen.Format("2006-01-02T15:04:05.000Z07:00"),
				LastSeen:        node.LastSeen.Format("2006-01-02T15:04:05.000Z07:00"),
				EntryCount:      node.EntryCount,
				ChildCount:      node.ChildCount,
				CreatedVia:      node.CreatedVia,
				CompletedVia:    node.CompletedVia,
				SummaryFields:   node.SummaryFields,
				OperationCounts: node.OperationCounts,
			})
		}
		views = append(views, lv)
	}
	return views
}
