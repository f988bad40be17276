package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eirenik0/log-analyzer/internal/perf"
	"github.com/eirenik0/log-analyzer/internal/ui"
	"github.com/eirenik0/log-analyzer/pkg/types"
)

var perfCmd = &cobra.Command{
	Use:   "perf <file>...",
	Short: "Pair operation starts with completions and report timings",
	Long: `Pair operation start and completion records across the merged
stream and report per-operation duration statistics (mean, min, max, and
percentiles), the slowest operations over a threshold, and orphaned
starts or completions.

Examples:
  lga perf app.log
  lga perf app.log --threshold-ms 500 --top-n 10
  lga perf app.log --op-type request
  lga perf app.log --orphans-only`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPerf,
}

var (
	// perf flags
	perfThresholdMS int
	perfTopN        int
	perfOpType      string
	perfOrphansOnly bool
	perfSortBy      string
)

func init() {
	rootCmd.AddCommand(perfCmd)

	perfCmd.Flags().IntVar(&perfThresholdMS, "threshold-ms", 1000, "Slow-operation threshold in milliseconds")
	perfCmd.Flags().IntVar(&perfTopN, "top-n", 20, "Number of slow operations to list")
	perfCmd.Flags().StringVar(&perfOpType, "op-type", "", "Restrict to one type: command, request, event")
	perfCmd.Flags().BoolVar(&perfOrphansOnly, "orphans-only", false, "Report only orphaned operations")
	perfCmd.Flags().StringVar(&perfSortBy, "sort-by", "duration", "Sort stats by: duration, count, name")
}

func runPerf(cmd *cobra.Command, args []string) error {
	entries, profile, err := loadFiltered(args)
	if err != nil {
		return err
	}

	opts := perf.Options{All: true}
	if perfOpType != "" {
		kind, err := parseOpType(perfOpType)
		if err != nil {
			return err
		}
		opts = perf.Options{OpType: kind}
	}

	results := perf.NewAnalyzer(profile).Analyze(entries, opts)

	order, err := perf.ParseStatsSortOrder(perfSortBy)
	if err != nil {
		return err
	}
	perf.SortStats(results.Stats, order)

	threshold := time.Duration(perfThresholdMS) * time.Millisecond

	w, closeOut, err := outputWriter()
	if err != nil {
		return err
	}
	defer closeOut()

	if jsonFormat() {
		return writeJSON(w, perfView(results, threshold, perfTopN, perfOrphansOnly))
	}

	if perfOrphansOnly {
		if len(results.Orphans) == 0 {
			fmt.Fprintln(w, "No orphaned operations")
			return nil
		}
		ui.WriteOrphans(w, results, uiOptions(false))
		return nil
	}

	ui.WritePerfReport(w, results, threshold, perfTopN, uiOptions(false))
	return nil
}

func parseOpType(s string) (types.EntryKind, error) {
	switch s {
	case "command", "Command":
		return types.KindCommand, nil
	case "request", "Request":
		return types.KindRequest, nil
	case "event", "Event":
		return types.KindEvent, nil
	default:
		return types.KindGeneric, fmt.Errorf("unknown op type '%s' (command, request, event)", s)
	}
}

type statsView struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Count int    `json:"count"`
	Mean  string `json:"mean"`
	Min   string `json:"min"`
	Max   string `json:"max"`
	P50   string `json:"p50"`
	P95   string `json:"p95"`
	P99   string `json:"p99"`
}

type operationView struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Duration      string `json:"duration,omitempty"`
	Start         string `json:"start,omitempty"`
	End           string `json:"end,omitempty"`
	Endpoint      string `json:"endpoint,omitempty"`
	OrphanSide    string `json:"orphan_side,omitempty"`
}

type perfResultsView struct {
	TotalEntries int             `json:"total_entries"`
	Completed    int             `json:"completed_operations"`
	Stats        []statsView     `json:"stats"`
	Slow         []operationView `json:"slow_operations,omitempty"`
	Orphans      []operationView `json:"orphans,omitempty"`
}

func perfView(results *perf.Results, threshold time.Duration, topN int, orphansOnly bool) perfResultsView {
	view := perfResultsView{
		TotalEntries: results.TotalEntries,
		Completed:    len(results.Operations),
		Stats:        []statsView{},
	}

	if !orphansOnly {
		for _, s := range results.Stats {
			view.Stats = append(view.Stats, statsView{
				Type:  s.OpType.String(),
				Name:  s.Name,
				Count: s.Count,
				Mean:  s.Mean.String(),
				Min:   s.Min.String(),
				Max:   s.Max.String(),
				P50:   s.P50.String(),
				P95:   s.P95.String(),
				P99:   s.P99.String(),
			})
		}
		for _, op := range results.TopSlowOperations(threshold, topN) {
			view.Slow = append(view.Slow, operationJSON(op))
		}
	}

	for _, op := range results.Orphans {
		view.Orphans = append(view.Orphans, operationJSON(op))
	}
	return view
}

func operationJSON(op *perf.Operation) operationView {
	v := operationView{
		Type:          op.OpType.String(),
		Name:          op.Name,
		CorrelationID: op.CorrelationID,
		Endpoint:      op.Endpoint(),
	}
	if op.Start != nil {
		v.Start = op.Start.Timestamp.Format("2006-01-02T15:04:05.000Z07:00")
	}
	if op.End != nil {
		v.End = op.End.Timestamp.Format("2006-01-02T15:04:05.000Z07:00")
	}
	if op.Orphan {
		v.OrphanSide = op.OrphanSide.String()
	} else {
		v.Duration = op.Duration.String()
	}
	return v
}
