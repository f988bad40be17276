package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/eirenik0/log-analyzer/internal/perf"
)

// WritePerfReport prints aggregate stats, the slowest operations over the
// threshold, and orphaned starts/completions.
func WritePerfReport(w io.Writer, results *perf.Results, threshold time.Duration, topN int, opts Options) {
	fmt.Fprintln(w, HeaderStyle.Render("Performance Analysis"))
	fmt.Fprintf(w, "  %d entries, %d completed operations, %d orphans\n",
		results.TotalEntries, len(results.Operations), len(results.Orphans))
	if !results.RangeStart.IsZero() {
		fmt.Fprintf(w, "  time range %s .. %s\n",
			results.RangeStart.Format(timestampLayout), results.RangeEnd.Format(timestampLayout))
	}
	fmt.Fprintln(w)

	writeStatsTable(w, results)

	slow := results.TopSlowOperations(threshold, topN)
	if len(slow) > 0 {
		fmt.Fprintln(w, HeaderStyle.Render(fmt.Sprintf("Slow Operations (>= %s)", threshold)))
		for _, op := range slow {
			line := fmt.Sprintf("  %-10s %-30s %s", formatDuration(op.Duration), op.OpType.String()+" "+op.Name,
				op.Start.Timestamp.Format(timestampLayout))
			if ep := op.Endpoint(); ep != "" {
				line += MutedStyle.Render("  " + ep)
			}
			fmt.Fprintln(w, WarnStyle.Render(line))
		}
		fmt.Fprintln(w)
	}

	WriteOrphans(w, results, opts)
}

func writeStatsTable(w io.Writer, results *perf.Results) {
	if len(results.Stats) == 0 {
		fmt.Fprintln(w, MutedStyle.Render("  no completed operations"))
		fmt.Fprintln(w)
		return
	}

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("Type", "Name", "Count", "Mean", "Min", "Max", "P50", "P95", "P99")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	tbl.WithWriter(w)

	for _, s := range results.Stats {
		tbl.AddRow(
			s.OpType.String(),
			Truncate(s.Name, 40),
			s.Count,
			formatDuration(s.Mean),
			formatDuration(s.Min),
			formatDuration(s.Max),
			formatDuration(s.P50),
			formatDuration(s.P95),
			formatDuration(s.P99),
		)
	}

	tbl.Print()
	fmt.Fprintln(w)
}

// WriteOrphans lists unpaired starts and completions in stream order.
func WriteOrphans(w io.Writer, results *perf.Results, opts Options) {
	if len(results.Orphans) == 0 {
		return
	}

	fmt.Fprintln(w, HeaderStyle.Render("Orphaned Operations"))
	for _, op := range results.Orphans {
		entry := op.Entry()
		line := fmt.Sprintf("  %-11s %-30s %s", op.OrphanSide.String(),
			op.OpType.String()+" "+op.Name, entry.Timestamp.Format(timestampLayout))
		if op.CorrelationID != "" {
			line += MutedStyle.Render("  [" + op.CorrelationID + "]")
		}
		fmt.Fprintln(w, ModifiedStyle.Render(line))
		if opts.Payloads && entry.Payload != nil {
			writePayload(w, entry.PayloadJSON(), opts, "    ")
		}
	}
	fmt.Fprintln(w)
}

// formatDuration renders durations with millisecond precision for anything
// under a minute.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
