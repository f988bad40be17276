package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/eirenik0/log-analyzer/internal/session"
)

// Session table column widths
var sessionColumnWidths = []int{36, 14, 26, 26, 9, 9}

// WriteSessionReport prints one box table per configured session level, with
// summary field values and operation counts underneath.
func WriteSessionReport(w io.Writer, forest *session.Forest, verbose bool) {
	reports := forest.Report()
	if len(reports) == 0 {
		fmt.Fprintln(w, MutedStyle.Render("no session levels configured"))
		return
	}

	for i := range reports {
		writeLevelReport(w, forest, &reports[i], verbose)
	}
}

func writeLevelReport(w io.Writer, forest *session.Forest, report *session.LevelReport, verbose bool) {
	title := fmt.Sprintf("%s sessions: %d total, %d completed, %d incomplete",
		report.Level.Name, report.Total, report.Completed, report.Incomplete)
	fmt.Fprintln(w, HeaderStyle.Render(title))

	if report.Total == 0 {
		fmt.Fprintln(w, MutedStyle.Render("  none observed"))
		fmt.Fprintln(w)
		return
	}

	headers := []string{"Path", "State", "First Seen", "Last Seen", "Entries", "Children"}
	var sb strings.Builder

	writeBoxBorder(&sb, TopLeft, TopT, TopRight)

	sb.WriteString(BorderStyle.Render(Vertical))
	for i, h := range headers {
		cell := " " + padRight(h, sessionColumnWidths[i]) + " "
		sb.WriteString(HeaderStyle.Render(cell))
		sb.WriteString(BorderStyle.Render(Vertical))
	}
	sb.WriteString("\n")

	writeBoxBorder(&sb, LeftT, Cross, RightT)

	for _, idx := range report.Nodes {
		node := &forest.Nodes[idx]
		sb.WriteString(BorderStyle.Render(Vertical))

		cell := " " + padRight(node.Path, sessionColumnWidths[0]) + " "
		sb.WriteString(ComponentStyle.Render(cell))
		sb.WriteString(BorderStyle.Render(Vertical))

		sb.WriteString(formatSessionState(node, sessionColumnWidths[1]))
		sb.WriteString(BorderStyle.Render(Vertical))

		cell = " " + padRight(node.FirstSeen.Format(timestampLayout), sessionColumnWidths[2]) + " "
		sb.WriteString(TimestampStyle.Render(cell))
		sb.WriteString(BorderStyle.Render(Vertical))

		cell = " " + padRight(node.LastSeen.Format(timestampLayout), sessionColumnWidths[3]) + " "
		sb.WriteString(TimestampStyle.Render(cell))
		sb.WriteString(BorderStyle.Render(Vertical))

		cell = " " + padRight(fmt.Sprintf("%d", node.EntryCount), sessionColumnWidths[4]) + " "
		sb.WriteString(MutedStyle.Render(cell))
		sb.WriteString(BorderStyle.Render(Vertical))

		cell = " " + padRight(fmt.Sprintf("%d", node.ChildCount), sessionColumnWidths[5]) + " "
		sb.WriteString(MutedStyle.Render(cell))
		sb.WriteString(BorderStyle.Render(Vertical))

		sb.WriteString("\n")
	}

	writeBoxBorder(&sb, BottomLeft, BottomT, BottomRight)

	fmt.Fprint(w, sb.String())

	writeSummaryFields(w, forest, report)

	if verbose {
		writeOperationCounts(w, forest, report)
	}
	fmt.Fprintln(w)
}

func writeBoxBorder(sb *strings.Builder, left, mid, right string) {
	sb.WriteString(BorderStyle.Render(left))
	for i, w := range sessionColumnWidths {
		sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w+2)))
		if i < len(sessionColumnWidths)-1 {
			sb.WriteString(BorderStyle.Render(mid))
		}
	}
	sb.WriteString(BorderStyle.Render(right))
	sb.WriteString("\n")
}

func formatSessionState(node *session.Node, width int) string {
	var indicator string
	var style = MutedStyle

	if node.Completed() {
		indicator = "●"
		style = AddedStyle
	} else {
		indicator = "◐"
		style = ModifiedStyle
	}

	stateText := indicator + " "
	if node.Completed() {
		stateText += "completed"
	} else {
		stateText += "incomplete"
	}
	cell := " " + padRight(stateText, width) + " "
	return style.Render(cell)
}

// writeSummaryFields prints each configured summary field: a single value when
// every session reported the same one, otherwise the distinct values with one
// session path per value.
func writeSummaryFields(w io.Writer, forest *session.Forest, report *session.LevelReport) {
	if len(report.Level.SummaryFields) == 0 {
		return
	}

	for _, field := range report.Level.SummaryFields {
		if value, ok := report.StableValue(field, forest); ok {
			fmt.Fprintf(w, "  %s: %s\n", MutedStyle.Render(field), value)
			continue
		}
		values := report.SummaryValues[field]
		if len(values) == 0 {
			fmt.Fprintf(w, "  %s: %s\n", MutedStyle.Render(field), MutedStyle.Render("not observed"))
			continue
		}
		fmt.Fprintf(w, "  %s (varies):\n", MutedStyle.Render(field))
		for _, v := range values {
			fmt.Fprintf(w, "    %s\n", v)
		}
	}
}

func writeOperationCounts(w io.Writer, forest *session.Forest, report *session.LevelReport) {
	totals := make(map[string]int)
	for _, idx := range report.Nodes {
		for op, n := range forest.Nodes[idx].OperationCounts {
			totals[op] += n
		}
	}
	if len(totals) == 0 {
		return
	}

	type opCount struct {
		name  string
		count int
	}
	counts := make([]opCount, 0, len(totals))
	for name, n := range totals {
		counts = append(counts, opCount{name: name, count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].name < counts[j].name
	})

	fmt.Fprintln(w, MutedStyle.Render("  operations:"))
	for _, c := range counts {
		fmt.Fprintf(w, "    %-30s %d\n", c.name, c.count)
	}
}
