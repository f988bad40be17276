package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/eirenik0/log-analyzer/internal/compare"
	"github.com/eirenik0/log-analyzer/pkg/types"
)

// WriteCompareReport prints the full comparison: paired records with their
// field-level differences, then the entries unique to each side.
func WriteCompareReport(w io.Writer, results *compare.Results, label1, label2 string, opts Options) {
	changed := 0
	for i := range results.Paired {
		if len(results.Paired[i].FieldDiffs) > 0 {
			changed++
		}
	}

	fmt.Fprintln(w, HeaderStyle.Render("Comparison: "+label1+" vs "+label2))
	fmt.Fprintf(w, "  %d paired (%d with differences), %d only in %s, %d only in %s\n\n",
		len(results.Paired), changed, len(results.Unique1), label1, len(results.Unique2), label2)

	for i := range results.Paired {
		writeDiffRecord(w, &results.Paired[i], opts)
	}

	writeUniqueSection(w, results.Unique1, "Only in "+label1, opts)
	writeUniqueSection(w, results.Unique2, "Only in "+label2, opts)

	if !results.HasDifferences() {
		fmt.Fprintln(w, AddedStyle.Render("No differences found"))
	}
}

func writeDiffRecord(w io.Writer, rec *compare.DiffRecord, opts Options) {
	if len(rec.FieldDiffs) == 0 {
		return
	}

	entry := rec.Entry1
	header := entry.KindLabel() + "  " + entry.Component
	if entry.ComponentID != "" {
		header += " (" + entry.ComponentID + ")"
	}
	fmt.Fprintln(w, KindStyle.Render(header))
	fmt.Fprintf(w, "  %s %s  vs  %s %s\n",
		TimestampStyle.Render(rec.Entry1.Timestamp.Format(timestampLayout)),
		MutedStyle.Render(fmt.Sprintf("(line %d)", rec.Entry1.SourceLine)),
		TimestampStyle.Render(rec.Entry2.Timestamp.Format(timestampLayout)),
		MutedStyle.Render(fmt.Sprintf("(line %d)", rec.Entry2.SourceLine)))

	for _, d := range rec.FieldDiffs {
		fmt.Fprintln(w, "  "+formatFieldDiff(d))
	}
	fmt.Fprintln(w)
}

func formatFieldDiff(d compare.FieldDiff) string {
	switch d.Change {
	case compare.ChangeAdded:
		return AddedStyle.Render("+ "+d.Path) + ": " + d.After
	case compare.ChangeRemoved:
		return RemovedStyle.Render("- "+d.Path) + ": " + d.Before
	default:
		return ModifiedStyle.Render("~ "+d.Path) + ": " + d.Before + " " + MutedStyle.Render("->") + " " + d.After
	}
}

func writeUniqueSection(w io.Writer, entries []*types.LogEntry, title string, opts Options) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintln(w, HeaderStyle.Render(title))
	fmt.Fprintln(w, MutedStyle.Render(" "+strings.Repeat("─", len(title))))
	for _, entry := range entries {
		fmt.Fprintln(w, FormatEntry(entry)+MutedStyle.Render(fmt.Sprintf("  (line %d)", entry.SourceLine)))
		if opts.Payloads && entry.Payload != nil {
			writePayload(w, entry.PayloadJSON(), opts, "    ")
		}
	}
	fmt.Fprintln(w)
}
