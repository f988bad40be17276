package ui

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/eirenik0/log-analyzer/internal/config"
	"github.com/eirenik0/log-analyzer/internal/search"
	"github.com/eirenik0/log-analyzer/pkg/types"
)

// WriteInfoReport prints an overview of the parsed stream: totals, time range,
// and breakdowns by level, kind, and component. When the profile carries known
// names, observed values are checked against them.
func WriteInfoReport(w io.Writer, entries []*types.LogEntry, profile *config.Profile) {
	fmt.Fprintln(w, HeaderStyle.Render("Log Overview"))
	fmt.Fprintf(w, "  %d entries\n", len(entries))
	if len(entries) > 0 {
		first, last := entries[0].Timestamp, entries[len(entries)-1].Timestamp
		fmt.Fprintf(w, "  time range %s .. %s (%s)\n",
			first.Format(timestampLayout), last.Format(timestampLayout),
			formatDuration(last.Sub(first)))
	}
	fmt.Fprintln(w)

	levels := make(map[string]int)
	kinds := make(map[string]int)
	components := make(map[string]int)
	commands := make(map[string]bool)
	requests := make(map[string]bool)
	payloads := 0

	for _, entry := range entries {
		levels[string(entry.Level)]++
		kinds[entry.Kind.String()]++
		if entry.Component != "" {
			components[entry.Component]++
		}
		if entry.Payload != nil {
			payloads++
		}
		switch entry.Kind {
		case types.KindCommand:
			commands[entry.Name] = true
		case types.KindRequest:
			requests[entry.Name] = true
		}
	}

	writeCountTable(w, "Levels", levels, func(k string) int { return -types.Level(k).Severity() })
	writeCountTable(w, "Entry Types", kinds, nil)
	writeCountTable(w, "Components", components, nil)
	fmt.Fprintf(w, "  %d entries carry a JSON payload\n\n", payloads)

	if profile.HasHints() {
		writeKnownSection(w, "components", keys(components), profile.Known.Components)
		writeKnownSection(w, "commands", setKeys(commands), profile.Known.Commands)
		writeKnownSection(w, "requests", setKeys(requests), profile.Known.Requests)
	}
}

// writeCountTable prints a two-column table sorted by count descending, or by
// rank when one is given.
func writeCountTable(w io.Writer, title string, counts map[string]int, rank func(string) int) {
	if len(counts) == 0 {
		return
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if rank != nil {
			return rank(names[i]) < rank(names[j])
		}
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	fmt.Fprintln(w, HeaderStyle.Render(title))

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("Name", "Count")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	tbl.WithWriter(w)
	for _, name := range names {
		tbl.AddRow(name, counts[name])
	}
	tbl.Print()
	fmt.Fprintln(w)
}

// writeKnownSection flags observed names missing from the profile's known list
// and known names never observed.
func writeKnownSection(w io.Writer, what string, observed, known []string) {
	if len(known) == 0 {
		return
	}

	knownSet := make(map[string]bool, len(known))
	for _, name := range known {
		knownSet[name] = true
	}
	observedSet := make(map[string]bool, len(observed))
	for _, name := range observed {
		observedSet[name] = true
	}

	var unexpected, missing []string
	for _, name := range observed {
		if name != "" && !knownSet[name] {
			unexpected = append(unexpected, name)
		}
	}
	for _, name := range known {
		if !observedSet[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(unexpected)
	sort.Strings(missing)

	if len(unexpected) == 0 && len(missing) == 0 {
		fmt.Fprintln(w, AddedStyle.Render(fmt.Sprintf("  all observed %s match the profile", what)))
		return
	}
	for _, name := range unexpected {
		fmt.Fprintln(w, ModifiedStyle.Render("  unexpected "+what[:len(what)-1]+": "+name))
	}
	for _, name := range missing {
		fmt.Fprintln(w, MutedStyle.Render("  never observed: "+name))
	}
}

// WriteGroups prints count-by buckets, most frequent first.
func WriteGroups(w io.Writer, groups []search.Group) {
	for _, g := range groups {
		fmt.Fprintf(w, "  %6d  %s\n", g.Count, g.Key)
	}
}

// WriteExtractSummary prints the distinct values of one payload field with
// occurrence counts.
func WriteExtractSummary(w io.Writer, summary search.ExtractSummary) {
	fmt.Fprintln(w, HeaderStyle.Render("Field: "+summary.Field))
	fmt.Fprintf(w, "  %d matches, %d extracted", summary.Matches, summary.Extracted)
	if summary.MissingPayload > 0 || summary.MissingField > 0 {
		fmt.Fprintf(w, " (%d without payload, %d without field)", summary.MissingPayload, summary.MissingField)
	}
	fmt.Fprintln(w)
	for _, g := range summary.Groups {
		fmt.Fprintf(w, "  %6d  %s\n", g.Count, g.Value)
	}
}

func keys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func setKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
