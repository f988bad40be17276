package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/eirenik0/log-analyzer/pkg/types"
)

// Options controls how entries and payloads are rendered.
type Options struct {
	Payloads bool // print payloads under each entry
	JSON     bool // pretty-print payloads
	Compact  bool // single-line payloads
}

const timestampLayout = "2006-01-02 15:04:05.000"

// FormatEntry renders one entry as a single styled line.
func FormatEntry(entry *types.LogEntry) string {
	var sb strings.Builder

	sb.WriteString(TimestampStyle.Render(entry.Timestamp.Format(timestampLayout)))
	sb.WriteString(" ")
	sb.WriteString(LevelStyle(entry.Level).Render(padRight(string(entry.Level), 5)))
	sb.WriteString(" ")
	sb.WriteString(ComponentStyle.Render(entry.Component))
	if entry.ComponentID != "" {
		sb.WriteString(PathStyle.Render(" (" + entry.ComponentID + ")"))
	}

	if entry.Kind != types.KindGeneric {
		sb.WriteString(" ")
		label := entry.KindLabel()
		if entry.Direction != types.DirectionNone {
			label += " " + entry.Direction.String()
		}
		sb.WriteString(KindStyle.Render(label))
	}

	if entry.RequestID != "" {
		sb.WriteString(MutedStyle.Render(" [" + entry.RequestID + "]"))
	}

	sb.WriteString(" ")
	sb.WriteString(entry.Message)

	return sb.String()
}

// WriteEntries prints entries one per line, with optional payloads.
func WriteEntries(w io.Writer, entries []*types.LogEntry, opts Options) {
	for _, entry := range entries {
		fmt.Fprintln(w, FormatEntry(entry))
		if opts.Payloads && entry.Payload != nil {
			writePayload(w, entry.PayloadJSON(), opts, "    ")
		}
	}
}

// WriteMatches prints matched entries with optional context lines. Context
// entries are dimmed; gaps between context windows get a separator.
func WriteMatches(w io.Writer, entries []*types.LogEntry, indices []int, matched map[int]bool, opts Options) {
	prev := -1
	for _, idx := range indices {
		if prev >= 0 && idx > prev+1 {
			fmt.Fprintln(w, MutedStyle.Render("--"))
		}
		prev = idx

		entry := entries[idx]
		if matched == nil || matched[idx] {
			fmt.Fprintln(w, FormatEntry(entry))
			if opts.Payloads && entry.Payload != nil {
				writePayload(w, entry.PayloadJSON(), opts, "    ")
			}
		} else {
			fmt.Fprintln(w, MutedStyle.Render(plainEntryLine(entry)))
		}
	}
}

func plainEntryLine(entry *types.LogEntry) string {
	line := entry.Timestamp.Format(timestampLayout) + " " + padRight(string(entry.Level), 5) + " " + entry.Component
	if entry.ComponentID != "" {
		line += " (" + entry.ComponentID + ")"
	}
	return line + " " + entry.Message
}

// WriteTrace prints a lifecycle timeline: each entry with the delta since the
// previous step.
func WriteTrace(w io.Writer, entries []*types.LogEntry, opts Options) {
	for i, entry := range entries {
		delta := "        "
		if i > 0 {
			delta = fmt.Sprintf("%+8s", formatDelta(entry.Timestamp.Sub(entries[i-1].Timestamp)))
		}
		fmt.Fprintln(w, MutedStyle.Render(delta)+"  "+FormatEntry(entry))
		if opts.Payloads && entry.Payload != nil {
			writePayload(w, entry.PayloadJSON(), opts, "            ")
		}
	}
}

func formatDelta(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}

// writePayload prints a JSON payload indented under its entry line. Pretty
// printing re-indents through encoding/json; compact mode prints as-is.
func writePayload(w io.Writer, payload string, opts Options, indent string) {
	if payload == "" {
		return
	}
	if opts.JSON && !opts.Compact {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(payload), indent, "  "); err == nil {
			fmt.Fprintln(w, indent+PathStyle.Render(buf.String()))
			return
		}
	}
	fmt.Fprintln(w, indent+PathStyle.Render(payload))
}
