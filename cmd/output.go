package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/eirenik0/log-analyzer/pkg/types"
)

// entryView is the JSON shape of one log entry.
type entryView struct {
	Timestamp   string          `json:"timestamp"`
	Level       string          `json:"level"`
	Component   string          `json:"component"`
	ComponentID string          `json:"component_id,omitempty"`
	Type        string          `json:"type"`
	Name        string          `json:"name,omitempty"`
	Direction   string          `json:"direction,omitempty"`
	RequestID   string          `json:"request_id,omitempty"`
	Endpoint    string          `json:"endpoint,omitempty"`
	Message     string          `json:"message"`
	SourceFile  int             `json:"source_file"`
	SourceLine  int             `json:"source_line"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

func newEntryView(entry *types.LogEntry) entryView {
	view := entryView{
		Timestamp:   entry.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		Level:       string(entry.Level),
		Component:   entry.Component,
		ComponentID: entry.ComponentID,
		Type:        entry.Kind.String(),
		Name:        entry.Name,
		Direction:   entry.Direction.String(),
		RequestID:   entry.RequestID,
		Endpoint:    entry.Endpoint,
		Message:     entry.Message,
		SourceFile:  entry.SourceFile,
		SourceLine:  entry.SourceLine,
	}
	if entry.Payload != nil {
		view.Payload = json.RawMessage(entry.PayloadJSON())
	}
	return view
}

func entryViews(entries []*types.LogEntry) []entryView {
	views := make([]entryView, len(entries))
	for i, entry := range entries {
		views[i] = newEntryView(entry)
	}
	return views
}

// writeJSON marshals v honoring --compact.
func writeJSON(w io.Writer, v any) error {
	var (
		data []byte
		err  error
	)
	if compactOut {
		data, err = json.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
