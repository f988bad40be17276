package cmd

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/eirenik0/log-analyzer/pkg/types"
)

func TestEntryViewCarriesSourceLocation(t *testing.T) {
	entry := &types.LogEntry{
		Component:  "core",
		Timestamp:  time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		Level:      types.LevelInfo,
		Kind:       types.KindGeneric,
		Message:    "hello",
		SourceFile: 1,
		SourceLine: 42,
	}

	data, err := json.Marshal(newEntryView(entry))
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, `"source_file":1`) {
		t.Errorf("source_file missing from %s", out)
	}
	if !strings.Contains(out, `"source_line":42`) {
		t.Errorf("source_line missing from %s", out)
	}
}
