package trace

import (
	"testing"
	"time"

	"github.com/eirenik0/log-analyzer/internal/filter"
	"github.com/eirenik0/log-analyzer/pkg/types"
)

func entry(component, componentID, requestID, raw string) *types.LogEntry {
	return &types.LogEntry{
		Component:   component,
		ComponentID: componentID,
		Timestamp:   time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Level:       types.LevelInfo,
		Kind:        types.KindGeneric,
		RequestID:   requestID,
		Raw:         raw,
	}
}

func TestByIDMatchesRawText(t *testing.T) {
	// Correlation ids show up inside payload text without being parsed into
	// the request id field.
	e := entry("core", "", "", `core | ... with payload {"key": "4--ab12"}`)
	if !(Selector{Kind: ByID, Value: "4--ab12"}).Matches(e) {
		t.Error("id in raw record text not matched")
	}
}

func TestByIDMatchesRequestIDSubstring(t *testing.T) {
	e := entry("net", "", "4--ab12cd", "")
	sel := Selector{Kind: ByID, Value: "ab12"}
	if !sel.Matches(e) {
		t.Error("request id substring not matched")
	}
	if (Selector{Kind: ByID, Value: "zz"}).Matches(e) {
		t.Error("unrelated id matched")
	}
}

func TestBySessionMatchesComponentPath(t *testing.T) {
	e := entry("core", "manager-1/worker-2", "", "")
	tests := []struct {
		value string
		want  bool
	}{
		{"manager-1", true},
		{"worker-2", true},
		{"manager-1/worker-2", true},
		{"manager-2", false},
	}
	for _, tt := range tests {
		got := (Selector{Kind: BySession, Value: tt.value}).Matches(e)
		if got != tt.want {
			t.Errorf("BySession(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestBySessionIgnoresEntriesWithoutPath(t *testing.T) {
	e := entry("core", "", "", "manager-1 mentioned in text")
	if (Selector{Kind: BySession, Value: "manager-1"}).Matches(e) {
		t.Error("session selector must only consult the component path")
	}
}

func TestCollectAppliesFilterAndSelector(t *testing.T) {
	a := entry("core", "manager-1", "", "")
	b := entry("net", "manager-1", "", "")
	c := entry("core", "manager-2", "", "")

	expr, err := filter.Parse("c:core")
	if err != nil {
		t.Fatal(err)
	}
	got := Collect([]*types.LogEntry{a, b, c}, expr, Selector{Kind: BySession, Value: "manager-1"})
	if len(got) != 1 || got[0] != a {
		t.Errorf("Collect = %v, want only the core manager-1 entry", got)
	}
}

func TestCollectKeepsStreamOrder(t *testing.T) {
	a := entry("core", "manager-1", "", "")
	b := entry("core", "manager-1", "", "")
	b.Timestamp = a.Timestamp.Add(time.Second)

	expr, _ := filter.Parse("")
	got := Collect([]*types.LogEntry{a, b}, expr, Selector{Kind: BySession, Value: "manager-1"})
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("Collect reordered the stream")
	}
}
