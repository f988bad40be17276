package search

import (
	"testing"
	"time"

	"github.com/valyala/fastjson"

	"github.com/eirenik0/log-analyzer/internal/filter"
	"github.com/eirenik0/log-analyzer/pkg/types"
)

func entry(component string, level types.Level, message string) *types.LogEntry {
	return &types.LogEntry{
		Component: component,
		Timestamp: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Level:     level,
		Kind:      types.KindGeneric,
		Message:   message,
	}
}

func payloadEntry(component, payload string) *types.LogEntry {
	e := entry(component, types.LevelInfo, "payload carrier")
	if payload != "" {
		e.Payload = fastjson.MustParse(payload)
	}
	return e
}

func mustFilter(t *testing.T, s string) *filter.Expression {
	t.Helper()
	expr, err := filter.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return expr
}

func TestMatchIndices(t *testing.T) {
	entries := []*types.LogEntry{
		entry("core", types.LevelInfo, "one"),
		entry("net", types.LevelError, "two"),
		entry("core", types.LevelError, "three"),
	}

	got := MatchIndices(entries, mustFilter(t, "l:error"))
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("MatchIndices = %v, want [1 2]", got)
	}
}

func TestWithContext(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		indices []int
		n       int
		want    []int
	}{
		{"no context", 10, []int{3}, 0, []int{3}},
		{"simple window", 10, []int{3}, 1, []int{2, 3, 4}},
		{"clamped at start", 10, []int{0}, 2, []int{0, 1, 2}},
		{"clamped at end", 5, []int{4}, 2, []int{2, 3, 4}},
		{"overlapping windows dedupe", 10, []int{2, 4}, 1, []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WithContext(tt.total, tt.indices, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("WithContext = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("WithContext = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestParseCountMode(t *testing.T) {
	if _, err := ParseCountMode("component"); err != nil {
		t.Errorf("component: %v", err)
	}
	if _, err := ParseCountMode("Level"); err != nil {
		t.Errorf("case-insensitive: %v", err)
	}
	if _, err := ParseCountMode("bogus"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestCountByComponent(t *testing.T) {
	entries := []*types.LogEntry{
		entry("core", types.LevelInfo, "a"),
		entry("net", types.LevelInfo, "b"),
		entry("core", types.LevelInfo, "c"),
	}

	groups := CountBy(entries, []int{0, 1, 2}, CountComponent)
	if len(groups) != 2 {
		t.Fatalf("groups = %v", groups)
	}
	if groups[0].Key != "core" || groups[0].Count != 2 {
		t.Errorf("groups[0] = %+v, want core 2", groups[0])
	}
	if groups[1].Key != "net" || groups[1].Count != 1 {
		t.Errorf("groups[1] = %+v, want net 1", groups[1])
	}
}

func TestCountByLexicalTiebreak(t *testing.T) {
	entries := []*types.LogEntry{
		entry("zeta", types.LevelInfo, "a"),
		entry("alpha", types.LevelInfo, "b"),
	}
	groups := CountBy(entries, []int{0, 1}, CountComponent)
	if groups[0].Key != "alpha" || groups[1].Key != "zeta" {
		t.Errorf("equal counts must sort by key: %v", groups)
	}
}

func TestCountMatchesSingleBucket(t *testing.T) {
	entries := []*types.LogEntry{
		entry("core", types.LevelInfo, "a"),
		entry("core", types.LevelInfo, "b"),
	}
	groups := CountBy(entries, []int{0, 1}, CountMatches)
	if len(groups) != 1 || groups[0].Count != 2 {
		t.Errorf("groups = %v, want one bucket of 2", groups)
	}
}

func TestCountByPayloadMissing(t *testing.T) {
	entries := []*types.LogEntry{
		payloadEntry("core", `{"a": 1}`),
		payloadEntry("core", ""),
	}
	groups := CountBy(entries, []int{0, 1}, CountPayload)
	found := false
	for _, g := range groups {
		if g.Key == "<none>" && g.Count == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("missing payload bucket absent: %v", groups)
	}
}

func TestExtract(t *testing.T) {
	entries := []*types.LogEntry{
		payloadEntry("core", `{"settings": {"browser": "chrome"}}`),
		payloadEntry("core", `{"settings": {"browser": "chrome"}}`),
		payloadEntry("core", `{"settings": {"browser": "firefox"}}`),
		payloadEntry("core", `{"settings": {}}`),
		payloadEntry("core", ""),
	}

	summary := Extract(entries, []int{0, 1, 2, 3, 4}, "settings.browser")
	if summary.Matches != 5 || summary.Extracted != 3 {
		t.Errorf("Matches/Extracted = %d/%d, want 5/3", summary.Matches, summary.Extracted)
	}
	if summary.MissingPayload != 1 || summary.MissingField != 1 {
		t.Errorf("MissingPayload/MissingField = %d/%d, want 1/1", summary.MissingPayload, summary.MissingField)
	}
	if len(summary.Groups) != 2 {
		t.Fatalf("Groups = %v", summary.Groups)
	}
	if summary.Groups[0].Value != `"chrome"` || summary.Groups[0].Count != 2 {
		t.Errorf("Groups[0] = %+v", summary.Groups[0])
	}
	if summary.Groups[1].Value != `"firefox"` {
		t.Errorf("Groups[1] = %+v", summary.Groups[1])
	}
}

func TestExtractArrayIndexPath(t *testing.T) {
	entries := []*types.LogEntry{
		payloadEntry("core", `{"browsers": [{"name": "chrome"}, {"name": "firefox"}]}`),
	}

	summary := Extract(entries, []int{0}, "browsers.1.name")
	if summary.Extracted != 1 {
		t.Fatalf("Extracted = %d, want 1", summary.Extracted)
	}
	if summary.Groups[0].Value != `"firefox"` {
		t.Errorf("value = %q", summary.Groups[0].Value)
	}
}

func TestExtractNonNumericArraySegment(t *testing.T) {
	entries := []*types.LogEntry{
		payloadEntry("core", `{"xs": [1, 2]}`),
	}
	summary := Extract(entries, []int{0}, "xs.first")
	if summary.MissingField != 1 || summary.Extracted != 0 {
		t.Errorf("MissingField/Extracted = %d/%d, want 1/0", summary.MissingField, summary.Extracted)
	}
}
