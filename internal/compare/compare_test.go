package compare

import (
	"testing"
	"time"

	"github.com/valyala/fastjson"

	"github.com/eirenik0/log-analyzer/pkg/types"
)

func commandEntry(t *testing.T, name, payload string) *types.LogEntry {
	t.Helper()
	entry := &types.LogEntry{
		Component: "core",
		Timestamp: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		Level:     types.LevelInfo,
		Kind:      types.KindCommand,
		Name:      name,
	}
	if payload != "" {
		v, err := fastjson.Parse(payload)
		if err != nil {
			t.Fatalf("bad test payload: %v", err)
		}
		entry.Payload = v
	}
	return entry
}

func TestCompareIdenticalStreams(t *testing.T) {
	make := func() []*types.LogEntry {
		return []*types.LogEntry{
			commandEntry(t, "open", `{"app": "demo"}`),
			commandEntry(t, "check", `{"region": [1, 2]}`),
		}
	}

	results := Compare(make(), make())
	if results.HasDifferences() {
		t.Errorf("self comparison must have no differences: %+v", results)
	}
	if len(results.Paired) != 2 {
		t.Errorf("Paired = %d, want 2", len(results.Paired))
	}
}

func TestCompareAddedField(t *testing.T) {
	results := Compare(
		[]*types.LogEntry{commandEntry(t, "open", `{"a": 1}`)},
		[]*types.LogEntry{commandEntry(t, "open", `{"a": 1, "b": 2}`)},
	)

	if len(results.Paired) != 1 {
		t.Fatalf("Paired = %d, want 1", len(results.Paired))
	}
	diffs := results.Paired[0].FieldDiffs
	if len(diffs) != 1 {
		t.Fatalf("FieldDiffs = %+v, want exactly one", diffs)
	}
	d := diffs[0]
	if d.Path != "b" || d.Change != ChangeAdded || d.Before != "null" || d.After != "2" {
		t.Errorf("diff = %+v", d)
	}
}

func TestCompareRemovedAndModified(t *testing.T) {
	results := Compare(
		[]*types.LogEntry{commandEntry(t, "open", `{"gone": true, "kept": "x"}`)},
		[]*types.LogEntry{commandEntry(t, "open", `{"kept": "y"}`)},
	)

	diffs := results.Paired[0].FieldDiffs
	if len(diffs) != 2 {
		t.Fatalf("FieldDiffs = %+v, want two", diffs)
	}
	byPath := map[string]FieldDiff{}
	for _, d := range diffs {
		byPath[d.Path] = d
	}
	if d := byPath["gone"]; d.Change != ChangeRemoved || d.Before != "true" || d.After != "null" {
		t.Errorf("gone: %+v", d)
	}
	if d := byPath["kept"]; d.Change != ChangeModified || d.Before != `"x"` || d.After != `"y"` {
		t.Errorf("kept: %+v", d)
	}
}

func TestCompareNestedPathDotNotation(t *testing.T) {
	results := Compare(
		[]*types.LogEntry{commandEntry(t, "open", `{"settings": {"retries": [3, 5]}}`)},
		[]*types.LogEntry{commandEntry(t, "open", `{"settings": {"retries": [3, 7]}}`)},
	)

	diffs := results.Paired[0].FieldDiffs
	if len(diffs) != 1 {
		t.Fatalf("FieldDiffs = %+v, want one", diffs)
	}
	if diffs[0].Path != "settings.retries.1" {
		t.Errorf("Path = %q, want settings.retries.1", diffs[0].Path)
	}
	if diffs[0].Before != "5" || diffs[0].After != "7" {
		t.Errorf("diff = %+v", diffs[0])
	}
}

func TestCompareFIFOPairing(t *testing.T) {
	// Three occurrences on side 1, one on side 2: the first pairs with the
	// first, the rest are unique to side 1.
	side1 := []*types.LogEntry{
		commandEntry(t, "check", `{"n": 1}`),
		commandEntry(t, "check", `{"n": 2}`),
		commandEntry(t, "check", `{"n": 3}`),
	}
	side2 := []*types.LogEntry{
		commandEntry(t, "check", `{"n": 1}`),
	}

	results := Compare(side1, side2)
	if len(results.Paired) != 1 {
		t.Fatalf("Paired = %d, want 1", len(results.Paired))
	}
	if len(results.Paired[0].FieldDiffs) != 0 {
		t.Errorf("first occurrences are identical, got %+v", results.Paired[0].FieldDiffs)
	}
	if len(results.Unique1) != 2 || len(results.Unique2) != 0 {
		t.Errorf("Unique1 = %d, Unique2 = %d, want 2 and 0", len(results.Unique1), len(results.Unique2))
	}
}

func TestCompareKeyIncludesDirection(t *testing.T) {
	out := commandEntry(t, "ping", `{"n": 1}`)
	out.Kind = types.KindRequest
	out.Direction = types.DirectionOutgoing

	in := commandEntry(t, "ping", `{"n": 2}`)
	in.Kind = types.KindRequest
	in.Direction = types.DirectionIncoming

	results := Compare([]*types.LogEntry{out}, []*types.LogEntry{in})
	if len(results.Paired) != 0 {
		t.Errorf("opposite directions must not pair: %+v", results.Paired)
	}
	if len(results.Unique1) != 1 || len(results.Unique2) != 1 {
		t.Errorf("Unique1 = %d, Unique2 = %d, want 1 and 1", len(results.Unique1), len(results.Unique2))
	}
}

func TestComparePayloadOnlyOnOneSide(t *testing.T) {
	results := Compare(
		[]*types.LogEntry{commandEntry(t, "open", "")},
		[]*types.LogEntry{commandEntry(t, "open", `{"a": 1}`)},
	)
	diffs := results.Paired[0].FieldDiffs
	if len(diffs) != 1 || diffs[0].Change != ChangeAdded || diffs[0].Before != "null" {
		t.Errorf("diffs = %+v", diffs)
	}
}

func TestDiffJSONTypeChange(t *testing.T) {
	v1 := fastjson.MustParse(`{"a": 1}`)
	v2 := fastjson.MustParse(`{"a": "1"}`)
	diffs := DiffJSON(v1, v2)
	if len(diffs) != 1 || diffs[0].Change != ChangeModified {
		t.Errorf("diffs = %+v", diffs)
	}
}

func TestDiffJSONArrayLengthChange(t *testing.T) {
	v1 := fastjson.MustParse(`{"xs": [1, 2]}`)
	v2 := fastjson.MustParse(`{"xs": [1, 2, 3]}`)
	diffs := DiffJSON(v1, v2)
	if len(diffs) != 1 {
		t.Fatalf("diffs = %+v, want one", diffs)
	}
	if diffs[0].Path != "xs.2" || diffs[0].Change != ChangeAdded || diffs[0].After != "3" {
		t.Errorf("diff = %+v", diffs[0])
	}
}

func TestEqualJSONIgnoresKeyOrder(t *testing.T) {
	v1 := fastjson.MustParse(`{"a": 1, "b": 2}`)
	v2 := fastjson.MustParse(`{"b": 2, "a": 1}`)
	if !EqualJSON(v1, v2) {
		t.Error("key order must not matter")
	}
}
