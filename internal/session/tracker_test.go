package session

import (
	"testing"
	"time"

	"github.com/valyala/fastjson"

	"github.com/eirenik0/log-analyzer/internal/config"
	"github.com/eirenik0/log-analyzer/pkg/types"
)

var testLevels = []config.SessionLevel{
	{
		Name:             "manager",
		SegmentPrefix:    "manager-",
		CreateCommand:    "openManager",
		CompleteCommands: []string{"closeManager"},
		SummaryFields:    []string{"concurrency", "agentId"},
	},
	{
		Name:             "worker",
		SegmentPrefix:    "worker-",
		CreateCommand:    "openWorker",
		CompleteCommands: []string{"closeWorker", "abortWorker"},
	},
}

func ts(sec int) time.Time {
	return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC).Add(time.Duration(sec) * time.Second)
}

func entryAt(sec int, componentID string) *types.LogEntry {
	return &types.LogEntry{
		Component:   "core",
		ComponentID: componentID,
		Timestamp:   ts(sec),
		Level:       types.LevelInfo,
		Kind:        types.KindGeneric,
	}
}

func commandAt(sec int, componentID, name, payload string) *types.LogEntry {
	entry := entryAt(sec, componentID)
	entry.Kind = types.KindCommand
	entry.Name = name
	if payload != "" {
		entry.Payload = fastjson.MustParse(payload)
	}
	return entry
}

func track(entries ...*types.LogEntry) *Forest {
	return NewTracker(testLevels).Track(entries)
}

func TestNodesKeyedByFullPath(t *testing.T) {
	// Equal segment names under different parents are distinct sessions.
	forest := track(
		entryAt(0, "manager-1/worker-1"),
		entryAt(1, "manager-2/worker-1"),
	)

	if len(forest.Nodes) != 4 {
		t.Fatalf("Nodes = %d, want 4", len(forest.Nodes))
	}
	workers := forest.LevelNodes(1)
	if len(workers) != 2 {
		t.Fatalf("worker nodes = %d, want 2", len(workers))
	}
	paths := map[string]bool{}
	for _, idx := range workers {
		paths[forest.Nodes[idx].Path] = true
	}
	if !paths["manager-1/worker-1"] || !paths["manager-2/worker-1"] {
		t.Errorf("worker paths = %v", paths)
	}
}

func TestParentLinksAndChildCount(t *testing.T) {
	forest := track(
		entryAt(0, "manager-1/worker-1"),
		entryAt(1, "manager-1/worker-2"),
	)

	managers := forest.LevelNodes(0)
	if len(managers) != 1 {
		t.Fatalf("manager nodes = %d, want 1", len(managers))
	}
	manager := managers[0]
	if got := forest.Nodes[manager].ChildCount; got != 2 {
		t.Errorf("ChildCount = %d, want 2", got)
	}
	for _, idx := range forest.LevelNodes(1) {
		if forest.Nodes[idx].Parent != manager {
			t.Errorf("worker %q Parent = %d, want %d", forest.Nodes[idx].Path, forest.Nodes[idx].Parent, manager)
		}
	}
	if forest.Nodes[manager].Parent != -1 {
		t.Errorf("root Parent = %d, want -1", forest.Nodes[manager].Parent)
	}
}

func TestLifecycleCreateAndComplete(t *testing.T) {
	forest := track(
		commandAt(0, "manager-1", "openManager", `{"concurrency": 5}`),
		entryAt(3, "manager-1"),
		commandAt(7, "manager-1", "closeManager", ""),
	)

	node := &forest.Nodes[forest.LevelNodes(0)[0]]
	if node.CreatedAt == nil || node.CreatedVia != "openManager" {
		t.Fatalf("CreatedVia = %q, CreatedAt nil = %v", node.CreatedVia, node.CreatedAt == nil)
	}
	if !node.Completed() || node.CompletedVia != "closeManager" {
		t.Errorf("CompletedVia = %q, Completed = %v", node.CompletedVia, node.Completed())
	}
	if node.FirstSeen != ts(0) || node.LastSeen != ts(7) {
		t.Errorf("FirstSeen/LastSeen = %v/%v", node.FirstSeen, node.LastSeen)
	}
	if node.EntryCount != 3 {
		t.Errorf("EntryCount = %d, want 3", node.EntryCount)
	}
}

func TestCreateOnlyFiresOnInnermostSegment(t *testing.T) {
	// openWorker addressed to manager-1/worker-1 must not create the manager
	// session even though the manager segment also matched.
	forest := track(
		commandAt(0, "manager-1/worker-1", "openWorker", ""),
	)

	worker := &forest.Nodes[forest.LevelNodes(1)[0]]
	if worker.CreatedAt == nil {
		t.Error("worker session not created")
	}
	manager := &forest.Nodes[forest.LevelNodes(0)[0]]
	if manager.CreatedAt != nil {
		t.Error("manager session created by a worker command")
	}
}

func TestFirstCompletionWins(t *testing.T) {
	forest := track(
		commandAt(0, "manager-1/worker-1", "openWorker", ""),
		commandAt(2, "manager-1/worker-1", "abortWorker", ""),
		commandAt(5, "manager-1/worker-1", "closeWorker", ""),
	)

	worker := &forest.Nodes[forest.LevelNodes(1)[0]]
	if worker.CompletedVia != "abortWorker" {
		t.Errorf("CompletedVia = %q, want abortWorker", worker.CompletedVia)
	}
	if worker.CompletedAt.Timestamp != ts(2) {
		t.Errorf("CompletedAt = %v, want %v", worker.CompletedAt.Timestamp, ts(2))
	}
}

func TestLongestPrefixWinsLevelMatch(t *testing.T) {
	levels := []config.SessionLevel{
		{Name: "run", SegmentPrefix: "run-"},
		{Name: "runner", SegmentPrefix: "run-batch-"},
	}
	forest := NewTracker(levels).Track([]*types.LogEntry{
		entryAt(0, "run-batch-1"),
	})

	if len(forest.Nodes) != 1 {
		t.Fatalf("Nodes = %d, want 1", len(forest.Nodes))
	}
	if forest.Nodes[0].LevelName != "runner" {
		t.Errorf("LevelName = %q, want runner", forest.Nodes[0].LevelName)
	}
}

func TestOperationCountsStripInstanceSuffix(t *testing.T) {
	forest := track(
		entryAt(0, "manager-1/check-batch-a1"),
		entryAt(1, "manager-1/check-batch-b2"),
		entryAt(2, "manager-1/render-x1"),
	)

	manager := &forest.Nodes[forest.LevelNodes(0)[0]]
	if got := manager.OperationCounts["check-batch"]; got != 2 {
		t.Errorf("check-batch count = %d, want 2", got)
	}
	if got := manager.OperationCounts["render"]; got != 1 {
		t.Errorf("render count = %d, want 1", got)
	}
}

func TestSummaryFieldsSnapshotFirstWins(t *testing.T) {
	forest := track(
		commandAt(0, "manager-1", "openManager", `{"concurrency": 5, "agentId": "lga/1.2"}`),
		// Second create on the same path is a no-op.
		commandAt(1, "manager-1", "openManager", `{"concurrency": 9}`),
	)

	node := &forest.Nodes[forest.LevelNodes(0)[0]]
	if got := node.SummaryFields["concurrency"]; got != "5" {
		t.Errorf("concurrency = %q, want 5", got)
	}
	if got := node.SummaryFields["agentId"]; got != `"lga/1.2"` {
		t.Errorf("agentId = %q", got)
	}
}

func TestReportCompletionCounts(t *testing.T) {
	forest := track(
		commandAt(0, "manager-1", "openManager", `{"concurrency": 5}`),
		commandAt(1, "manager-2", "openManager", `{"concurrency": 5}`),
		commandAt(9, "manager-1", "closeManager", ""),
	)

	reports := forest.Report()
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}
	managers := reports[0]
	if managers.Total != 2 || managers.Completed != 1 || managers.Incomplete != 1 {
		t.Errorf("Total/Completed/Incomplete = %d/%d/%d, want 2/1/1",
			managers.Total, managers.Completed, managers.Incomplete)
	}

	value, stable := managers.StableValue("concurrency", forest)
	if !stable || value != "5" {
		t.Errorf("StableValue(concurrency) = %q, %v, want 5, true", value, stable)
	}
}

func TestStableValueRejectsVaryingField(t *testing.T) {
	forest := track(
		commandAt(0, "manager-1", "openManager", `{"concurrency": 5}`),
		commandAt(1, "manager-2", "openManager", `{"concurrency": 10}`),
	)

	report := forest.Report()[0]
	if _, stable := report.StableValue("concurrency", forest); stable {
		t.Error("varying field reported as stable")
	}
	if got := report.SummaryValues["concurrency"]; len(got) != 2 {
		t.Errorf("SummaryValues = %v, want two distinct values", got)
	}
}

func TestStableValueRequiresEveryNode(t *testing.T) {
	// One session observed the field, a second never did. A single distinct
	// value is not stable when some session missed it.
	forest := track(
		commandAt(0, "manager-1", "openManager", `{"concurrency": 5}`),
		commandAt(1, "manager-2", "openManager", `{}`),
	)

	report := forest.Report()[0]
	if _, stable := report.StableValue("concurrency", forest); stable {
		t.Error("partially observed field reported as stable")
	}
}

func TestNestedSummaryFieldPath(t *testing.T) {
	levels := []config.SessionLevel{
		{
			Name:          "manager",
			SegmentPrefix: "manager-",
			CreateCommand: "openManager",
			SummaryFields: []string{"settings.browsers.0"},
		},
	}
	forest := NewTracker(levels).Track([]*types.LogEntry{
		commandAt(0, "manager-1", "openManager", `{"settings": {"browsers": ["chrome", "firefox"]}}`),
	})

	node := &forest.Nodes[0]
	if got := node.SummaryFields["settings.browsers.0"]; got != `"chrome"` {
		t.Errorf("nested field = %q", got)
	}
}

func TestEntriesWithoutComponentIDIgnored(t *testing.T) {
	forest := track(
		entryAt(0, ""),
		entryAt(1, "core"),
	)
	if len(forest.Nodes) != 0 {
		t.Errorf("Nodes = %d, want 0", len(forest.Nodes))
	}
}

func TestNoLevelsYieldsEmptyForest(t *testing.T) {
	forest := NewTracker(nil).Track([]*types.LogEntry{
		entryAt(0, "manager-1"),
	})
	if len(forest.Nodes) != 0 || len(forest.Report()) != 0 {
		t.Errorf("expected empty forest, got %d nodes", len(forest.Nodes))
	}
}
