// Package session builds per-level session forests from the component_id
// hierarchy of a merged, time-ordered entry stream.
package session

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"github.com/eirenik0/log-analyzer/internal/config"
	"github.com/eirenik0/log-analyzer/pkg/types"
)

// Node is one lifecycle instance at one configured level. Nodes live in the
// forest's arena; Parent is an arena index (-1 for roots), never an owning
// reference.
type Node struct {
	Level        int // index into the tracker's level list
	LevelName    string
	PathSegment  string // the matched segment, e.g. "manager-1"
	Path         string // full component_id prefix up to the segment
	Parent       int
	FirstSeen    time.Time
	LastSeen     time.Time
	EntryCount   int
	ChildCount   int
	CreatedAt    *types.LogEntry
	CompletedAt  *types.LogEntry
	CreatedVia   string
	CompletedVia string
	// OperationCounts tallies unmatched child segments (instance suffix
	// stripped) attributed to this session.
	OperationCounts map[string]int
	// SummaryFields maps configured field paths to the JSON value first
	// observed at creation. Later writes to the same field are ignored.
	SummaryFields map[string]string
}

// Completed reports whether the session observed a completion command.
func (n *Node) Completed() bool {
	return n.CompletedAt != nil
}

// Incomplete reports an orphaned session: created but never completed by the
// end of the stream.
func (n *Node) Incomplete() bool {
	return n.CreatedAt != nil && n.CompletedAt == nil
}

// Forest is the arena of session nodes produced by one tracking pass.
type Forest struct {
	Levels []config.SessionLevel
	Nodes  []Node
	index  map[string]int // full path -> arena index
}

// LevelNodes returns arena indices of the level's nodes in creation order.
func (f *Forest) LevelNodes(level int) []int {
	var out []int
	for i := range f.Nodes {
		if f.Nodes[i].Level == level {
			out = append(out, i)
		}
	}
	return out
}

// LevelReport summarizes one level for output.
type LevelReport struct {
	Level      config.SessionLevel
	Total      int
	Completed  int
	Incomplete int
	// SummaryValues maps each configured summary field to its distinct
	// observed JSON values, sorted. A field observed with exactly one value
	// across every session of the level is "stable".
	SummaryValues map[string][]string
	Nodes         []int
}

// StableValue returns the single observed value of a summary field when every
// session of the level reported that same value.
func (r *LevelReport) StableValue(field string, f *Forest) (string, bool) {
	values := r.SummaryValues[field]
	if len(values) != 1 {
		return "", false
	}
	for _, idx := range r.Nodes {
		if _, ok := f.Nodes[idx].SummaryFields[field]; !ok {
			return "", false
		}
	}
	return values[0], true
}

// Report builds per-level completion summaries.
func (f *Forest) Report() []LevelReport {
	reports := make([]LevelReport, len(f.Levels))
	for i, level := range f.Levels {
		report := LevelReport{
			Level:         level,
			Nodes:         f.LevelNodes(i),
			SummaryValues: make(map[string][]string),
		}
		seen := make(map[string]map[string]bool)
		for _, idx := range report.Nodes {
			node := &f.Nodes[idx]
			report.Total++
			if node.Completed() {
				report.Completed++
			} else {
				report.Incomplete++
			}
			for field, value := range node.SummaryFields {
				if seen[field] == nil {
					seen[field] = make(map[string]bool)
				}
				seen[field][value] = true
			}
		}
		for field, values := range seen {
			for v := range values {
				report.SummaryValues[field] = append(report.SummaryValues[field], v)
			}
			sort.Strings(report.SummaryValues[field])
		}
		reports[i] = report
	}
	return reports
}

// Tracker builds session forests according to configured levels.
type Tracker struct {
	levels []config.SessionLevel
}

// NewTracker creates a Tracker for the profile's session levels.
func NewTracker(levels []config.SessionLevel) *Tracker {
	return &Tracker{levels: levels}
}

// Track consumes the merged stream in a single pass and returns the forest.
func (t *Tracker) Track(entries []*types.LogEntry) *Forest {
	forest := &Forest{
		Levels: t.levels,
		index:  make(map[string]int),
	}
	if len(t.levels) == 0 {
		return forest
	}

	for _, entry := range entries {
		t.observe(forest, entry)
	}
	return forest
}

type matchedSegment struct {
	pathIndex int
	node      int
}

func (t *Tracker) observe(forest *Forest, entry *types.LogEntry) {
	if entry.ComponentID == "" {
		return
	}

	segments := splitPath(entry.ComponentID)
	if len(segments) == 0 {
		return
	}

	// Resolve or create a node for every segment a level claims. The path
	// prefix keys the node, so equal segment names under different parents
	// stay distinct sessions.
	var matched []matchedSegment
	for i, segment := range segments {
		level, ok := t.matchLevel(segment)
		if !ok {
			continue
		}
		path := strings.Join(segments[:i+1], "/")
		idx := forest.resolve(path, segment, level, t.levels[level].Name, entry.Timestamp)

		node := &forest.Nodes[idx]
		if entry.Timestamp.Before(node.FirstSeen) {
			node.FirstSeen = entry.Timestamp
		}
		if entry.Timestamp.After(node.LastSeen) {
			node.LastSeen = entry.Timestamp
		}
		node.EntryCount++

		// Parent is the longest proper prefix among matched nodes, which in
		// one path is simply the previous match.
		if node.Parent < 0 && len(matched) > 0 {
			parent := matched[len(matched)-1].node
			node.Parent = parent
			forest.Nodes[parent].ChildCount++
		}

		matched = append(matched, matchedSegment{pathIndex: i, node: idx})
	}

	if len(matched) == 0 {
		return
	}

	// Unmatched trailing segments describe operations running inside the
	// nearest enclosing session.
	for i, segment := range segments {
		if isMatchedIndex(matched, i) {
			continue
		}
		owner := -1
		for j := len(matched) - 1; j >= 0; j-- {
			if matched[j].pathIndex < i {
				owner = matched[j].node
				break
			}
		}
		if owner < 0 {
			continue
		}
		opType := stripInstanceSuffix(segment)
		if opType == "" {
			continue
		}
		node := &forest.Nodes[owner]
		if node.OperationCounts == nil {
			node.OperationCounts = make(map[string]int)
		}
		node.OperationCounts[opType]++
	}

	if entry.Kind != types.KindCommand {
		return
	}

	innermost := matched[len(matched)-1].pathIndex
	for _, m := range matched {
		node := &forest.Nodes[m.node]
		level := &t.levels[node.Level]

		// Creation only fires on the session the command directly targets.
		if m.pathIndex == innermost && level.CreateCommand != "" && level.CreateCommand == entry.Name {
			if node.CreatedAt == nil {
				node.CreatedAt = entry
				node.CreatedVia = entry.Name
				t.snapshotSummary(node, level, entry.Payload)
			}
		}

		for _, complete := range level.CompleteCommands {
			if complete != entry.Name {
				continue
			}
			// First completion wins; repeats are no-ops.
			if node.CompletedAt == nil {
				node.CompletedAt = entry
				node.CompletedVia = entry.Name
			}
			break
		}
	}
}

// matchLevel finds the level whose segment prefix matches, preferring the
// longest prefix when several do.
func (t *Tracker) matchLevel(segment string) (int, bool) {
	best := -1
	bestLen := 0
	for i, level := range t.levels {
		prefix := level.SegmentPrefix
		if prefix == "" || !strings.HasPrefix(segment, prefix) {
			continue
		}
		if best < 0 || len(prefix) > bestLen {
			best = i
			bestLen = len(prefix)
		}
	}
	return best, best >= 0
}

func (t *Tracker) snapshotSummary(node *Node, level *config.SessionLevel, payload *fastjson.Value) {
	if payload == nil || len(level.SummaryFields) == 0 {
		return
	}
	if node.SummaryFields == nil {
		node.SummaryFields = make(map[string]string)
	}
	for _, field := range level.SummaryFields {
		if field == "" {
			continue
		}
		if _, exists := node.SummaryFields[field]; exists {
			continue
		}
		if v := valueAtPath(payload, field); v != nil {
			node.SummaryFields[field] = string(v.MarshalTo(nil))
		}
	}
}

func (f *Forest) resolve(path, segment string, level int, levelName string, ts time.Time) int {
	if idx, ok := f.index[path]; ok {
		return idx
	}
	f.Nodes = append(f.Nodes, Node{
		Level:       level,
		LevelName:   levelName,
		PathSegment: segment,
		Path:        path,
		Parent:      -1,
		FirstSeen:   ts,
		LastSeen:    ts,
	})
	idx := len(f.Nodes) - 1
	f.index[path] = idx
	return idx
}

func isMatchedIndex(matched []matchedSegment, pathIndex int) bool {
	for _, m := range matched {
		if m.pathIndex == pathIndex {
			return true
		}
	}
	return false
}

func splitPath(componentID string) []string {
	var segments []string
	for _, s := range strings.Split(componentID, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// stripInstanceSuffix drops the trailing "-instance" token: "check-batch-a1"
// becomes "check-batch".
func stripInstanceSuffix(segment string) string {
	idx := strings.LastIndexByte(segment, '-')
	if idx < 0 {
		return segment
	}
	return segment[:idx]
}

// valueAtPath walks a dot path through objects and numeric array indices.
func valueAtPath(root *fastjson.Value, path string) *fastjson.Value {
	current := root
	for _, segment := range strings.Split(path, ".") {
		if segment == "" || current == nil {
			return nil
		}
		switch current.Type() {
		case fastjson.TypeObject:
			current = current.Get(segment)
		case fastjson.TypeArray:
			i, err := strconv.Atoi(segment)
			if err != nil {
				return nil
			}
			arr, _ := current.Array()
			if i < 0 || i >= len(arr) {
				return nil
			}
			current = arr[i]
		default:
			return nil
		}
	}
	return current
}
