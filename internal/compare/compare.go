// Package compare pairs entries from two captures and diffs their payloads.
package compare

import (
	"strings"

	"github.com/eirenik0/log-analyzer/pkg/types"
)

// ChangeType classifies one field-level difference.
type ChangeType int

const (
	ChangeAdded ChangeType = iota
	ChangeRemoved
	ChangeModified
)

func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	default:
		return "modified"
	}
}

// FieldDiff is one field-level difference between two payloads. Before/After
// hold JSON-rendered values; the absent side of an added/removed field is
// rendered as null.
type FieldDiff struct {
	Path   string
	Change ChangeType
	Before string
	After  string
}

// DiffRecord is the comparison of one matched pair of entries.
type DiffRecord struct {
	Key        string
	Entry1     *types.LogEntry
	Entry2     *types.LogEntry
	FieldDiffs []FieldDiff
}

// Results holds paired records and the entries only one side produced.
type Results struct {
	Paired  []DiffRecord
	Unique1 []*types.LogEntry
	Unique2 []*types.LogEntry
}

// HasDifferences reports whether any pair diverged or either side had
// unmatched entries.
func (r *Results) HasDifferences() bool {
	if len(r.Unique1) > 0 || len(r.Unique2) > 0 {
		return true
	}
	for _, rec := range r.Paired {
		if len(rec.FieldDiffs) > 0 {
			return true
		}
	}
	return false
}

// DiffCount sums field-level differences across all pairs.
func (r *Results) DiffCount() int {
	n := 0
	for _, rec := range r.Paired {
		n += len(rec.FieldDiffs)
	}
	return n
}

// PairKey is the normalized grouping key: component, kind, name, direction.
func PairKey(e *types.LogEntry) string {
	return strings.Join([]string{
		e.Component,
		e.Kind.String(),
		e.Name,
		e.Direction.String(),
	}, "|")
}

// Compare pairs the two entry sequences and diffs each pair's payload.
//
// Entries on each side are grouped by PairKey preserving order; the i-th
// occurrence of a key on side 1 pairs with the i-th occurrence on side 2.
// Excess occurrences on either side are reported as unique, never dropped.
// Comparing a capture against itself therefore yields zero field diffs and
// empty unique lists.
func Compare(entries1, entries2 []*types.LogEntry) *Results {
	keys, groups1 := groupByKey(entries1)
	keys2, groups2 := groupByKey(entries2)

	// Keys only present on side 2 still need visiting, after side 1's keys.
	for _, key := range keys2 {
		if _, ok := groups1[key]; !ok {
			keys = append(keys, key)
		}
	}

	results := &Results{}
	for _, key := range keys {
		g1 := groups1[key]
		g2 := groups2[key]

		n := len(g1)
		if len(g2) < n {
			n = len(g2)
		}
		for i := 0; i < n; i++ {
			results.Paired = append(results.Paired, DiffRecord{
				Key:        key,
				Entry1:     g1[i],
				Entry2:     g2[i],
				FieldDiffs: diffPayloads(g1[i], g2[i]),
			})
		}
		results.Unique1 = append(results.Unique1, g1[n:]...)
		results.Unique2 = append(results.Unique2, g2[n:]...)
	}

	return results
}

func groupByKey(entries []*types.LogEntry) ([]string, map[string][]*types.LogEntry) {
	var keys []string
	groups := make(map[string][]*types.LogEntry)
	for _, e := range entries {
		key := PairKey(e)
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], e)
	}
	return keys, groups
}

func diffPayloads(e1, e2 *types.LogEntry) []FieldDiff {
	switch {
	case e1.Payload == nil && e2.Payload == nil:
		return nil
	case e1.Payload == nil:
		return []FieldDiff{{Path: "", Change: ChangeAdded, Before: "null", After: e2.PayloadJSON()}}
	case e2.Payload == nil:
		return []FieldDiff{{Path: "", Change: ChangeRemoved, Before: e1.PayloadJSON(), After: "null"}}
	default:
		return DiffJSON(e1.Payload, e2.Payload)
	}
}
