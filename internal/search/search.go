// Package search implements structured entry search and payload field
// extraction over a parsed stream.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eirenik0/log-analyzer/internal/filter"
	"github.com/eirenik0/log-analyzer/pkg/types"
)

// MatchIndices returns the indices of entries the expression keeps.
func MatchIndices(entries []*types.LogEntry, expr *filter.Expression) []int {
	var indices []int
	for i, entry := range entries {
		if expr.Matches(entry) {
			indices = append(indices, i)
		}
	}
	return indices
}

// WithContext expands match indices by n neighbors on each side, deduplicated
// and in order.
func WithContext(total int, indices []int, n int) []int {
	if n <= 0 {
		return indices
	}
	include := make(map[int]bool)
	for _, idx := range indices {
		lo := idx - n
		if lo < 0 {
			lo = 0
		}
		hi := idx + n
		if hi > total-1 {
			hi = total - 1
		}
		for i := lo; i <= hi; i++ {
			include[i] = true
		}
	}
	expanded := make([]int, 0, len(include))
	for i := range include {
		expanded = append(expanded, i)
	}
	sort.Ints(expanded)
	return expanded
}

// CountMode selects how matches are grouped for counting.
type CountMode int

const (
	CountMatches CountMode = iota
	CountComponent
	CountLevel
	CountType
	CountPayload
)

// ParseCountMode resolves a --count-by value.
func ParseCountMode(s string) (CountMode, error) {
	switch strings.ToLower(s) {
	case "matches":
		return CountMatches, nil
	case "component":
		return CountComponent, nil
	case "level":
		return CountLevel, nil
	case "type":
		return CountType, nil
	case "payload":
		return CountPayload, nil
	default:
		return 0, fmt.Errorf("unknown count-by mode '%s' (matches, component, level, type, payload)", s)
	}
}

// Group is one bucket of the count-by output.
type Group struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// CountBy tallies matches into groups, most frequent first with lexical
// tiebreak. CountMatches produces a single total bucket.
func CountBy(entries []*types.LogEntry, indices []int, mode CountMode) []Group {
	if mode == CountMatches {
		return []Group{{Key: "matches", Count: len(indices)}}
	}

	counts := make(map[string]int)
	for _, idx := range indices {
		counts[groupKey(entries[idx], mode)]++
	}

	groups := make([]Group, 0, len(counts))
	for key, count := range counts {
		groups = append(groups, Group{Key: key, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

func groupKey(entry *types.LogEntry, mode CountMode) string {
	switch mode {
	case CountComponent:
		return entry.Component
	case CountLevel:
		return string(entry.Level)
	case CountType:
		return entry.KindLabel()
	case CountPayload:
		if payload := entry.PayloadJSON(); payload != "" {
			return payload
		}
		return "<none>"
	default:
		return "matches"
	}
}
