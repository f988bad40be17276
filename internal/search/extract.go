package search

import (
	"sort"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/eirenik0/log-analyzer/pkg/types"
)

// ValueGroup is one distinct extracted value with its occurrence count.
type ValueGroup struct {
	Value string `json:"value"` // JSON-rendered
	Count int    `json:"count"`
}

// ExtractSummary aggregates one payload field across matching entries.
type ExtractSummary struct {
	Field          string       `json:"field"`
	Matches        int          `json:"matches"`
	Extracted      int          `json:"extracted"`
	MissingPayload int          `json:"missing_payload"`
	MissingField   int          `json:"missing_field"`
	Groups         []ValueGroup `json:"values"` // most frequent first, lexical tiebreak
}

// Extract aggregates the field at a dot path (numeric segments index arrays)
// over the selected entries.
func Extract(entries []*types.LogEntry, indices []int, fieldPath string) ExtractSummary {
	summary := ExtractSummary{Field: fieldPath, Matches: len(indices)}
	counts := make(map[string]int)

	for _, idx := range indices {
		entry := entries[idx]
		if entry.Payload == nil {
			summary.MissingPayload++
			continue
		}
		value := fieldAtPath(entry.Payload, fieldPath)
		if value == nil {
			summary.MissingField++
			continue
		}
		summary.Extracted++
		counts[string(value.MarshalTo(nil))]++
	}

	for value, count := range counts {
		summary.Groups = append(summary.Groups, ValueGroup{Value: value, Count: count})
	}
	sort.Slice(summary.Groups, func(i, j int) bool {
		if summary.Groups[i].Count != summary.Groups[j].Count {
			return summary.Groups[i].Count > summary.Groups[j].Count
		}
		return summary.Groups[i].Value < summary.Groups[j].Value
	})
	return summary
}

func fieldAtPath(root *fastjson.Value, path string) *fastjson.Value {
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
