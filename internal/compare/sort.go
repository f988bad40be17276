package compare

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eirenik0/log-analyzer/pkg/types"
)

// SortOrder selects how paired records and unique entries are ordered for
// output.
type SortOrder int

const (
	SortTime SortOrder = iota
	SortComponent
	SortLevel
	SortType
	SortDiffCount
)

// ParseSortOrder resolves a --sort-by value.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(s) {
	case "", "time":
		return SortTime, nil
	case "component":
		return SortComponent, nil
	case "level":
		return SortLevel, nil
	case "type":
		return SortType, nil
	case "diff-count", "diffcount":
		return SortDiffCount, nil
	default:
		return 0, fmt.Errorf("unknown sort order '%s' (time, component, level, type, diff-count)", s)
	}
}

func (o SortOrder) String() string {
	switch o {
	case SortComponent:
		return "component"
	case SortLevel:
		return "level"
	case SortType:
		return "type"
	case SortDiffCount:
		return "diff-count"
	default:
		return "time"
	}
}

// SortRecords orders paired records. diff-count sorts descending with time as
// the tiebreak; every other order is ascending with time as the tiebreak.
func SortRecords(records []DiffRecord, order SortOrder) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := &records[i], &records[j]
		switch order {
		case SortComponent:
			if a.Entry1.Component != b.Entry1.Component {
				return a.Entry1.Component < b.Entry1.Component
			}
		case SortLevel:
			if sa, sb := a.Entry1.Level.Severity(), b.Entry1.Level.Severity(); sa != sb {
				return sa > sb
			}
		case SortType:
			ta := a.Entry1.Kind.String() + a.Entry1.Name
			tb := b.Entry1.Kind.String() + b.Entry1.Name
			if ta != tb {
				return ta < tb
			}
		case SortDiffCount:
			if len(a.FieldDiffs) != len(b.FieldDiffs) {
				return len(a.FieldDiffs) > len(b.FieldDiffs)
			}
		}
		return a.Entry1.Timestamp.Before(b.Entry1.Timestamp)
	})
}

// SortEntries orders unique entries with the same keys as SortRecords;
// diff-count falls back to time since a lone entry has no diffs.
func SortEntries(entries []*types.LogEntry, order SortOrder) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch order {
		case SortComponent:
			if a.Component != b.Component {
				return a.Component < b.Component
			}
		case SortLevel:
			if sa, sb := a.Level.Severity(), b.Level.Severity(); sa != sb {
				return sa > sb
			}
		case SortType:
			ta := a.Kind.String() + a.Name
			tb := b.Kind.String() + b.Name
			if ta != tb {
				return ta < tb
			}
		}
		return a.Timestamp.Before(b.Timestamp)
	})
}
