package perf

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/eirenik0/log-analyzer/pkg/types"
)

// OperationStats aggregates completed operations of one (kind, name) group.
type OperationStats struct {
	OpType types.EntryKind
	Name   string
	Count  int
	Mean   time.Duration
	Min    time.Duration
	Max    time.Duration
	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
}

// Percentile computes the nearest-rank percentile of sorted durations. The
// 1-indexed rank is p/100 * N rounded to the nearest integer (halves down),
// clamped to [1, N]: for ten samples p50 is the 5th value, p95 the 9th, p99
// the 10th.
func Percentile(sorted []time.Duration, p int) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := (2*p*n + 99) / 200 // round(p/100 * n), halves down
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1]
}

func computeStats(operations []*Operation) []OperationStats {
	type group struct {
		opType    types.EntryKind
		name      string
		durations []time.Duration
	}

	var order []string
	groups := make(map[string]*group)
	for _, op := range operations {
		key := op.OpType.String() + "\x00" + op.Name
		g, ok := groups[key]
		if !ok {
			g = &group{opType: op.OpType, name: op.Name}
			groups[key] = g
			order = append(order, key)
		}
		g.durations = append(g.durations, op.Duration)
	}

	stats := make([]OperationStats, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		durations := append([]time.Duration(nil), g.durations...)
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

		var sum time.Duration
		for _, d := range durations {
			sum += d
		}
		n := len(durations)

		stats = append(stats, OperationStats{
			OpType: g.opType,
			Name:   g.name,
			Count:  n,
			Mean:   sum / time.Duration(n),
			Min:    durations[0],
			Max:    durations[n-1],
			P50:    Percentile(durations, 50),
			P95:    Percentile(durations, 95),
			P99:    Percentile(durations, 99),
		})
	}

	// Slowest groups first by default.
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Mean > stats[j].Mean })
	return stats
}

// StatsSortOrder selects how the stats block is ordered for output.
type StatsSortOrder int

const (
	StatsSortDuration StatsSortOrder = iota
	StatsSortCount
	StatsSortName
)

// ParseStatsSortOrder resolves a --sort-by value.
func ParseStatsSortOrder(s string) (StatsSortOrder, error) {
	switch strings.ToLower(s) {
	case "", "duration":
		return StatsSortDuration, nil
	case "count":
		return StatsSortCount, nil
	case "name":
		return StatsSortName, nil
	default:
		return 0, fmt.Errorf("unknown sort order '%s' (duration, count, name)", s)
	}
}

// SortStats orders the stats block.
func SortStats(stats []OperationStats, order StatsSortOrder) {
	sort.SliceStable(stats, func(i, j int) bool {
		switch order {
		case StatsSortCount:
			return stats[i].Count > stats[j].Count
		case StatsSortName:
			return stats[i].Name < stats[j].Name
		default:
			return stats[i].Mean > stats[j].Mean
		}
	})
}

// SlowOperations returns every completed operation with duration >= threshold,
// slowest first, names ascending on ties.
func (r *Results) SlowOperations(threshold time.Duration) []*Operation {
	var slow []*Operation
	for _, op := range r.Operations {
		if op.Duration >= threshold {
			slow = append(slow, op)
		}
	}
	sort.SliceStable(slow, func(i, j int) bool {
		if slow[i].Duration != slow[j].Duration {
			return slow[i].Duration > slow[j].Duration
		}
		return slow[i].Name < slow[j].Name
	})
	return slow
}

// TopSlowOperations truncates SlowOperations to at most n items; n <= 0 means
// no limit.
func (r *Results) TopSlowOperations(threshold time.Duration, n int) []*Operation {
	slow := r.SlowOperations(threshold)
	if n > 0 && len(slow) > n {
		slow = slow[:n]
	}
	return slow
}
