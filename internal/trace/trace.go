// Package trace collects the lifecycle of a single operation or session from
// a merged entry stream.
package trace

import (
	"strings"

	"github.com/eirenik0/log-analyzer/internal/filter"
	"github.com/eirenik0/log-analyzer/pkg/types"
)

// SelectorKind distinguishes correlation-id tracing from session-path tracing.
type SelectorKind int

const (
	ByID SelectorKind = iota
	BySession
)

func (k SelectorKind) String() string {
	if k == BySession {
		return "session"
	}
	return "id"
}

// Selector picks the entries belonging to one traced lifecycle.
type Selector struct {
	Kind  SelectorKind
	Value string
}

// Matches reports whether the entry belongs to the traced lifecycle.
// ID tracing matches the raw record text (correlation ids appear in payloads
// too) or the request id; session tracing matches the component_id path.
func (s Selector) Matches(entry *types.LogEntry) bool {
	switch s.Kind {
	case BySession:
		return entry.ComponentID != "" && strings.Contains(entry.ComponentID, s.Value)
	default:
		if strings.Contains(entry.Raw, s.Value) {
			return true
		}
		return entry.RequestID != "" && strings.Contains(entry.RequestID, s.Value)
	}
}

// Collect returns the traced entries in stream order, after the filter.
func Collect(entries []*types.LogEntry, expr *filter.Expression, selector Selector) []*types.LogEntry {
	var out []*types.LogEntry
	for _, entry := range entries {
		if expr.Matches(entry) && selector.Matches(entry) {
			out = append(out, entry)
		}
	}
	return out
}
