// Package perf pairs operation start/completion records from one merged,
// time-ordered entry stream and aggregates duration statistics.
package perf

import (
	"fmt"
	"strconv"
	"time"

	"github.com/eirenik0/log-analyzer/internal/config"
	"github.com/eirenik0/log-analyzer/pkg/types"
)

// Side marks which half of an orphaned operation was observed.
type Side int

const (
	SideStart Side = iota
	SideCompletion
)

func (s Side) String() string {
	if s == SideCompletion {
		return "completion"
	}
	return "start"
}

// Operation is one paired (or half-observed) unit of work. Start and End
// reference entries by identity; payloads are never copied.
type Operation struct {
	OpType        types.EntryKind
	Name          string
	CorrelationID string // explicit id, or "" when the key was synthesized
	Start         *types.LogEntry
	End           *types.LogEntry
	Duration      time.Duration // valid only when both sides are present
	Orphan        bool
	OrphanSide    Side
}

// Endpoint returns the request endpoint when either side carries one.
func (o *Operation) Endpoint() string {
	if o.Start != nil && o.Start.Endpoint != "" {
		return o.Start.Endpoint
	}
	if o.End != nil {
		return o.End.Endpoint
	}
	return ""
}

// Entry returns whichever side was observed, preferring the start.
func (o *Operation) Entry() *types.LogEntry {
	if o.Start != nil {
		return o.Start
	}
	return o.End
}

// Results of one perf analysis pass.
type Results struct {
	Operations   []*Operation // completed pairs, in completion order
	Orphans      []*Operation // unpaired starts and completions, in stream order
	Stats        []OperationStats
	TotalEntries int
	RangeStart   time.Time
	RangeEnd     time.Time
}

// Analyzer pairs operations according to a profile's perf rules.
type Analyzer struct {
	profile *config.Profile
}

// NewAnalyzer creates an Analyzer bound to the given profile.
func NewAnalyzer(profile *config.Profile) *Analyzer {
	return &Analyzer{profile: profile}
}

// Options narrows an analysis pass.
type Options struct {
	// OpType restricts pairing to one entry kind; KindGeneric means all.
	OpType types.EntryKind
	// All disables the OpType restriction.
	All bool
}

type role int

const (
	roleNone role = iota
	roleStart
	roleCompletion
)

// Analyze consumes one merged, time-ordered stream. Matching is FIFO per
// correlation key: the earliest unmatched start pairs with the earliest
// subsequent completion sharing the key. Because the stream is merged before
// pairing, an operation may start in one file and finish in another. Starts
// with no completion by end of stream and completions with no preceding start
// are both reported as orphans.
func (a *Analyzer) Analyze(entries []*types.LogEntry, opts Options) *Results {
	results := &Results{TotalEntries: len(entries)}
	if len(entries) > 0 {
		results.RangeStart = entries[0].Timestamp
		results.RangeEnd = entries[len(entries)-1].Timestamp
	}

	// Commands are only tracked when some command completion marker appears
	// in the stream; otherwise every command would show up as an orphan in
	// logs from SDKs that never log completion.
	trackCommands := a.hasCommandCompletions(entries)

	pending := make(map[string][]*Operation) // FIFO queues per key
	var pendingOrder []*Operation            // stream-ordered view of unmatched starts
	seq := &sequencer{
		start:      make(map[string]int),
		completion: make(map[string]int),
	}

	for _, entry := range entries {
		if !opts.All && opts.OpType != types.KindGeneric && entry.Kind != opts.OpType {
			continue
		}
		if entry.Kind == types.KindGeneric {
			continue
		}
		if entry.Kind == types.KindCommand && !trackCommands {
			continue
		}

		r := a.roleOf(entry)
		if r == roleNone {
			continue
		}

		key, explicit := a.correlationKey(entry, r, seq)
		if key == "" {
			continue
		}

		switch r {
		case roleStart:
			op := &Operation{
				OpType: entry.Kind,
				Name:   entry.Name,
				Start:  entry,
			}
			if explicit {
				op.CorrelationID = key
			}
			pending[key] = append(pending[key], op)
			pendingOrder = append(pendingOrder, op)

		case roleCompletion:
			queue := pending[key]
			if len(queue) == 0 {
				results.Orphans = append(results.Orphans, &Operation{
					OpType:        entry.Kind,
					Name:          entry.Name,
					CorrelationID: explicitID(key, explicit),
					End:           entry,
					Orphan:        true,
					OrphanSide:    SideCompletion,
				})
				continue
			}
			op := queue[0]
			pending[key] = queue[1:]
			op.End = entry
			op.Duration = entry.Timestamp.Sub(op.Start.Timestamp)
			results.Operations = append(results.Operations, op)
		}
	}

	// Everything still pending is an orphaned start.
	for _, op := range pendingOrder {
		if op.End == nil {
			op.Orphan = true
			op.OrphanSide = SideStart
			results.Orphans = append(results.Orphans, op)
		}
	}

	results.Stats = computeStats(results.Operations)
	return results
}

func explicitID(key string, explicit bool) string {
	if explicit {
		return key
	}
	return ""
}

func (a *Analyzer) roleOf(entry *types.LogEntry) role {
	switch entry.Kind {
	case types.KindRequest:
		// A send is the start of the request's round trip.
		if entry.Direction == types.DirectionOutgoing {
			return roleStart
		}
		return roleCompletion

	case types.KindEvent:
		// A received event starts processing; the resulting emit completes it.
		if entry.Direction == types.DirectionIncoming {
			return roleStart
		}
		return roleCompletion

	case types.KindCommand:
		rules := &a.profile.Perf
		if config.ContainsAnyMarker(entry.Message, rules.CommandStartMarkers) {
			return roleStart
		}
		if config.ContainsAnyMarker(entry.Message, rules.CommandCompletionMarkers) {
			return roleCompletion
		}
	}
	return roleNone
}

// sequencer issues per-key occurrence numbers for synthesized correlation
// keys, counting starts and completions independently so the n-th start pairs
// with the n-th completion.
type sequencer struct {
	start      map[string]int
	completion map[string]int
}

func (s *sequencer) next(base string, r role) int {
	if r == roleStart {
		n := s.start[base]
		s.start[base]++
		return n
	}
	n := s.completion[base]
	s.completion[base]++
	return n
}

// correlationKey returns the pairing key for an entry and whether it is an
// explicit id. Entries without an explicit id get a synthesized key of
// (kind, component, component path, name, nth-occurrence).
func (a *Analyzer) correlationKey(entry *types.LogEntry, r role, seq *sequencer) (string, bool) {
	switch entry.Kind {
	case types.KindRequest:
		if entry.RequestID != "" {
			return entry.RequestID, true
		}
	case types.KindEvent:
		if entry.Payload != nil {
			for _, field := range a.profile.Perf.EventCorrelationKeys {
				if field == "" {
					continue
				}
				if v := entry.Payload.GetStringBytes(field); v != nil {
					return string(v), true
				}
			}
		}
		// Events without a correlation key cannot be paired reliably.
		return "", false
	}

	base := entry.Kind.String() + "\x00" + entry.Component + "\x00" + entry.ComponentID + "\x00" + entry.Name
	return base + "\x00" + strconv.Itoa(seq.next(base, r)), false
}

func (a *Analyzer) hasCommandCompletions(entries []*types.LogEntry) bool {
	markers := a.profile.Perf.CommandCompletionMarkers
	for _, entry := range entries {
		if entry.Kind == types.KindCommand && config.ContainsAnyMarker(entry.Message, markers) {
			return true
		}
	}
	return false
}

// String renders an operation for diagnostics.
func (o *Operation) String() string {
	if o.Orphan {
		return fmt.Sprintf("%s %q orphan-%s", o.OpType, o.Name, o.OrphanSide)
	}
	return fmt.Sprintf("%s %q %s", o.OpType, o.Name, o.Duration)
}
