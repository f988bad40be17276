package types

import (
	"strings"
	"time"

	"github.com/valyala/fastjson"
)

// Level is a normalized log severity.
type Level string

const (
	LevelTrace Level = "TRACE"
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// ParseLevel normalizes a level string (case-insensitive). Unknown values are
// passed through uppercased so they survive filtering and display.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR", "FATAL":
		return LevelError
	default:
		return Level(strings.ToUpper(strings.TrimSpace(s)))
	}
}

// Severity ranks levels for sorting. Unknown levels rank below TRACE.
func (l Level) Severity() int {
	switch l {
	case LevelTrace:
		return 1
	case LevelDebug:
		return 2
	case LevelInfo:
		return 3
	case LevelWarn:
		return 4
	case LevelError:
		return 5
	default:
		return 0
	}
}

// EntryKind discriminates the closed set of log entry variants.
type EntryKind int

const (
	KindGeneric EntryKind = iota
	KindEvent
	KindCommand
	KindRequest
)

func (k EntryKind) String() string {
	switch k {
	case KindEvent:
		return "Event"
	case KindCommand:
		return "Command"
	case KindRequest:
		return "Request"
	default:
		return "Generic"
	}
}

// Direction marks whether an event/request entry is incoming or outgoing.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionIncoming
	DirectionOutgoing
)

func (d Direction) String() string {
	switch d {
	case DirectionIncoming:
		return "incoming"
	case DirectionOutgoing:
		return "outgoing"
	default:
		return ""
	}
}

// ParseDirection parses a direction value (case-insensitive, with short
// aliases). Returns DirectionNone for unrecognized input.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incoming", "in":
		return DirectionIncoming
	case "outgoing", "out":
		return DirectionOutgoing
	default:
		return DirectionNone
	}
}

// LogEntry is one parsed log record. Entries are immutable once the parser has
// produced them; downstream stages share them read-only by pointer.
type LogEntry struct {
	Component   string
	ComponentID string // hierarchical path, e.g. "manager-3/worker-1"
	Timestamp   time.Time
	Level       Level
	Kind        EntryKind
	Name        string    // event type, command name, or request name
	Direction   Direction // events and requests only
	RequestID   string    // requests only, when present
	Endpoint    string    // requests only, when present
	Message     string    // cleaned message text
	Raw         string    // original record text, including payload lines
	Payload     *fastjson.Value
	SourceFile  int // index into the input file list
	SourceLine  int // 1-based line number of the record's first line
}

// CorrelationID returns the explicit pairing key for the entry, or "" when the
// entry carries none.
func (e *LogEntry) CorrelationID() string {
	return e.RequestID
}

// KindLabel renders the kind with its name, e.g. `Command "openSession"`.
func (e *LogEntry) KindLabel() string {
	if e.Kind == KindGeneric || e.Name == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + " \"" + e.Name + "\""
}

// PayloadJSON renders the payload as compact JSON, or "" without one.
func (e *LogEntry) PayloadJSON() string {
	if e.Payload == nil {
		return ""
	}
	return string(e.Payload.MarshalTo(nil))
}
