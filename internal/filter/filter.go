// Package filter implements the filter expression language shared by every
// analysis command.
//
// An expression is a whitespace-separated list of [!]type:value terms. Terms
// of different types AND together; include terms of the same type OR together,
// as do exclude terms. An entry is kept when it matches at least one include
// term of every constrained type and no exclude term of any type.
package filter

import (
	"fmt"
	"strings"

	"github.com/eirenik0/log-analyzer/pkg/types"
)

// Type identifies what part of an entry a term constrains.
type Type int

const (
	TypeComponent Type = iota
	TypeLevel
	TypeText
	TypeDirection
)

// ParseType resolves a filter type name or alias.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "component", "comp", "c":
		return TypeComponent, nil
	case "level", "lvl", "l":
		return TypeLevel, nil
	case "text", "t":
		return TypeText, nil
	case "direction", "dir", "d":
		return TypeDirection, nil
	default:
		return 0, fmt.Errorf("unknown filter type '%s' (component, level, text, direction)", s)
	}
}

func (t Type) String() string {
	switch t {
	case TypeComponent:
		return "component"
	case TypeLevel:
		return "level"
	case TypeText:
		return "text"
	default:
		return "direction"
	}
}

// Term is a single [!]type:value constraint.
type Term struct {
	Type    Type
	Value   string
	Exclude bool
}

// ParseTerm parses one term.
func ParseTerm(s string) (Term, error) {
	exclude := false
	rest := s
	if strings.HasPrefix(rest, "!") {
		exclude = true
		rest = rest[1:]
	}

	typeName, value, found := strings.Cut(rest, ":")
	if !found {
		return Term{}, fmt.Errorf("expected 'type:value', got '%s'", s)
	}

	ft, err := ParseType(typeName)
	if err != nil {
		return Term{}, err
	}

	value = strings.Trim(strings.TrimSpace(value), `"`)
	if value == "" {
		return Term{}, fmt.Errorf("empty value for filter type '%s'", ft)
	}

	if ft == TypeDirection && types.ParseDirection(value) == types.DirectionNone {
		return Term{}, fmt.Errorf("invalid direction '%s' (incoming, outgoing, in, out)", value)
	}

	return Term{Type: ft, Value: value, Exclude: exclude}, nil
}

// Expression is a parsed filter. The zero value matches everything.
type Expression struct {
	Terms []Term
}

// Parse parses a whole filter expression. Quoted values may contain spaces.
// Bare words without a colon are ignored, matching the original syntax where
// only type:value tokens carry meaning.
func Parse(s string) (*Expression, error) {
	expr := &Expression{}
	for _, part := range splitPreservingQuotes(s) {
		if !strings.Contains(part, ":") {
			continue
		}
		term, err := ParseTerm(part)
		if err != nil {
			return nil, err
		}
		expr.Terms = append(expr.Terms, term)
	}
	return expr, nil
}

// IsEmpty reports whether the expression has no constraints.
func (e *Expression) IsEmpty() bool {
	return e == nil || len(e.Terms) == 0
}

// Includes returns the include values for a type.
func (e *Expression) Includes(t Type) []string {
	return e.values(t, false)
}

// Excludes returns the exclude values for a type.
func (e *Expression) Excludes(t Type) []string {
	return e.values(t, true)
}

func (e *Expression) values(t Type, exclude bool) []string {
	if e == nil {
		return nil
	}
	var out []string
	for _, term := range e.Terms {
		if term.Type == t && term.Exclude == exclude {
			out = append(out, term.Value)
		}
	}
	return out
}

// Warnings reports non-fatal problems: values that look valid but can never
// match, like a level name no known level uses.
func (e *Expression) Warnings() []string {
	if e == nil {
		return nil
	}
	knownLevels := []string{"TRACE", "DEBUG", "INFO", "WARN", "WARNING", "ERROR", "FATAL"}

	var warnings []string
	for _, term := range e.Terms {
		if term.Type != TypeLevel {
			continue
		}
		known := false
		for _, l := range knownLevels {
			if strings.EqualFold(l, term.Value) {
				known = true
				break
			}
		}
		if !known {
			warnings = append(warnings, fmt.Sprintf("unknown log level '%s' (common levels: %s)", term.Value, strings.Join(knownLevels, ", ")))
		}
	}
	return warnings
}

// Matches evaluates the expression against one entry.
func (e *Expression) Matches(entry *types.LogEntry) bool {
	if e.IsEmpty() {
		return true
	}

	for t := TypeComponent; t <= TypeDirection; t++ {
		includes := e.Includes(t)
		if len(includes) > 0 {
			matched := false
			for _, v := range includes {
				if termMatches(t, v, entry) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}

		for _, v := range e.Excludes(t) {
			if termMatches(t, v, entry) {
				return false
			}
		}
	}
	return true
}

func termMatches(t Type, value string, entry *types.LogEntry) bool {
	switch t {
	case TypeComponent:
		return entry.Component == value
	case TypeLevel:
		return strings.EqualFold(string(entry.Level), value) ||
			entry.Level == types.ParseLevel(value)
	case TypeText:
		return strings.Contains(entry.Message, value)
	case TypeDirection:
		return entry.Direction != types.DirectionNone &&
			entry.Direction == types.ParseDirection(value)
	default:
		return false
	}
}

// Apply returns the entries the expression keeps, preserving order.
func (e *Expression) Apply(entries []*types.LogEntry) []*types.LogEntry {
	if e.IsEmpty() {
		return entries
	}
	kept := make([]*types.LogEntry, 0, len(entries))
	for _, entry := range entries {
		if e.Matches(entry) {
			kept = append(kept, entry)
		}
	}
	return kept
}

// splitPreservingQuotes splits on whitespace while keeping quoted segments
// intact, so terms like text:"connection reset" stay one token.
func splitPreservingQuotes(s string) []string {
	var parts []string
	inQuotes := false
	start := 0

	for i, c := range s {
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case (c == ' ' || c == '\t') && !inQuotes:
			if part := strings.TrimSpace(s[start:i]); part != "" {
				parts = append(parts, part)
			}
			start = i + 1
		}
	}
	if part := strings.TrimSpace(s[start:]); part != "" {
		parts = append(parts, part)
	}
	return parts
}
