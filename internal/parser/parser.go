package parser

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"github.com/eirenik0/log-analyzer/internal/config"
	"github.com/eirenik0/log-analyzer/pkg/types"
)

// entryStart matches real record headers so multiline payload data containing
// " | " never splits an entry.
var entryStart = regexp.MustCompile(`^[\w-]+(?:\s+\([^)]*\))?\s+\|\s+\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)

// timestampLayouts are tried in order; offsets are normalized to UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// Warning records a recoverable per-record problem. Warnings never abort a
// parse and never reorder surviving entries.
type Warning struct {
	File    string
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", w.File, w.Line, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.File, w.Message)
}

// Result is the outcome of parsing one or more files.
type Result struct {
	Entries  []*types.LogEntry
	Warnings []Warning
}

// Parser turns raw log lines into LogEntry values according to a profile.
type Parser struct {
	profile *config.Profile
}

// New creates a Parser bound to the given profile. The profile is referenced,
// never copied, and must not be mutated while the parser is in use.
func New(profile *config.Profile) *Parser {
	return &Parser{profile: profile}
}

// ParseReader parses one file's lines into entries. Records are accumulated
// until the next header line so multi-line JSON payloads stay attached to
// their record. Malformed records degrade to Generic entries with a warning.
func (p *Parser) ParseReader(r io.Reader, path string, fileIndex int) Result {
	var res Result

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		current     strings.Builder
		currentLine int
		lineNumber  int
		lastSeen    time.Time
		haveRecord  bool
	)

	flush := func() {
		if !haveRecord {
			return
		}
		entry, warns := p.parseRecord(current.String(), fileIndex, currentLine, lastSeen)
		for _, w := range warns {
			w.File = path
			res.Warnings = append(res.Warnings, w)
		}
		if entry != nil {
			lastSeen = entry.Timestamp
			res.Entries = append(res.Entries, entry)
		}
		current.Reset()
		haveRecord = false
	}

	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()

		if entryStart.MatchString(line) {
			flush()
			current.WriteString(line)
			currentLine = lineNumber
			haveRecord = true
		} else if haveRecord {
			current.WriteByte('\n')
			current.WriteString(line)
		}
		// Lines before the first header have no record to belong to.
	}
	flush()

	if err := scanner.Err(); err != nil {
		res.Warnings = append(res.Warnings, Warning{File: path, Line: lineNumber, Message: fmt.Sprintf("read aborted: %v", err)})
	}

	return res
}

// parseRecord parses one accumulated record. A record that cannot be parsed
// structurally becomes a Generic entry carrying the raw text, ordered at the
// last seen timestamp of its file.
func (p *Parser) parseRecord(text string, fileIndex, line int, lastSeen time.Time) (*types.LogEntry, []Warning) {
	degraded := func(msg string) (*types.LogEntry, []Warning) {
		return &types.LogEntry{
				Component:  "",
				Timestamp:  lastSeen,
				Level:      types.ParseLevel(""),
				Kind:       types.KindGeneric,
				Message:    text,
				Raw:        text,
				SourceFile: fileIndex,
				SourceLine: line,
			}, []Warning{{
				Line:    line,
				Message: msg,
			}}
	}

	head, rest, found := strings.Cut(text, " | ")
	if !found {
		return degraded("missing ' | ' delimiter, kept as generic entry")
	}

	component, componentID := splitComponent(head)

	timestampStr, level, message, ok := splitHeader(rest)
	if !ok {
		return degraded("missing [LEVEL] section, kept as generic entry")
	}

	timestamp, err := parseTimestamp(timestampStr)
	if err != nil {
		return degraded(fmt.Sprintf("invalid timestamp '%s', kept as generic entry", timestampStr))
	}

	entry := &types.LogEntry{
		Component:   component,
		ComponentID: componentID,
		Timestamp:   timestamp,
		Level:       types.ParseLevel(level),
		Kind:        types.KindGeneric,
		Message:     message,
		Raw:         text,
		SourceFile:  fileIndex,
		SourceLine:  line,
	}

	warns := p.classify(entry, message)
	for i := range warns {
		warns[i].Line = line
	}
	return entry, warns
}

// classify assigns the entry kind by matching configured markers in priority
// order Request > Command > Event, falling back to Generic. Empty marker
// configuration for a category disables that category.
func (p *Parser) classify(entry *types.LogEntry, message string) []Warning {
	rules := &p.profile.Parser

	if rules.RequestPrefix != "" && strings.Contains(message, rules.RequestPrefix) {
		if warns, ok := p.classifyRequest(entry, message); ok {
			return warns
		}
	}

	if rules.CommandPrefix != "" && strings.Contains(message, rules.CommandPrefix) {
		if warns, ok := p.classifyCommand(entry, message); ok {
			return warns
		}
	}

	emit := config.ContainsAnyMarker(message, rules.EventEmitMarkers)
	receive := config.ContainsAnyMarker(message, rules.EventReceiveMarkers)
	if emit || receive {
		if warns, ok := p.classifyEvent(entry, message, emit); ok {
			return warns
		}
		return []Warning{{Message: "event marker without extractable event type, kept as generic entry"}}
	}

	return p.classifyGeneric(entry, message)
}

func (p *Parser) classifyRequest(entry *types.LogEntry, message string) ([]Warning, bool) {
	rules := &p.profile.Parser

	name, after := quotedValueAfter(message, rules.RequestPrefix)
	if name == "" {
		return nil, false
	}

	entry.Kind = types.KindRequest
	entry.Name = name
	entry.RequestID = requestIDAfter(message, after)
	entry.Endpoint = endpointIn(message, rules.RequestEndpointMarker)

	// Receive markers are checked first: completion messages quote the
	// original send phrasing ("that was sent ...").
	switch {
	case config.ContainsAnyMarker(message, rules.RequestReceiveMarkers):
		entry.Direction = types.DirectionIncoming
	case config.ContainsAnyMarker(message, rules.RequestSendMarkers):
		entry.Direction = types.DirectionOutgoing
	default:
		entry.Direction = types.DirectionOutgoing
	}

	var warns []Warning
	entry.Message, entry.Payload, warns = p.extractMarkedPayload(message, rules.RequestPayloadMarkers)
	return warns, true
}

func (p *Parser) classifyCommand(entry *types.LogEntry, message string) ([]Warning, bool) {
	rules := &p.profile.Parser

	// The start marker gates classification so a message merely quoting a
	// command name is not misread as a command record. Completion records
	// carry a perf completion marker instead of the start marker.
	if rules.CommandStartMarker != "" &&
		!strings.Contains(message, rules.CommandStartMarker) &&
		!config.ContainsAnyMarker(message, p.profile.Perf.CommandCompletionMarkers) {
		return nil, false
	}

	name, _ := quotedValueAfter(message, rules.CommandPrefix)
	if name == "" {
		return nil, false
	}

	entry.Kind = types.KindCommand
	entry.Name = name

	var warns []Warning
	entry.Message, entry.Payload, warns = p.extractMarkedPayload(message, rules.CommandPayloadMarkers)
	return warns, true
}

func (p *Parser) classifyEvent(entry *types.LogEntry, message string, emit bool) ([]Warning, bool) {
	rules := &p.profile.Parser

	sep := rules.EventPayloadSeparator
	if sep == "" {
		return nil, false
	}
	before, after, found := strings.Cut(message, sep)
	if !found {
		return nil, false
	}

	name := extractEventType(before)
	if name == "" {
		return nil, false
	}

	entry.Kind = types.KindEvent
	entry.Name = name
	if emit {
		entry.Direction = types.DirectionOutgoing
	} else {
		entry.Direction = types.DirectionIncoming
	}

	payload, _, truncated := extractJSON(after, 0)
	var warns []Warning
	if truncated {
		warns = append(warns, Warning{Message: "unterminated JSON payload at end of input, payload dropped"})
	}
	entry.Payload = payload
	if payload != nil || truncated {
		entry.Message = strings.TrimRight(before, " ") + " " + sep + " [JSON removed]"
	}
	return warns, true
}

func (p *Parser) classifyGeneric(entry *types.LogEntry, message string) []Warning {
	payload, start, truncated := extractJSON(message, 0)
	if truncated {
		return []Warning{{Message: "unterminated JSON payload at end of input, payload dropped"}}
	}
	if payload == nil {
		return nil
	}
	entry.Payload = payload
	entry.Message = message[:start] + "[JSON removed]"
	return nil
}

// extractMarkedPayload extracts JSON following the first matching payload
// marker and replaces it with a placeholder in the cleaned message. Without a
// marker match the whole message is left untouched.
func (p *Parser) extractMarkedPayload(message string, markers []string) (string, *fastjson.Value, []Warning) {
	for _, marker := range markers {
		if marker == "" {
			continue
		}
		idx := strings.Index(message, marker)
		if idx < 0 {
			continue
		}

		payload, _, truncated := extractJSON(message, idx+len(marker))
		if truncated {
			cleaned := message[:idx+len(marker)] + " [JSON truncated]"
			return cleaned, nil, []Warning{{Message: "unterminated JSON payload at end of input, payload dropped"}}
		}
		if payload == nil {
			continue
		}
		cleaned := message[:idx+len(marker)] + " [JSON removed]"
		return cleaned, payload, nil
	}
	return message, nil, nil
}

// splitComponent splits "component (id/path)" into its parts.
func splitComponent(head string) (component, componentID string) {
	head = strings.TrimSpace(head)
	space := strings.IndexByte(head, ' ')
	if space < 0 {
		return head, ""
	}
	component = head[:space]
	rest := strings.TrimSpace(head[space+1:])
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		return component, rest[1 : len(rest)-1]
	}
	return component, ""
}

// splitHeader splits "timestamp [LEVEL] message" into its parts.
func splitHeader(rest string) (timestamp, level, message string, ok bool) {
	open := strings.IndexByte(rest, '[')
	if open < 0 {
		return "", "", "", false
	}
	closing := strings.IndexByte(rest[open:], ']')
	if closing < 0 {
		return "", "", "", false
	}
	closing += open

	timestamp = strings.TrimSpace(rest[:open])
	level = strings.TrimSpace(rest[open+1 : closing])
	if closing+2 <= len(rest) {
		message = rest[closing+2:]
	}
	return timestamp, level, message, true
}

func parseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// quotedValueAfter returns the quoted value following prefix in message and
// the index just past its closing quote.
func quotedValueAfter(message, prefix string) (string, int) {
	start := strings.Index(message, prefix)
	if start < 0 {
		return "", -1
	}
	nameStart := start + len(prefix)
	end := strings.IndexByte(message[nameStart:], '"')
	if end < 0 {
		return "", -1
	}
	return message[nameStart : nameStart+end], nameStart + end + 1
}

// requestIDAfter extracts a correlation id in the form ` [n--uuid]` directly
// after the request name. Bracketed JSON arrays do not qualify: a real id
// contains the "--" separator and no spaces.
func requestIDAfter(message string, from int) string {
	if from < 0 || from >= len(message) {
		return ""
	}
	rest := message[from:]
	if !strings.HasPrefix(rest, " [") {
		return ""
	}
	end := strings.IndexByte(rest[2:], ']')
	if end < 0 {
		return ""
	}
	candidate := rest[2 : 2+end]
	if strings.Contains(candidate, "--") && !strings.Contains(candidate, " ") {
		return candidate
	}
	return ""
}

// endpointIn extracts the endpoint following the configured endpoint marker,
// e.g. `address "[https://host/path]`.
func endpointIn(message, marker string) string {
	if marker == "" {
		return ""
	}
	start := strings.Index(message, marker)
	if start < 0 {
		return ""
	}
	content := message[start+len(marker):]
	end := strings.IndexByte(content, ']')
	if end < 0 {
		return ""
	}
	return content[:end]
}

// extractEventType pulls the event name out of the text before the payload
// separator: either a {"name": ...} object or the first quoted string.
func extractEventType(before string) string {
	if strings.Contains(before, `"name":`) {
		open := strings.IndexByte(before, '{')
		closing := strings.IndexByte(before, '}')
		if open >= 0 && closing > open {
			if v, err := parsePayload(before[open : closing+1]); err == nil {
				if name := v.GetStringBytes("name"); name != nil {
					return string(name)
				}
			}
		}
		return ""
	}

	open := strings.IndexByte(before, '"')
	if open < 0 {
		return ""
	}
	closing := strings.IndexByte(before[open+1:], '"')
	if closing < 0 {
		return ""
	}
	return before[open+1 : open+1+closing]
}
