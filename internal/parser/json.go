package parser

import (
	"strings"

	"github.com/valyala/fastjson"
)

// scanJSON locates the first balanced JSON value in s starting at or after
// from. It tracks brace/bracket nesting with string and escape awareness so
// payloads spanning multiple lines are captured whole. Returns the half-open
// [start, end) span of the value. ok is false when no value opens; truncated
// is true when a value opens but never closes before the input ends.
func scanJSON(s string, from int) (start, end int, ok, truncated bool) {
	start = -1
	for i := from; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, 0, false, false
	}

	var (
		braces   int
		brackets int
		inString bool
		escaped  bool
	)
	opener := s[start]

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			braces++
		case '}':
			braces--
			if braces == 0 && brackets == 0 && opener == '{' {
				return start, i + 1, true, false
			}
		case '[':
			brackets++
		case ']':
			brackets--
			if brackets == 0 && braces == 0 && opener == '[' {
				return start, i + 1, true, false
			}
		}
	}

	return start, len(s), false, true
}

// parsePayload parses a JSON snippet into a fastjson tree. JavaScript-flavored
// `undefined` tokens are rewritten to null first; SDK logs contain them.
func parsePayload(s string) (*fastjson.Value, error) {
	return fastjson.Parse(strings.ReplaceAll(s, "undefined", "null"))
}

// extractJSON finds and parses the first balanced JSON value in s. The
// returned start index points at the opening brace within s; callers use it to
// clean the surrounding message text. A span that fails to parse is treated as
// not-JSON rather than an error: log messages legitimately contain braces.
func extractJSON(s string, from int) (v *fastjson.Value, start int, truncated bool) {
	for pos := from; pos < len(s); {
		jsonStart, jsonEnd, ok, trunc := scanJSON(s, pos)
		if trunc {
			return nil, jsonStart, true
		}
		if !ok {
			return nil, -1, false
		}
		if parsed, err := parsePayload(s[jsonStart:jsonEnd]); err == nil {
			return parsed, jsonStart, false
		}
		pos = jsonStart + 1
	}
	return nil, -1, false
}
