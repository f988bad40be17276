package parser

import (
	"testing"
)

func TestScanJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantSpan  string
		wantOK    bool
		wantTrunc bool
	}{
		{name: "simple object", input: `before {"a": 1} after`, wantSpan: `{"a": 1}`, wantOK: true},
		{name: "nested object", input: `x {"a": {"b": [1, 2]}} y`, wantSpan: `{"a": {"b": [1, 2]}}`, wantOK: true},
		{name: "array value", input: `items [1, {"a": 2}]`, wantSpan: `[1, {"a": 2}]`, wantOK: true},
		{name: "braces inside string", input: `{"msg": "b}r{ace"}`, wantSpan: `{"msg": "b}r{ace"}`, wantOK: true},
		{name: "escaped quote inside string", input: `{"msg": "say \"}\" loud"}`, wantSpan: `{"msg": "say \"}\" loud"}`, wantOK: true},
		{name: "multiline", input: "{\n  \"a\": 1\n}", wantSpan: "{\n  \"a\": 1\n}", wantOK: true},
		{name: "no json", input: "plain text only", wantOK: false},
		{name: "unterminated", input: `data {"a": 1`, wantTrunc: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok, truncated := scanJSON(tt.input, 0)
			if ok != tt.wantOK || truncated != tt.wantTrunc {
				t.Fatalf("ok=%v truncated=%v, want ok=%v truncated=%v", ok, truncated, tt.wantOK, tt.wantTrunc)
			}
			if ok && tt.input[start:end] != tt.wantSpan {
				t.Errorf("span = %q, want %q", tt.input[start:end], tt.wantSpan)
			}
		})
	}
}

func TestParsePayloadRewritesUndefined(t *testing.T) {
	v, err := parsePayload(`{"a": undefined, "b": 2}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Get("a").Type().String() != "null" {
		t.Errorf("a = %s, want null", v.Get("a").Type())
	}
	if v.GetInt("b") != 2 {
		t.Errorf("b = %d, want 2", v.GetInt("b"))
	}
}

func TestExtractJSONSkipsNonJSONBraces(t *testing.T) {
	// The first brace pair is not valid JSON; the extractor retries further in.
	v, start, truncated := extractJSON(`weird {not json} then {"a": 1}`, 0)
	if truncated {
		t.Fatal("unexpected truncation")
	}
	if v == nil {
		t.Fatal("expected a parsed value")
	}
	if v.GetInt("a") != 1 {
		t.Errorf("a = %d, want 1", v.GetInt("a"))
	}
	if start != 22 {
		t.Errorf("start = %d, want 22", start)
	}
}

func TestExtractJSONNone(t *testing.T) {
	v, start, truncated := extractJSON("no payload here", 0)
	if v != nil || truncated || start != -1 {
		t.Errorf("got v=%v start=%d truncated=%v, want nil/-1/false", v, start, truncated)
	}
}
