package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eirenik0/log-analyzer/pkg/types"
)

func TestLoadBuiltinBase(t *testing.T) {
	profile, err := LoadBuiltin("base")
	if err != nil {
		t.Fatalf("LoadBuiltin(base): %v", err)
	}
	if profile.Parser.CommandPrefix == "" {
		t.Error("base profile has no command prefix")
	}
	if len(profile.Perf.CommandCompletionMarkers) == 0 {
		t.Error("base profile has no command completion markers")
	}
	if len(profile.Perf.EventCorrelationKeys) == 0 {
		t.Error("base profile has no event correlation keys")
	}
}

func TestLoadBuiltinAllTemplates(t *testing.T) {
	for _, name := range BuiltinNames() {
		if _, err := LoadBuiltin(name); err != nil {
			t.Errorf("LoadBuiltin(%s): %v", name, err)
		}
	}
}

func TestLoadBuiltinNormalizesReference(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		ok   bool
	}{
		{"bare name", "base", true},
		{"uppercase", "BASE", true},
		{"file name", "base.yaml", true},
		{"path", "templates/base.yaml", true},
		{"unknown", "nonexistent", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBuiltin(tt.ref)
			if (err == nil) != tt.ok {
				t.Errorf("LoadBuiltin(%q) err = %v, want ok = %v", tt.ref, err, tt.ok)
			}
		})
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	profile, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	base := Default()
	if profile.Parser.CommandPrefix != base.Parser.CommandPrefix {
		t.Errorf("Load(\"\") differs from the base profile")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("/nonexistent/profile.yaml"); err == nil {
		t.Error("expected error for missing profile file")
	}
}

func TestLoadBrokenYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("parser: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for broken YAML")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	profile := Default()
	profile.Name = "round-trip"
	profile.Known.Components = []string{"core", "net"}

	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := Save(profile, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name != "round-trip" {
		t.Errorf("Name = %q", loaded.Name)
	}
	if len(loaded.Known.Components) != 2 || loaded.Known.Components[0] != "core" {
		t.Errorf("Components = %v", loaded.Known.Components)
	}
	if loaded.Parser.CommandPrefix != profile.Parser.CommandPrefix {
		t.Errorf("parser rules lost in round trip")
	}
}

func TestLoadTemplateFallsBackToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("name: from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	profile, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	if profile.Name != "from-file" {
		t.Errorf("Name = %q, want from-file", profile.Name)
	}
}

func TestContainsAnyMarker(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		markers []string
		want    bool
	}{
		{"match", `Command "check" is called`, []string{"is called"}, true},
		{"no match", `Command "check" is called`, []string{"finished"}, false},
		{"second marker matches", "request finished successfully", []string{"failed", "finished"}, true},
		{"empty list", "anything", nil, false},
		{"empty marker never matches", "anything", []string{""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsAnyMarker(tt.text, tt.markers); got != tt.want {
				t.Errorf("ContainsAnyMarker(%q, %v) = %v, want %v", tt.text, tt.markers, got, tt.want)
			}
		})
	}
}

func TestHasHints(t *testing.T) {
	var empty Profile
	if empty.HasHints() {
		t.Error("empty profile reports hints")
	}
	withKnown := Profile{Known: KnownRules{Commands: []string{"check"}}}
	if !withKnown.HasHints() {
		t.Error("profile with known commands reports no hints")
	}
	withLevels := Profile{Sessions: SessionRules{Levels: []SessionLevel{{Name: "manager"}}}}
	if !withLevels.HasHints() {
		t.Error("profile with session levels reports no hints")
	}
}

func genEntry(component, componentID string, kind types.EntryKind, name string) *types.LogEntry {
	return &types.LogEntry{
		Component:   component,
		ComponentID: componentID,
		Timestamp:   time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Level:       types.LevelInfo,
		Kind:        kind,
		Name:        name,
	}
}

func TestGenerateCollectsKnownNames(t *testing.T) {
	entries := []*types.LogEntry{
		genEntry("net", "", types.KindRequest, "MatchWindow"),
		genEntry("core", "", types.KindCommand, "check"),
		genEntry("core", "", types.KindCommand, "open"),
		genEntry("core", "", types.KindEvent, "setConfig"),
	}

	profile := Generate(entries, Default(), GenerateOptions{ProfileName: "derived"})
	if profile.Name != "derived" {
		t.Errorf("Name = %q", profile.Name)
	}
	if got := profile.Known.Components; len(got) != 2 || got[0] != "core" || got[1] != "net" {
		t.Errorf("Components = %v", got)
	}
	if got := profile.Known.Commands; len(got) != 2 || got[0] != "check" || got[1] != "open" {
		t.Errorf("Commands = %v", got)
	}
	if got := profile.Known.Requests; len(got) != 1 || got[0] != "MatchWindow" {
		t.Errorf("Requests = %v", got)
	}
}

func TestGenerateKeepsBaseParserRules(t *testing.T) {
	base := Default()
	profile := Generate(nil, base, GenerateOptions{})
	if profile.Parser.CommandPrefix != base.Parser.CommandPrefix {
		t.Errorf("parser rules not carried over")
	}
	if len(profile.Perf.CommandCompletionMarkers) != len(base.Perf.CommandCompletionMarkers) {
		t.Errorf("perf rules not carried over")
	}
}

func TestGenerateSessionLevelCandidates(t *testing.T) {
	entries := []*types.LogEntry{
		genEntry("core", "manager-1/worker-1", types.KindGeneric, ""),
		genEntry("core", "manager-1/worker-2", types.KindGeneric, ""),
		genEntry("core", "manager-2/worker-3", types.KindGeneric, ""),
		genEntry("core", "solo-1", types.KindGeneric, ""),
	}

	profile := Generate(entries, Default(), GenerateOptions{})
	levels := profile.Sessions.Levels
	if len(levels) != 2 {
		t.Fatalf("Levels = %+v, want 2", levels)
	}
	// worker- occurs three times, manager- three times; lexical tiebreak puts
	// manager- first. solo- occurs once and is dropped.
	if levels[0].SegmentPrefix != "manager-" || levels[0].Name != "manager" {
		t.Errorf("levels[0] = %+v", levels[0])
	}
	if levels[1].SegmentPrefix != "worker-" || levels[1].Name != "worker" {
		t.Errorf("levels[1] = %+v", levels[1])
	}
}

func TestGenerateIgnoresDeepSegments(t *testing.T) {
	// Only the first two path segments seed session level candidates.
	entries := []*types.LogEntry{
		genEntry("core", "manager-1/worker-1/task-1", types.KindGeneric, ""),
		genEntry("core", "manager-1/worker-1/task-2", types.KindGeneric, ""),
	}

	profile := Generate(entries, Default(), GenerateOptions{})
	for _, level := range profile.Sessions.Levels {
		if level.SegmentPrefix == "task-" {
			t.Errorf("deep segment promoted to session level: %+v", level)
		}
	}
}

func TestNormalizeTemplateKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"base", "base"},
		{" Base ", "base"},
		{"base.yaml", "base"},
		{"dir/sub/custom-start.yml", "custom-start"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := normalizeTemplateKey(tt.input); got != tt.want {
			t.Errorf("normalizeTemplateKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
