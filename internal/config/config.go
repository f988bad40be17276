package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var embeddedProfiles embed.FS

// builtinNames lists the embedded profile templates, base first.
var builtinNames = []string{"base", "custom-start", "service-api", "event-pipeline"}

// Profile is the rule set driving parsing, perf pairing, and session
// tracking. It is loaded once per invocation and treated as immutable.
type Profile struct {
	Name     string       `yaml:"name,omitempty"`
	Parser   ParserRules  `yaml:"parser,omitempty"`
	Perf     PerfRules    `yaml:"perf,omitempty"`
	Known    KnownRules   `yaml:"known,omitempty"`
	Sessions SessionRules `yaml:"sessions,omitempty"`
}

// ParserRules configures how raw messages are classified into entry kinds and
// where their JSON payloads begin. Empty marker lists are valid and classify
// nothing into that category.
type ParserRules struct {
	EventEmitMarkers      []string `yaml:"event_emit_markers,omitempty"`
	EventReceiveMarkers   []string `yaml:"event_receive_markers,omitempty"`
	EventPayloadSeparator string   `yaml:"event_payload_separator,omitempty"`
	CommandPrefix         string   `yaml:"command_prefix,omitempty"`
	CommandStartMarker    string   `yaml:"command_start_marker,omitempty"`
	CommandPayloadMarkers []string `yaml:"command_payload_markers,omitempty"`
	RequestPrefix         string   `yaml:"request_prefix,omitempty"`
	RequestSendMarkers    []string `yaml:"request_send_markers,omitempty"`
	RequestReceiveMarkers []string `yaml:"request_receive_markers,omitempty"`
	RequestPayloadMarkers []string `yaml:"request_payload_markers,omitempty"`
	RequestEndpointMarker string   `yaml:"request_endpoint_marker,omitempty"`
}

// PerfRules configures operation start/completion pairing.
type PerfRules struct {
	CommandStartMarkers      []string `yaml:"command_start_markers,omitempty"`
	CommandCompletionMarkers []string `yaml:"command_completion_markers,omitempty"`
	EventCorrelationKeys     []string `yaml:"event_correlation_keys,omitempty"`
}

// KnownRules lists expected names for the info command's profile insights.
type KnownRules struct {
	Components []string `yaml:"components,omitempty"`
	Commands   []string `yaml:"commands,omitempty"`
	Requests   []string `yaml:"requests,omitempty"`
}

// SessionRules configures hierarchical session lifecycle tracking.
type SessionRules struct {
	Levels []SessionLevel `yaml:"levels,omitempty"`
}

// SessionLevel defines one tier of the component_id hierarchy.
type SessionLevel struct {
	Name             string   `yaml:"name"`
	SegmentPrefix    string   `yaml:"segment_prefix"`
	CreateCommand    string   `yaml:"create_command,omitempty"`
	CompleteCommands []string `yaml:"complete_commands,omitempty"`
	SummaryFields    []string `yaml:"summary_fields,omitempty"`
}

// HasHints reports whether the profile carries anything the info command can
// check observed logs against.
func (p *Profile) HasHints() bool {
	return len(p.Known.Components) > 0 ||
		len(p.Known.Commands) > 0 ||
		len(p.Known.Requests) > 0 ||
		len(p.Sessions.Levels) > 0
}

// ContainsAnyMarker reports whether text contains any non-empty marker.
// An empty marker list never matches.
func ContainsAnyMarker(text string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// Load reads a profile from path, or returns the embedded base profile when
// path is empty. A broken profile is a fatal configuration error.
func Load(path string) (*Profile, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile '%s': %w", path, err)
	}

	profile, err := parseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile '%s': %w", path, err)
	}
	return profile, nil
}

// Default returns the embedded base profile.
func Default() *Profile {
	profile, err := LoadBuiltin("base")
	if err != nil {
		// The embedded base profile is covered by tests; failing to parse it
		// is a build defect, not user input.
		panic(fmt.Sprintf("embedded base profile: %v", err))
	}
	return profile
}

// BuiltinNames returns the embedded template names, base first.
func BuiltinNames() []string {
	names := make([]string, len(builtinNames))
	copy(names, builtinNames)
	return names
}

// LoadBuiltin loads one of the embedded templates by name. The name may be
// given as a bare name, a file name, or a path; only the stem is considered.
func LoadBuiltin(name string) (*Profile, error) {
	key := normalizeTemplateKey(name)
	if key == "" {
		return nil, fmt.Errorf("empty template name")
	}

	found := false
	for _, n := range builtinNames {
		if n == key {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown template '%s' (built-ins: %s)", name, strings.Join(builtinNames, ", "))
	}

	data, err := embeddedProfiles.ReadFile("profiles/" + key + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded template '%s': %w", key, err)
	}
	return parseProfile(data)
}

// LoadTemplate resolves a template reference: a built-in name first, then a
// profile file path.
func LoadTemplate(ref string) (*Profile, error) {
	if profile, err := LoadBuiltin(ref); err == nil {
		return profile, nil
	}
	return Load(ref)
}

// Save writes the profile as YAML to path.
func Save(profile *Profile, path string) error {
	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile '%s': %w", path, err)
	}
	return nil
}

// Marshal renders the profile as YAML.
func Marshal(profile *Profile) (string, error) {
	data, err := yaml.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("failed to marshal profile: %w", err)
	}
	return string(data), nil
}

func parseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func normalizeTemplateKey(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	base := filepath.Base(trimmed)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(stem)
}
