package config

import (
	"sort"
	"strings"

	"github.com/eirenik0/log-analyzer/pkg/types"
)

// GenerateOptions controls profile generation.
type GenerateOptions struct {
	ProfileName string
}

// Generate derives a profile from observed logs: every component, command,
// and request name seen becomes a known entry, and recurring component_id
// segment prefixes become candidate session levels. The base profile supplies
// the parser and perf rules unchanged.
func Generate(entries []*types.LogEntry, base *Profile, opts GenerateOptions) *Profile {
	profile := *base
	profile.Name = opts.ProfileName

	components := make(map[string]bool)
	commands := make(map[string]bool)
	requests := make(map[string]bool)
	segments := make(map[string]bool)
	prefixCounts := make(map[string]int)

	for _, entry := range entries {
		if entry.Component != "" {
			components[entry.Component] = true
		}

		if entry.ComponentID != "" {
			for i, segment := range strings.Split(entry.ComponentID, "/") {
				if segment == "" {
					continue
				}
				segments[segment] = true
				// Session hierarchy lives at the start of component_id paths.
				if i < 2 {
					if prefix := sessionPrefix(segment); prefix != "" {
						prefixCounts[prefix]++
					}
				}
			}
		}

		switch entry.Kind {
		case types.KindCommand:
			if entry.Name != "" {
				commands[entry.Name] = true
			}
		case types.KindRequest:
			if entry.Name != "" {
				requests[entry.Name] = true
			}
		}
	}

	profile.Known.Components = sortedKeys(components)
	profile.Known.Commands = sortedKeys(commands)
	profile.Known.Requests = sortedKeys(requests)

	// Rank recurring prefixes: most common first, lexical tiebreak. Each
	// surviving prefix becomes a session level stub to fill in by hand.
	type ranked struct {
		prefix string
		count  int
	}
	var candidates []ranked
	for prefix, count := range prefixCounts {
		if count <= 1 {
			continue
		}
		seen := false
		for segment := range segments {
			if strings.HasPrefix(segment, prefix) {
				seen = true
				break
			}
		}
		if seen {
			candidates = append(candidates, ranked{prefix: prefix, count: count})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].prefix < candidates[j].prefix
	})

	profile.Sessions.Levels = nil
	for i, c := range candidates {
		if i >= 2 {
			break
		}
		profile.Sessions.Levels = append(profile.Sessions.Levels, SessionLevel{
			Name:          strings.TrimSuffix(c.prefix, "-"),
			SegmentPrefix: c.prefix,
		})
	}

	return &profile
}

// sessionPrefix extracts the "name-" prefix of an instance segment like
// "manager-3"; segments without a dash carry no session hierarchy.
func sessionPrefix(segment string) string {
	idx := strings.IndexByte(segment, '-')
	if idx <= 0 {
		return ""
	}
	return segment[:idx+1]
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
