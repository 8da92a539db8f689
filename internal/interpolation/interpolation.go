package interpolation

import (
	"regexp"
	"sort"
	"strings"
)

// Keybinds maps the keybind placeholders found in descriptions to the default
// key labels.
var Keybinds = map[string]string{
	"ability1": "Q",
	"ability2": "W",
	"ability3": "E",
	"ability4": "R",
	"ultimate": "F",
	"attack":   "LMB",
	"block":    "RMB",
	"jump":     "SPACE",
	"sprint":   "SHIFT",
	"crouch":   "CTRL",
}

// placeholder matches {name} and %name% tokens.
var placeholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}|%([A-Za-z_][A-Za-z0-9_]*)%`)

// Format replaces {name}, %name%, {%name%} and %%name%% in desc with values
// from vars. Later maps override earlier ones. Unknown placeholders are left
// untouched.
func Format(desc string, vars ...map[string]string) string {
	if desc == "" {
		return ""
	}

	merged := make(map[string]string)
	for _, m := range vars {
		for k, v := range m {
			merged[k] = v
		}
	}

	names := make([]string, 0, len(merged))
	for k := range merged {
		names = append(names, k)
	}
	sort.Strings(names)

	// The wrapped forms come first so they win over their inner %name%.
	pairs := make([]string, 0, len(names)*8)
	for _, k := range names {
		v := merged[k]
		pairs = append(pairs,
			"{%"+k+"%}", v,
			"%%"+k+"%%", v,
			"{"+k+"}", v,
			"%"+k+"%", v,
		)
	}
	return strings.NewReplacer(pairs...).Replace(desc)
}

// Unresolved lists the placeholder names still present in s, in order of
// first appearance.
func Unresolved(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(s, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// MergeKeybinds returns the default keybinds overridden by extra.
func MergeKeybinds(extra map[string]string) map[string]string {
	out := make(map[string]string, len(Keybinds)+len(extra))
	for k, v := range Keybinds {
		out[k] = v
	}
	for k, v := range extra {
		out[strings.Trim(k, "%")] = v
	}
	return out
}
