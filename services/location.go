package services

import "strings"

// locationAliases fixes misspellings and non-canonical renderings seen in
// source markup. Matching is case-insensitive on the full-string level and
// applied as substring replacement, the same way the variants appear inside
// longer labels.
var locationAliases = map[string]string{
	"Smoha":        "Smouha",
	"Saba Pasha":   "Saba Basha",
	"Borg al-Arab": "Borg El Arab",
}

// umbrellaLabels are region values too coarse to be useful as a state.
// A state containing one of these is replaced by the neighborhood value.
var umbrellaLabels = []string{
	"alexandria",
}

// ResolveLocation splits a raw comma-separated location string into a
// (neighborhood, region) pair. Single-segment inputs are common and valid;
// they resolve to location == state.
func ResolveLocation(raw string) (location, state string) {
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	location = parts[0]
	if len(parts) >= 2 {
		state = parts[1]
	}

	// Alias correction runs after assignment so a corrected location can
	// still back the state fallback below.
	location = applyAliases(location)
	state = applyAliases(state)

	for _, umbrella := range umbrellaLabels {
		if strings.Contains(strings.ToLower(state), umbrella) {
			state = location
			break
		}
	}

	if state == "" {
		state = location
	}

	return location, state
}

func applyAliases(s string) string {
	for from, to := range locationAliases {
		s = replaceFold(s, from, to)
	}
	return s
}

// replaceFold replaces every case-insensitive occurrence of old in s.
func replaceFold(s, old, new string) string {
	if old == "" {
		return s
	}
	lower := strings.ToLower(s)
	oldLower := strings.ToLower(old)

	var b strings.Builder
	for {
		i := strings.Index(lower, oldLower)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(new)
		s = s[i+len(old):]
		lower = lower[i+len(oldLower):]
	}
}
