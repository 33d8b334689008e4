// Package norm provides the small normalization helpers shared across the
// resolver, metrics, and probability stages: numeric clamping and scaling,
// match identifier plausibility checks, and canonicalization of team side
// and nickname labels.
package norm

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// matchIDPattern matches upstream match identifiers: an optional leading
// decimal segment and hyphen, followed by at least 20 hex or hyphen
// characters.
var matchIDPattern = regexp.MustCompile(`^(?:[0-9]+-)?[0-9a-fA-F-]{20,}$`)

// Clamp bounds v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Scale linearly maps value from [min, max] onto [0, 1], clamping the
// result. A degenerate range (max <= min) scales to 0.5 so a misconfigured
// bound never produces a biased feature.
func Scale(value, min, max float64) float64 {
	if max <= min {
		return 0.5
	}
	return Clamp01((value - min) / (max - min))
}

// PlausibleMatchID reports whether s looks like an upstream match
// identifier. It rejects garbage values before they are used in API paths.
func PlausibleMatchID(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return matchIDPattern.MatchString(s)
}

var (
	ctLabels = map[string]struct{}{
		"CT":                {},
		"COUNTER_TERRORIST": {},
		"COUNTER-TERRORIST": {},
		"COUNTER TERRORIST": {},
		"COUNTERTERRORISTS": {},
	}
	tLabels = map[string]struct{}{
		"T":          {},
		"TERRORIST":  {},
		"TERRORISTS": {},
	}
)

// CanonicalSide maps an upstream side label onto "CT", "T", or "" when the
// label is absent or unrecognized.
func CanonicalSide(value string) string {
	text := strings.ToUpper(strings.TrimSpace(value))
	if text == "" {
		return ""
	}
	if _, ok := ctLabels[text]; ok {
		return "CT"
	}
	if _, ok := tLabels[text]; ok {
		return "T"
	}
	return ""
}

// CanonicalNick lowercases a nickname and strips all whitespace, so roster
// entries written with stray spaces or different casing still match.
func CanonicalNick(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
