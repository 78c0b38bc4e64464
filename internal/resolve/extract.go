// Package resolve turns free ticket text into a canonical player identity:
// direct id extraction, heuristic in-game name capture, fuzzy backend search,
// and the idempotent extended-info fetch.
package resolve

import (
	"regexp"
	"strings"
)

// idPattern matches a canonical player id: a 17-digit numeric token with the
// 7656119 prefix, or a 32-character lowercase hex token. First match wins.
var idPattern = regexp.MustCompile(`(7656119\d{10}|[a-f0-9]{32})`)

// namePattern captures tokens following a "name is"-style keyword, bounded to
// 4–30 characters and stopped at line breaks and mention characters.
var namePattern = regexp.MustCompile(`(?i)(?:name|ingame|bin|heiße|mein name|spiele als|als |ich bin|Name ist|der Name|Name:)[\s:]*([^\n\r<@!&]{4,30})`)

// fallbackPattern scans for a generic name-ish token when no keyword anchors.
var fallbackPattern = regexp.MustCompile(`\b([A-Za-z0-9_\-\.\[\]\(\){} ]{5,30})\b`)

// fallbackSignal requires at least one uppercase letter, digit, or bracket so
// plain lowercase prose does not match.
var fallbackSignal = regexp.MustCompile(`[A-Z0-9\[\]]`)

// fallbackStopWords excludes bare greetings from the fallback scan.
// The list is best-effort, not load-bearing.
var fallbackStopWords = map[string]bool{
	"hallo":   true,
	"hi":      true,
	"hey":     true,
	"hallooo": true,
	"moinc":   true,
	"heyo":    true,
}

// ExtractID returns the first canonical player id in text, or "".
func ExtractID(text string) string {
	return idPattern.FindString(text)
}

// ExtractName returns a candidate in-game name from text, or "". The
// keyword-anchored capture is strictly preferred; the generic token scan is
// only a fallback. Both heuristics are approximate.
func ExtractName(text string) string {
	if m := namePattern.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(m[1])
		if len(name) >= 4 {
			return name
		}
	}

	for _, m := range fallbackPattern.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(m[1])
		if len(candidate) < 5 {
			continue
		}
		if !fallbackSignal.MatchString(candidate) {
			continue
		}
		if fallbackStopWords[strings.ToLower(candidate)] {
			continue
		}
		return candidate
	}
	return ""
}
