package support

import "strings"

// Directive markers the model embeds in its replies. They are stripped from
// the user-visible text but kept in the canonical ticket history.
const (
	MarkerClose          = "[CLOSE_TICKET]"
	MarkerClearTransient = "[CLEAR_TEMP_BAN]"
	MarkerEscalate       = "[ESCALATE]"
	MarkerRequestCapture = "[REQUEST_ID]"
)

// Directives is the decoded set of side effects a reply requested.
// Downstream logic switches on this closed set instead of re-scanning text.
type Directives struct {
	Close          bool
	ClearTransient bool
	RequestCapture bool
	Escalate       bool
	Summary        string // escalation summary, set when Escalate is true
}

// ParseDirectives scans a model reply for directive markers, returning the
// decoded directive set and the display text with all markers stripped.
// Close applies at most once per reply; the other directives combine freely.
// Escalation takes everything after its marker as the summary.
func ParseDirectives(reply string) (Directives, string) {
	var d Directives
	text := reply

	if idx := strings.Index(text, MarkerEscalate); idx >= 0 {
		d.Escalate = true
		d.Summary = strings.TrimSpace(stripMarkers(text[idx+len(MarkerEscalate):]))
		text = text[:idx]
	}

	if strings.Contains(text, MarkerClose) {
		d.Close = true
	}
	if strings.Contains(text, MarkerClearTransient) {
		d.ClearTransient = true
	}
	if strings.Contains(text, MarkerRequestCapture) {
		d.RequestCapture = true
	}

	return d, strings.TrimSpace(stripMarkers(text))
}

func stripMarkers(text string) string {
	for _, marker := range []string{MarkerClose, MarkerClearTransient, MarkerEscalate, MarkerRequestCapture} {
		text = strings.ReplaceAll(text, marker, "")
	}
	return text
}
