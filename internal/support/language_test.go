package support

import "testing"

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Hallo, ich wurde gebannt und weiß nicht warum!", "de"},
		{"Warum?", "de"},
		{"I got banned yesterday and want to appeal", "en"},
		{"please unban me", "en"},
		{"", "en"},
		{"Bitte, mein Name ist Wolf77.", "de"},
	}

	for _, tt := range tests {
		if got := DetectLanguage(tt.text); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestLocalizedStrings(t *testing.T) {
	for _, lang := range []string{"de", "en"} {
		if apology(lang) == "" || clearNotice(lang) == "" || feedbackPrompt(lang) == "" {
			t.Fatalf("empty localized string for %q", lang)
		}
	}
	if apology("de") == apology("en") {
		t.Error("apology not localized")
	}
	if feedbackPrompt("") != feedbackPrompt("en") {
		t.Error("unknown language must fall back to English")
	}
}
