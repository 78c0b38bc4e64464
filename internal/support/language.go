package support

import "strings"

// germanSignals are common German function words. One hit in the first
// message tags the ticket German; everything else defaults to English.
// Best-effort, not load-bearing.
var germanSignals = map[string]bool{
	"ich": true, "und": true, "ist": true, "nicht": true, "bin": true,
	"mein": true, "wie": true, "das": true, "bitte": true, "wurde": true,
	"warum": true, "hallo": true, "gebannt": true, "entbannen": true,
}

// DetectLanguage picks a language tag ("de" or "en") from free text.
func DetectLanguage(text string) string {
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if germanSignals[strings.Trim(word, ".,!?:;")] {
			return "de"
		}
	}
	return "en"
}

// apology is the user-visible message after the retry budget is exhausted.
func apology(lang string) string {
	if lang == "de" {
		return "Hey, ich habe gerade technische Probleme mit meiner KI – ein Admin schaut sich das an. Erzähl trotzdem gern weiter!"
	}
	return "Hey, I'm having technical trouble with my AI right now – an admin is looking into it. Feel free to keep describing your issue!"
}

// clearNotice is sent after an auto temp-ban clear attempt.
func clearNotice(lang string) string {
	if lang == "de" {
		return "Ich habe versucht, einen Temp-Ban zu entfernen – probier mal, ob du wieder auf den Server kommst!"
	}
	return "I tried clearing a temporary ban – check whether you can rejoin the server!"
}

// feedbackPrompt is posted when a ticket closes.
func feedbackPrompt(lang string) string {
	if lang == "de" {
		return "Danke für dein Ticket! War alles okay mit dem Support?"
	}
	return "Thanks for your ticket! Was everything okay with the support?"
}
