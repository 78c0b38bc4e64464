package support

import "testing"

func TestParseDirectives(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		wantDisplay string
		want        Directives
	}{
		{
			name:        "plain reply",
			reply:       "Hi, how can I help?",
			wantDisplay: "Hi, how can I help?",
		},
		{
			name:        "close",
			reply:       "Glad I could help, closing this now. [CLOSE_TICKET]",
			wantDisplay: "Glad I could help, closing this now.",
			want:        Directives{Close: true},
		},
		{
			name:        "clear temp ban",
			reply:       "[CLEAR_TEMP_BAN] I removed the ban for you.",
			wantDisplay: "I removed the ban for you.",
			want:        Directives{ClearTransient: true},
		},
		{
			name:        "request capture",
			reply:       "Please give me your player id. [REQUEST_ID]",
			wantDisplay: "Please give me your player id.",
			want:        Directives{RequestCapture: true},
		},
		{
			name:        "escalate with summary tail",
			reply:       "An admin will look at this. [ESCALATE] User claims an unjustified perma ban by AdminX.",
			wantDisplay: "An admin will look at this.",
			want:        Directives{Escalate: true, Summary: "User claims an unjustified perma ban by AdminX."},
		},
		{
			name:        "escalate with empty summary",
			reply:       "Passing this on. [ESCALATE]",
			wantDisplay: "Passing this on.",
			want:        Directives{Escalate: true},
		},
		{
			name:        "escalate summary must not leak other markers",
			reply:       "Done. [ESCALATE] Needs review [CLOSE_TICKET]",
			wantDisplay: "Done.",
			want:        Directives{Escalate: true, Summary: "Needs review"},
		},
		{
			name:        "close before escalate combines",
			reply:       "Bye! [CLOSE_TICKET] [ESCALATE] Tempban dispute, cleared.",
			wantDisplay: "Bye!",
			want:        Directives{Close: true, Escalate: true, Summary: "Tempban dispute, cleared."},
		},
		{
			name:        "clear and close combine",
			reply:       "[CLEAR_TEMP_BAN] All sorted. [CLOSE_TICKET]",
			wantDisplay: "All sorted.",
			want:        Directives{ClearTransient: true, Close: true},
		},
		{
			name:        "marker only reply",
			reply:       "[REQUEST_ID]",
			wantDisplay: "",
			want:        Directives{RequestCapture: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, display := ParseDirectives(tt.reply)
			if got != tt.want {
				t.Errorf("directives = %+v, want %+v", got, tt.want)
			}
			if display != tt.wantDisplay {
				t.Errorf("display = %q, want %q", display, tt.wantDisplay)
			}
		})
	}
}
