package crcon

import (
	"encoding/json"
	"strings"
)

// Record is the canonical punishment entry. CRCON deployments return the
// history in several shapes (a bare list, or an object keyed "punishments",
// "history", or "actions"); everything is mapped into this type at the API
// boundary before the core ever sees it.
type Record struct {
	Action    string `json:"action"`
	Reason    string `json:"reason"`
	By        string `json:"by"`
	Timestamp string `json:"timestamp"`

	// Raw preserves the original entry for serialization into the ticket
	// context, including fields this client does not model.
	Raw json.RawMessage `json:"-"`
}

// banActions are the action kinds relevant to ban/blacklist triage.
var banActions = map[string]bool{
	"ban":                true,
	"temp_ban":           true,
	"perma_ban":          true,
	"permanent_ban":      true,
	"blacklist":          true,
	"remove_temp_ban":    true,
	"unban":              true,
	"unblacklist_player": true,
}

// IsBanRelevant reports whether the record's action kind concerns a ban or
// blacklist (including their removals).
func (r Record) IsBanRelevant() bool {
	return banActions[strings.ToLower(r.Action)]
}

// LatestBanRelevant returns the first ban/blacklist-relevant record, relying
// on the API's newest-first ordering. Nil when none exists.
func LatestBanRelevant(records []Record) *Record {
	for i := range records {
		if records[i].IsBanRelevant() {
			return &records[i]
		}
	}
	return nil
}

// normalizeRecords maps all observed response shapes into canonical records.
// Malformed payloads yield an empty slice, never an error.
func normalizeRecords(body []byte) []Record {
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Result) == 0 {
		return nil
	}

	if recs := decodeRecordList(envelope.Result); recs != nil {
		return recs
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(envelope.Result, &object); err != nil {
		return nil
	}
	for _, key := range []string{"punishments", "history", "actions"} {
		if raw, ok := object[key]; ok {
			if recs := decodeRecordList(raw); recs != nil {
				return recs
			}
		}
	}
	return nil
}

func decodeRecordList(raw json.RawMessage) []Record {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		var rec Record
		if err := json.Unmarshal(item, &rec); err != nil {
			continue
		}
		rec.Raw = item
		records = append(records, rec)
	}
	return records
}
