// README: Deterministic keyword/regex extraction used when the LLM path is unavailable.
package ai

import (
	"regexp"
	"strings"
)

// fallbackMaxConfidence caps how sure the rule path may claim to be.
const fallbackMaxConfidence = 0.6

// jobKeyword maps a trigger phrase to a job type. Tables are scanned in
// order and the first match wins, so more specific phrases come first
// (e.g. "water heater" before "leak").
type jobKeyword struct {
	phrase  string
	jobType string
}

var jobKeywords = map[string][]jobKeyword{
	"plumbing": {
		{"water heater", "water_heater"},
		{"garbage disposal", "disposal_repair"},
		{"sewer", "sewer_backup"},
		{"sewage", "sewer_backup"},
		{"burst", "burst_pipe"},
		{"clog", "drain_clog"},
		{"drain", "drain_clog"},
		{"toilet", "toilet_repair"},
		{"faucet", "faucet_repair"},
		{"leak", "leak_repair"},
		{"pipe", "burst_pipe"},
	},
	"electrical": {
		{"panel", "panel_upgrade"},
		{"breaker", "breaker_repair"},
		{"outlet", "outlet_repair"},
		{"sparks", "wiring_fault"},
		{"sparking", "wiring_fault"},
		{"wiring", "wiring_fault"},
		{"power out", "power_outage"},
		{"no power", "power_outage"},
		{"light", "light_fixture"},
	},
	"hvac": {
		{"gas smell", "gas_leak"},
		{"gas leak", "gas_leak"},
		{"no heat", "heating_failure"},
		{"furnace", "heating_failure"},
		{"heater", "heating_failure"},
		{"no cooling", "ac_failure"},
		{"air conditioning", "ac_failure"},
		{"air conditioner", "ac_failure"},
		{"ac", "ac_failure"},
		{"thermostat", "thermostat_repair"},
	},
	"locksmith": {
		{"locked out", "lockout"},
		{"deadbolt", "lock_repair"},
		{"lock", "lock_repair"},
		{"key", "key_replacement"},
	},
	"garage_door": {
		{"spring", "spring_replacement"},
		{"opener", "opener_repair"},
		{"off track", "track_repair"},
		{"track", "track_repair"},
		{"stuck", "door_stuck"},
		{"won't open", "door_stuck"},
		{"won't close", "door_stuck"},
	},
}

var emergencyKeywords = map[string][]string{
	"plumbing":    {"burst", "flooding", "flooded", "gushing", "overflowing", "overflow", "sewage", "emergency"},
	"electrical":  {"sparks", "sparking", "burning smell", "smoke", "shock", "exposed wire", "emergency"},
	"hvac":        {"gas smell", "gas leak", "carbon monoxide", "smoke", "emergency"},
	"locksmith":   {"locked out", "break in", "broken into", "emergency"},
	"garage_door": {"stuck open", "off track", "fell", "emergency"},
}

// intensifiers upgrade normal to urgent when present.
var intensifiers = []string{"bad", "badly", "everywhere", "really", "asap", "urgent"}

// negations cancel an emergency keyword when found within 3 tokens before it.
var negations = map[string]bool{
	"no": true, "not": true, "isn't": true, "isnt": true,
	"wasn't": true, "wasnt": true, "don't": true, "dont": true,
	"stopped": true, "never": true,
}

var (
	addressPattern = regexp.MustCompile(`(?i)\d+\s+[A-Za-z0-9'.\- ]+(st|street|ave|avenue|rd|road|blvd|dr|drive|way|ln|lane)\b[^,]*,?\s*[A-Za-z .]*,?\s*(\d{5})?`)
	tokenPattern   = regexp.MustCompile(`[a-z0-9']+`)
)

var yesSet = map[string]bool{"yes": true, "y": true, "ok": true, "confirm": true, "book it": true}
var noSet = map[string]bool{"no": true, "n": true, "cancel": true, "different time": true}

// RuleExtractor is the deterministic fallback path. It never fails.
type RuleExtractor struct{}

func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

// Extract applies the keyword and regex rules for the trade.
func (r *RuleExtractor) Extract(message, trade string) *Extraction {
	lower := strings.ToLower(message)
	tokens := tokenPattern.FindAllString(lower, -1)

	ex := &Extraction{
		UrgencyHint:  UrgencyNormal,
		Confirmation: classifyConfirmation(message),
	}

	for _, kw := range jobKeywords[trade] {
		if containsPhrase(lower, kw.phrase) {
			ex.JobType = kw.jobType
			ex.JobConfidence = fallbackMaxConfidence
			break
		}
	}

	switch {
	case hasEmergencyKeyword(lower, tokens, trade):
		ex.UrgencyHint = UrgencyEmergency
		ex.UrgencyConfidence = fallbackMaxConfidence
	case hasIntensifier(lower):
		ex.UrgencyHint = UrgencyUrgent
		ex.UrgencyConfidence = 0.5
	default:
		ex.UrgencyConfidence = 0.4
	}

	if m := addressPattern.FindString(message); m != "" {
		ex.AddressText = strings.TrimSpace(strings.Trim(m, ","))
	}

	return ex
}

// containsPhrase matches a phrase on word boundaries so "ac" does not fire
// inside "back".
func containsPhrase(lower, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		okBefore := start == 0 || !isWordChar(lower[start-1])
		okAfter := end == len(lower) || !isWordChar(lower[end])
		if okBefore && okAfter {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '\''
}

// hasEmergencyKeyword reports an un-negated emergency phrase for the trade.
// A negation word within the 3 tokens preceding the match cancels it.
func hasEmergencyKeyword(lower string, tokens []string, trade string) bool {
	for _, phrase := range emergencyKeywords[trade] {
		if !containsPhrase(lower, phrase) {
			continue
		}
		firstWord := strings.Fields(phrase)[0]
		if !negatedBefore(tokens, firstWord) {
			return true
		}
	}
	return false
}

func negatedBefore(tokens []string, word string) bool {
	for i, tok := range tokens {
		if tok != word {
			continue
		}
		lo := i - 3
		if lo < 0 {
			lo = 0
		}
		for _, prev := range tokens[lo:i] {
			if negations[prev] {
				return true
			}
		}
		return false
	}
	return false
}

func hasIntensifier(lower string) bool {
	for _, w := range intensifiers {
		if containsPhrase(lower, w) {
			return true
		}
	}
	return false
}

func classifyConfirmation(message string) Confirmation {
	norm := strings.ToLower(strings.TrimSpace(message))
	norm = strings.Trim(norm, ".!")
	if yesSet[norm] {
		return ConfirmYes
	}
	if noSet[norm] {
		return ConfirmNo
	}
	return ConfirmUnknown
}
