package model

import (
	"strings"
)

// Status tokens recorded on contact rows. A row accumulates tokens over its
// lifetime and is never rewritten, so contradictory outcomes (a failure
// followed by a success on re-run) legitimately coexist.
const (
	StatusFromApolloContact = "from_apollo_contact"
	StatusFromApolloPerson  = "from_apollo_person"
	StatusApolloPushed      = "apollo_pushed"
	StatusPushFailed        = "push_failed"
	StatusApolloSequenced   = "apollo_sequenced"
	StatusSequenceFailed    = "sequence_failed"
)

// StatusEvent is one recorded outcome. Detail carries the parenthesized
// argument for failure tokens, e.g. sequence_failed(timeout).
type StatusEvent struct {
	Token  string
	Detail string
}

// String renders the event back to its cell form.
func (e StatusEvent) String() string {
	if e.Detail == "" {
		return e.Token
	}
	return e.Token + "(" + e.Detail + ")"
}

// StatusLog is the append-only outcome ledger for a contact row, stored in
// the sheet as a semicolon-delimited cell.
type StatusLog struct {
	events []StatusEvent
}

// ParseStatusLog parses a status cell. Unrecognized fragments are kept
// verbatim as tokens so that round-tripping never loses operator edits.
func ParseStatusLog(cell string) StatusLog {
	var log StatusLog
	for _, part := range strings.Split(cell, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		log.events = append(log.events, parseEvent(part))
	}
	return log
}

func parseEvent(s string) StatusEvent {
	open := strings.Index(s, "(")
	if open > 0 && strings.HasSuffix(s, ")") {
		return StatusEvent{
			Token:  s[:open],
			Detail: s[open+1 : len(s)-1],
		}
	}
	return StatusEvent{Token: s}
}

// Has reports whether any event carries the given token, regardless of
// detail. Matching ignores case to stay forgiving of hand-edited cells.
func (l StatusLog) Has(token string) bool {
	for _, e := range l.events {
		if strings.EqualFold(e.Token, token) {
			return true
		}
	}
	return false
}

// Append records a bare token. Existing events are never removed or
// replaced, even when the new token contradicts one already present.
func (l *StatusLog) Append(token string) {
	l.events = append(l.events, StatusEvent{Token: token})
}

// AppendDetail records a token with a parenthesized detail. Semicolons and
// parens in the detail are flattened so the cell stays parseable.
func (l *StatusLog) AppendDetail(token, detail string) {
	detail = strings.NewReplacer(";", ",", "(", "[", ")", "]").Replace(detail)
	l.events = append(l.events, StatusEvent{Token: token, Detail: detail})
}

// Events returns the recorded events in order.
func (l StatusLog) Events() []StatusEvent {
	return l.events
}

// String serializes the log to its cell form.
func (l StatusLog) String() string {
	parts := make([]string, len(l.events))
	for i, e := range l.events {
		parts[i] = e.String()
	}
	return strings.Join(parts, "; ")
}
