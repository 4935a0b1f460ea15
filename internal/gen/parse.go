package gen

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
)

// ParseErrorMarker is written to the result subject cell when the model
// output cannot be coerced into a sequence; the raw text goes into the
// body cell so the operator can diagnose it.
const ParseErrorMarker = "ERROR: could not parse AI response"

// SequenceLen is the required number of emails in a generated sequence.
const SequenceLen = 3

// ParseSequence extracts the first JSON array embedded in raw model output
// and coerces it into exactly three subject/body drafts. The model is asked
// for bare JSON but routinely wraps it in commentary, so the parser scans
// for the first balanced bracket run instead of unmarshaling raw directly.
func ParseSequence(raw string) ([SequenceLen]model.EmailDraft, error) {
	var out [SequenceLen]model.EmailDraft

	payload, ok := ExtractJSON(raw)
	if !ok {
		return out, eris.New("gen: no JSON value found in response")
	}

	var drafts []model.EmailDraft
	if err := json.Unmarshal([]byte(payload), &drafts); err != nil {
		// Some responses wrap the array in an object; take the first
		// field in document order that holds a draft array.
		drafts = firstDraftField(payload)
		if drafts == nil {
			return out, eris.Wrap(err, "gen: no email array in response object")
		}
	}

	if len(drafts) != SequenceLen {
		return out, eris.Errorf("gen: expected %d emails, got %d", SequenceLen, len(drafts))
	}
	for i, d := range drafts {
		if strings.TrimSpace(d.Subject) == "" || strings.TrimSpace(d.Body) == "" {
			return out, eris.Errorf("gen: email %d missing subject or body", i+1)
		}
		out[i] = d
	}
	return out, nil
}

// firstDraftField walks an object's fields in document order and returns
// the first value that unmarshals as a non-empty draft array. A map would
// make the pick depend on iteration order.
func firstDraftField(payload string) []model.EmailDraft {
	dec := json.NewDecoder(strings.NewReader(payload))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil
		}
		var drafts []model.EmailDraft
		if json.Unmarshal(raw, &drafts) == nil && drafts != nil {
			return drafts
		}
	}
	return nil
}

// ExtractJSON returns the first balanced {...} or [...] substring of s.
// Brackets inside JSON strings are skipped via quote/escape tracking.
func ExtractJSON(s string) (string, bool) {
	start := -1
	var open, close byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			start = i
			open = s[i]
			if open == '{' {
				close = '}'
			} else {
				close = ']'
			}
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
