package stt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseFragments recovers a fragment list from a backend response that may
// wrap the JSON array in prose or a markdown code fence. It takes the
// outermost bracketed span of the text, decodes it, and coerces timestamps
// that arrive as clock stamps ("MM:SS", "HH:MM:SS") or numeric strings
// instead of plain seconds.
//
// Entries without text are dropped. Fragments come back sorted by start
// time. Returns [ErrUnparsable] when no array can be recovered at all.
func ParseFragments(raw string) ([]Fragment, error) {
	first := strings.Index(raw, "[")
	last := strings.LastIndex(raw, "]")
	if first == -1 || last <= first {
		return nil, fmt.Errorf("%w: no JSON array in %d bytes of response", ErrUnparsable, len(raw))
	}

	var entries []rawFragment
	if err := json.Unmarshal([]byte(raw[first:last+1]), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	frags := make([]Fragment, 0, len(entries))
	for _, e := range entries {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		start, err := parseStamp(e.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: start of %q: %v", ErrUnparsable, text, err)
		}
		end, err := parseStamp(e.End)
		if err != nil {
			return nil, fmt.Errorf("%w: end of %q: %v", ErrUnparsable, text, err)
		}
		frags = append(frags, Fragment{Start: start, End: end, Text: text})
	}

	sort.SliceStable(frags, func(i, j int) bool { return frags[i].Start < frags[j].Start })
	return frags, nil
}

// rawFragment defers timestamp decoding because backends are inconsistent
// about emitting numbers versus strings.
type rawFragment struct {
	Start json.RawMessage `json:"start"`
	End   json.RawMessage `json:"end"`
	Text  string          `json:"text"`
}

// parseStamp converts a JSON timestamp value to float seconds. Accepts a
// JSON number, a numeric string, or a clock stamp with colon separators.
func parseStamp(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing timestamp")
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("timestamp %s is neither number nor string", raw)
	}
	return parseClock(s)
}

// parseClock converts "SS", "MM:SS" or "HH:MM:SS" (fractional seconds
// allowed) to float seconds.
func parseClock(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("clock stamp %q has %d parts", s, len(parts))
	}

	total := 0.0
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, fmt.Errorf("clock stamp %q: %w", s, err)
		}
		total = total*60 + v
	}
	return total, nil
}
