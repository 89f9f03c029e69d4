package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Event is an invocation payload. Its shape belongs to whoever invokes the
// function, so it is kept as decoded JSON and read through Lookup.
type Event map[string]any

// DecodeEvent decodes a raw payload. Empty payloads and JSON values that are
// not objects produce an empty Event; only malformed JSON is an error.
func DecodeEvent(raw []byte) (Event, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Event{}, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	if m, ok := v.(map[string]any); ok {
		return Event(m), nil
	}
	return Event{}, nil
}

// ParseEvent is DecodeEvent with malformed input treated as an empty Event.
func ParseEvent(raw []byte) Event {
	event, err := DecodeEvent(raw)
	if err != nil {
		return Event{}
	}
	return event
}

// EventFrom converts a typed event (for example one from
// github.com/aws/aws-lambda-go/events) into an Event via its JSON form.
func EventFrom(v any) (Event, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return DecodeEvent(raw)
}

// Lookup walks path through nested objects and returns the string found at
// the end. It reports false if a segment is missing, if an intermediate
// value is not an object, or if the final value is not a string.
func (e Event) Lookup(path ...string) (string, bool) {
	if len(path) == 0 {
		return "", false
	}

	var cur any = map[string]any(e)
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		if cur, ok = obj[key]; !ok {
			return "", false
		}
	}

	s, ok := cur.(string)
	return s, ok
}

// StringOr returns the string at path, or def when it is absent or empty.
func (e Event) StringOr(def string, path ...string) string {
	if s, ok := e.Lookup(path...); ok && s != "" {
		return s
	}
	return def
}
