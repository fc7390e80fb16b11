package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotObject is returned when a Document is decoded from JSON that is not an object.
var ErrNotObject = errors.New("JSON value is not an object")

// Document is a JSON object whose members keep the order they were read in.
//
// Fixture files are hand-written and meant to be read by people, so the
// generated files must list fields in the same order as the source fixtures.
// A map[string]any would sort keys alphabetically on output.
//
// Member values are kept as raw JSON and are never interpreted unless a
// caller asks for them with Get or GetString.
type Document struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return &Document{
		keys:   make([]string, 0),
		values: make(map[string]json.RawMessage),
	}
}

// Len returns the number of members.
func (d *Document) Len() int {
	return len(d.keys)
}

// Keys returns the member names in document order.
func (d *Document) Keys() []string {
	keys := make([]string, len(d.keys))
	copy(keys, d.keys)
	return keys
}

// Get returns the raw JSON value of a member.
func (d *Document) Get(key string) (json.RawMessage, bool) {
	v, ok := d.values[key]
	return v, ok
}

// GetString returns a member's value when it is a JSON string.
func (d *Document) GetString(key string) (string, bool) {
	raw, ok := d.values[key]
	if !ok || len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Set stores v under key. An existing member keeps its position,
// a new member is appended at the end.
func (d *Document) Set(key string, v any) error {
	raw, err := encodeValue(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	d.setRaw(key, raw)
	return nil
}

// SetString stores a string member. Encoding a string cannot fail.
func (d *Document) SetString(key, value string) {
	raw, _ := encodeValue(value) //nolint:errcheck // strings always encode
	d.setRaw(key, raw)
}

func (d *Document) setRaw(key string, raw json.RawMessage) {
	if d.values == nil {
		d.values = make(map[string]json.RawMessage)
	}
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = raw
}

// Clone returns a shallow copy. Raw values are shared, which is safe
// because Document never mutates a stored value in place.
func (d *Document) Clone() *Document {
	c := &Document{
		keys:   make([]string, len(d.keys)),
		values: make(map[string]json.RawMessage, len(d.values)),
	}
	copy(c.keys, d.keys)
	for k, v := range d.values {
		c.values[k] = v
	}
	return c
}

// MarshalJSON writes the members in document order.
func (d *Document) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := encodeValue(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(d.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, recording member order.
// A repeated member name keeps its first position and its last value.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotObject
	}

	d.keys = make([]string, 0)
	d.values = make(map[string]json.RawMessage)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to decode member %q: %w", key, err)
		}
		d.setRaw(key, raw)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// encodeValue marshals v without HTML escaping so that strings such as
// "<BASE64_OBRA1>" survive a round trip byte for byte.
func encodeValue(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
