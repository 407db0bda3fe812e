// Package profile implements slicer configuration documents: parsing,
// inheritance resolution against the engine's bundled base profiles, and
// injection of the metadata keys the engine's CLI mode requires.
//
// A document is an ordered mapping from string keys to raw JSON values.
// Key order is preserved from the source bytes and values are kept opaque,
// so resolving the same raw document twice yields byte-identical output.
package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Document is an ordered slicer configuration document.
//
// Values are stored as raw JSON and replaced wholesale on override; the
// merge performed by the resolver is a shallow key-level merge, never a
// structural one.
type Document struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{values: make(map[string]json.RawMessage)}
}

// ParseDocument parses a JSON object into a Document, preserving the order
// in which keys appear. Duplicate keys keep the first position and the last
// value, matching encoding/json semantics.
func ParseDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrInvalidDocument)
	}

	doc := NewDocument()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string key", ErrInvalidDocument)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: value for %q: %v", ErrInvalidDocument, key, err)
		}
		doc.Set(key, raw)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidDocument)
	}

	return doc, nil
}

// Len returns the number of keys.
func (d *Document) Len() int {
	return len(d.keys)
}

// Keys returns the keys in document order.
func (d *Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Has reports whether the key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Get returns the raw JSON value for key.
func (d *Document) Get(key string) (json.RawMessage, bool) {
	v, ok := d.values[key]
	return v, ok
}

// GetString returns the value for key if it is a JSON string.
func (d *Document) GetString(key string) (string, bool) {
	raw, ok := d.values[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Set stores a raw JSON value for key. An existing key keeps its position;
// a new key is appended.
func (d *Document) Set(key string, value json.RawMessage) {
	if d.values == nil {
		d.values = make(map[string]json.RawMessage)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// SetString stores a JSON string value for key.
func (d *Document) SetString(key, value string) {
	b, _ := json.Marshal(value)
	d.Set(key, b)
}

// Delete removes key from the document.
func (d *Document) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a copy of the document. Values are shared; callers replace
// values wholesale rather than mutating them.
func (d *Document) Clone() *Document {
	out := &Document{
		keys:   make([]string, len(d.keys)),
		values: make(map[string]json.RawMessage, len(d.values)),
	}
	copy(out.keys, d.keys)
	for k, v := range d.values {
		out.values[k] = v
	}
	return out
}

// MarshalJSON encodes the document as a compact JSON object in key order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		compact := bytes.NewBuffer(nil)
		if err := json.Compact(compact, d.values[k]); err != nil {
			return nil, fmt.Errorf("value for %q: %w", k, err)
		}
		buf.Write(compact.Bytes())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode renders the document indented with four spaces, the layout the
// engine uses for its own profile files.
func (d *Document) Encode() ([]byte, error) {
	compact, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "    "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
