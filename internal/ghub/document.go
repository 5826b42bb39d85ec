// Package ghub reads the Logitech G HUB settings store: a per-user SQLite
// database whose newest row holds the full application configuration as a
// single JSON object.
package ghub

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Entry is one top-level key of the settings document with its raw value.
type Entry struct {
	Key   string
	Value json.RawMessage
}

// Document is the parsed settings blob. Entries keep the order in which
// their keys appear in the stored JSON text.
type Document []Entry

// Keys returns the document keys in order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for _, e := range d {
		keys = append(keys, e.Key)
	}
	return keys
}

// Get returns the raw value for key. If the key occurs more than once the
// last occurrence wins, as with a regular JSON decode.
func (d Document) Get(key string) (json.RawMessage, bool) {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i].Key == key {
			return d[i].Value, true
		}
	}
	return nil, false
}

// ParseDocument decodes a JSON object into a Document without losing the
// order of its keys. Anything other than a single JSON object yields an
// error wrapping ErrParse.
func ParseDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "reading settings json: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.Wrap(ErrParse, "settings json is not an object")
	}

	doc := Document{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "reading settings key: %v", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.Wrapf(ErrParse, "unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrapf(ErrParse, "reading value of %q: %v", key, err)
		}
		doc = append(doc, Entry{Key: key, Value: raw})
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrapf(ErrParse, "reading settings json: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Wrap(ErrParse, "trailing data after settings object")
	}

	return doc, nil
}
