package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNotObject = errors.New("expected a JSON object")

// object is a JSON object that remembers the order of its keys.
type object struct {
	keys   []string
	values map[string]json.RawMessage
}

func newObject() *object {
	return &object{
		values: make(map[string]json.RawMessage),
	}
}

// decodeObject parses data into an ordered object.
// A repeated key keeps its first position and its last value.
func decodeObject(data []byte) (*object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	obj := newObject()

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v: %w", tok, errNotObject)
		}

		var raw json.RawMessage
		if err = dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}

		obj.set(key, raw)
	}

	if _, err = dec.Token(); err != nil {
		return nil, err
	}

	return obj, nil
}

func (o *object) has(key string) bool {
	_, ok := o.values[key]
	return ok
}

func (o *object) get(key string) (json.RawMessage, bool) {
	raw, ok := o.values[key]
	return raw, ok
}

// set stores a value, appending the key when it is new.
func (o *object) set(key string, raw json.RawMessage) {
	if !o.has(key) {
		o.keys = append(o.keys, key)
	}

	o.values[key] = raw
}

// encode writes the object with keys in order; fresh overrides raw values for the given keys.
func (o *object) encode(fresh func(key string) (json.RawMessage, bool, error)) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		encodedKey, err := marshalValue(key)
		if err != nil {
			return nil, err
		}

		value := o.values[key]

		if fresh != nil {
			override, ok, err := fresh(key)
			if err != nil {
				return nil, fmt.Errorf("encode %q: %w", key, err)
			}

			if ok {
				value = override
			}
		}

		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// marshalValue encodes v without HTML escaping, so changelog text stays readable.
func marshalValue(v any) (json.RawMessage, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// isNull reports whether a raw value is the JSON literal null.
func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
