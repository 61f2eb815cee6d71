package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// keyApps is the top-level key holding the list of entries.
const keyApps = "apps"

var (
	errMissingApps = errors.New(`manifest has no "apps" list`)
	errAppsNotList = errors.New(`manifest "apps" must be a list`)
)

// Manifest is the whole apps.json document.
// Top-level keys other than "apps" are preserved as read.
type Manifest struct {
	// Apps lists the tracked applications in document order.
	Apps []*Entry

	fields *object
}

// New returns an empty manifest: {"apps": []}.
func New() *Manifest {
	m := &Manifest{
		Apps:   []*Entry{},
		fields: newObject(),
	}

	m.fields.set(keyApps, nil)

	return m
}

// Find returns the first entry with the given name.
// Entries without a string name never match.
func (m *Manifest) Find(name string) (*Entry, bool) {
	for _, entry := range m.Apps {
		if entry != nil && entry.named && entry.Name == name {
			return entry, true
		}
	}

	return nil, false
}

// FindOrAdd returns the entry with the given name, appending a new one when none exists.
// The second result is true when the entry was created.
func (m *Manifest) FindOrAdd(name string) (*Entry, bool) {
	if entry, ok := m.Find(name); ok {
		return entry, false
	}

	entry := NewEntry(name)
	m.Apps = append(m.Apps, entry)

	return entry, true
}

// UnmarshalJSON decodes the document, requiring an "apps" list.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}

	raw, ok := fields.get(keyApps)
	if !ok {
		return errMissingApps
	}

	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		return errAppsNotList
	}

	var apps []*Entry
	if err = json.Unmarshal(raw, &apps); err != nil {
		return fmt.Errorf("decode apps: %w", err)
	}

	if apps == nil {
		apps = []*Entry{}
	}

	m.Apps = apps
	m.fields = fields

	return nil
}

// MarshalJSON encodes the document with the current entries in place of "apps".
func (m *Manifest) MarshalJSON() ([]byte, error) {
	fields := m.fields
	if fields == nil {
		fields = New().fields
	}

	return fields.encode(func(key string) (json.RawMessage, bool, error) {
		if key != keyApps {
			return nil, false, nil
		}

		apps := m.Apps
		if apps == nil {
			apps = []*Entry{}
		}

		raw, err := marshalValue(apps)
		if err != nil {
			return nil, false, err
		}

		return raw, true, nil
	})
}
