package manifest

import (
	"encoding/json"

	"github.com/oshokin/altsource-updater/internal/domain/source"
)

// Keys of the entry fields this package reads or writes.
const (
	keyName               = "name"
	keyDownloadURL        = "downloadURL"
	keyVersion            = "version"
	keySize               = "size"
	keyVersionDate        = "versionDate"
	keyVersionDescription = "versionDescription"
)

// releaseKeys lists the keys written by Apply, in the order new keys are appended.
//
//nolint:gochecknoglobals // Read-only lookup table.
var releaseKeys = []string{
	keyDownloadURL,
	keyVersion,
	keySize,
	keyVersionDate,
	keyVersionDescription,
}

// Entry is one application in the manifest.
// Values are kept as read; only the release fields written by Apply are re-encoded.
type Entry struct {
	// Name is the unique key of the entry, empty when the entry has no string name.
	Name string

	// named is true when the entry carries a string "name".
	named bool
	// fields holds all keys in document order together with their original values.
	fields *object
	// release is the release applied to the entry, nil until Apply is called.
	release *source.Release
}

// NewEntry creates an entry that only carries a name.
func NewEntry(name string) *Entry {
	e := &Entry{
		Name:   name,
		named:  true,
		fields: newObject(),
	}

	// A string always encodes.
	raw, _ := marshalValue(name)
	e.fields.set(keyName, raw)

	return e
}

// HasVersion reports whether the entry has a version key at all.
func (e *Entry) HasVersion() bool {
	return e.fields != nil && e.fields.has(keyVersion)
}

// Version returns the recorded version when it is a JSON string.
func (e *Entry) Version() (string, bool) {
	if e.release != nil {
		return e.release.Version, true
	}

	if e.fields == nil {
		return "", false
	}

	raw, ok := e.fields.get(keyVersion)
	if !ok {
		return "", false
	}

	var version string
	if isNull(raw) || json.Unmarshal(raw, &version) != nil {
		return "", false
	}

	return version, true
}

// VersionText returns the recorded version for display.
// Values that are not strings are returned as their raw JSON text.
func (e *Entry) VersionText() string {
	if version, ok := e.Version(); ok {
		return version
	}

	if e.fields == nil {
		return ""
	}

	raw, _ := e.fields.get(keyVersion)

	return string(raw)
}

// IsCurrent reports whether the entry already records the given version as a string.
func (e *Entry) IsCurrent(version string) bool {
	recorded, ok := e.Version()
	return ok && recorded == version
}

// Apply overwrites the release fields with the values of r.
// Keys that did not exist yet are appended after the existing ones.
func (e *Entry) Apply(r source.Release) {
	if e.fields == nil {
		fresh := NewEntry(e.Name)
		e.fields, e.named = fresh.fields, true
	}

	e.release = &r

	for _, key := range releaseKeys {
		if !e.fields.has(key) {
			e.fields.set(key, nil)
		}
	}
}

// UnmarshalJSON decodes an entry, keeping every value and the key order.
// Only a string "name" is interpreted; other values are left for later use.
func (e *Entry) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}

	decoded := Entry{fields: fields}

	if raw, ok := fields.get(keyName); ok {
		decoded.named = json.Unmarshal(raw, &decoded.Name) == nil && !isNull(raw)
	}

	*e = decoded

	return nil
}

// MarshalJSON encodes the entry with applied release values in their original positions.
func (e *Entry) MarshalJSON() ([]byte, error) {
	fields := e.fields
	if fields == nil {
		fields = NewEntry(e.Name).fields
	}

	return fields.encode(e.releaseValue)
}

// releaseValue encodes the applied release field behind a key.
func (e *Entry) releaseValue(key string) (json.RawMessage, bool, error) {
	if e.release == nil {
		return nil, false, nil
	}

	var value any

	switch key {
	case keyDownloadURL:
		value = e.release.DownloadURL
	case keyVersion:
		value = e.release.Version
	case keySize:
		value = e.release.Size
	case keyVersionDate:
		value = e.release.Date
	case keyVersionDescription:
		value = e.release.Description
	default:
		return nil, false, nil
	}

	raw, err := marshalValue(value)
	if err != nil {
		return nil, false, err
	}

	return raw, true, nil
}
