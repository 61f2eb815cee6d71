package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	domain "github.com/oshokin/altsource-updater/internal/domain/manifest"
)

// DefaultFilePermissions is the mode used when the manifest is written.
const DefaultFilePermissions = 0o644

// Repository defines persistence operations for the manifest.
type Repository interface {
	Load(ctx context.Context) (*domain.Manifest, error)
	Save(ctx context.Context, m *domain.Manifest) error
}

// FileRepository persists the manifest as a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the manifest.
	path string
}

// ErrNotFound is returned when the manifest file does not exist.
var ErrNotFound = errors.New("manifest not found")

var errNilManifest = errors.New("manifest is not set")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the location of the manifest file.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the manifest from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Manifest, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", r.path, ErrNotFound)
		}

		return nil, fmt.Errorf("read manifest file: %w", err)
	}

	var m domain.Manifest
	if err = json.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("decode manifest file %s: %w", r.path, err)
	}

	return &m, nil
}

// Save overwrites the manifest file with the indented JSON form of m.
func (r *FileRepository) Save(_ context.Context, m *domain.Manifest) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}

	if err = os.WriteFile(r.path, data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write manifest file: %w", err)
	}

	return nil
}

// Encode renders the manifest exactly as it is written to disk.
func Encode(m *domain.Manifest) ([]byte, error) {
	if m == nil {
		return nil, errNilManifest
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	// Encoder terminates the document with a newline.
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	return buf.Bytes(), nil
}
