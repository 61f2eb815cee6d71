// Package manifest implements persistence for the apps.json manifest.
//
// The FileRepository loads the document from disk and writes it back in full
// with two-space indentation and a trailing newline.
package manifest
